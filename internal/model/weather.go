package model

import "time"

// ForecastStep is one instant of the location forecast. Nil fields were
// absent upstream.
type ForecastStep struct {
	Time             time.Time `json:"time"`
	AirTemperature   *float64  `json:"air_temperature,omitempty"`
	WindSpeed        *float64  `json:"wind_speed,omitempty"`
	RelativeHumidity *float64  `json:"relative_humidity,omitempty"`
}

// Forecast is the ordered location forecast; Steps[0] is "now".
type Forecast struct {
	Steps []ForecastStep `json:"steps"`
}

// Nowcast is the radar-based nowcast for the first instant.
type Nowcast struct {
	PrecipitationRate *float64 `json:"precipitation_rate,omitempty"`
}

// Weather joins forecast and nowcast. Nowcast is nil where the nowcast
// service has no coverage.
type Weather struct {
	Forecast *Forecast `json:"forecast"`
	Nowcast  *Nowcast  `json:"nowcast,omitempty"`
}

// IsEmpty implements Emptier.
func (w *Weather) IsEmpty() bool {
	return w == nil || w.Forecast == nil || len(w.Forecast.Steps) == 0
}

// SunEvents holds the sun times for one day. Sunrise and Sunset are both nil
// during midnight sun and polar night; NoonElevation tells them apart.
type SunEvents struct {
	Sunrise       *time.Time `json:"sunrise,omitempty"`
	Sunset        *time.Time `json:"sunset,omitempty"`
	SolarNoon     *time.Time `json:"solar_noon,omitempty"`
	NoonElevation *float64   `json:"noon_elevation,omitempty"`
}

// IsEmpty implements Emptier.
func (s *SunEvents) IsEmpty() bool {
	return s == nil || (s.Sunrise == nil && s.Sunset == nil && s.SolarNoon == nil && s.NoonElevation == nil)
}

// MidnightSun reports whether the sun stays above the horizon all day.
func (s *SunEvents) MidnightSun() bool {
	return s.Sunrise == nil && s.Sunset == nil && s.NoonElevation != nil && *s.NoonElevation > 0
}

// DayLength returns sunset minus sunrise, or 0 when either is missing.
func (s *SunEvents) DayLength() time.Duration {
	if s.Sunrise == nil || s.Sunset == nil {
		return 0
	}
	d := s.Sunset.Sub(*s.Sunrise)
	if d < 0 {
		return 0
	}
	return d
}
