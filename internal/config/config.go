package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Lookup  LookupConfig  `yaml:"lookup" mapstructure:"lookup"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Stores  StoresConfig  `yaml:"stores" mapstructure:"stores"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// File redirects log output away from stderr. The TUI always sets it.
	File string `yaml:"file" mapstructure:"file"`
}

// HTTPConfig configures the shared outbound HTTP fetcher.
type HTTPConfig struct {
	UserAgent   string      `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int         `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimits  []RateLimit `yaml:"rate_limits" mapstructure:"rate_limits"`
}

// RateLimit caps requests per second to one upstream host. Host names contain
// dots, so limits are a list rather than a viper map.
type RateLimit struct {
	Host string  `yaml:"host" mapstructure:"host"`
	RPS  float64 `yaml:"rps" mapstructure:"rps"`
}

// SourcesConfig holds base URLs and credentials for every external data source.
type SourcesConfig struct {
	GeonorgeURL    string `yaml:"geonorge_url" mapstructure:"geonorge_url"`
	MetURL         string `yaml:"met_url" mapstructure:"met_url"`
	NatureURL      string `yaml:"nature_url" mapstructure:"nature_url"`
	HeritageURL    string `yaml:"heritage_url" mapstructure:"heritage_url"`
	NGUBedrockURL  string `yaml:"ngu_bedrock_url" mapstructure:"ngu_bedrock_url"`
	NGUSedimentURL string `yaml:"ngu_sediment_url" mapstructure:"ngu_sediment_url"`
	NVEURL         string `yaml:"nve_url" mapstructure:"nve_url"`
	NVEAPIKey      string `yaml:"nve_api_key" mapstructure:"nve_api_key"`
	SSBURL         string `yaml:"ssb_url" mapstructure:"ssb_url"`
	BrregURL       string `yaml:"brreg_url" mapstructure:"brreg_url"`
}

// LookupConfig configures the lookup orchestrator.
type LookupConfig struct {
	Zoom             int      `yaml:"zoom" mapstructure:"zoom"`
	StoreRadiusKm    float64  `yaml:"store_radius_km" mapstructure:"store_radius_km"`
	StoreChains      []string `yaml:"store_chains" mapstructure:"store_chains"`
	CancelSuperseded bool     `yaml:"cancel_superseded" mapstructure:"cancel_superseded"`
}

// SearchConfig configures the address search box.
type SearchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
	MinChars   int `yaml:"min_chars" mapstructure:"min_chars"`
	MaxResults int `yaml:"max_results" mapstructure:"max_results"`
}

// StoresConfig configures the store directory sources.
type StoresConfig struct {
	Directories  map[string]string `yaml:"directories" mapstructure:"directories"`
	MaxBodyBytes int64             `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; it only seeds the process environment.
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("config: no .env file loaded", zap.Error(err))
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NORGESGLASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// NVE_API_KEY is also accepted without the prefix.
	if err := v.BindEnv("sources.nve_api_key", "NORGESGLASS_SOURCES_NVE_API_KEY", "NVE_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("http.user_agent", "Norgesglass/1.0 github.com/norgesglass")
	v.SetDefault("http.timeout_secs", 15)
	v.SetDefault("http.rate_limits", []map[string]any{
		{"host": "api.met.no", "rps": 10},
		{"host": "ws.geonorge.no", "rps": 10},
		{"host": "hydapi.nve.no", "rps": 5},
		{"host": "data.ssb.no", "rps": 5},
	})
	v.SetDefault("sources.geonorge_url", "https://ws.geonorge.no")
	v.SetDefault("sources.met_url", "https://api.met.no/weatherapi")
	v.SetDefault("sources.nature_url", "https://kart.miljodirektoratet.no/arcgis/rest/services/vern/MapServer/0")
	v.SetDefault("sources.heritage_url", "https://kart.ra.no/arcgis/rest/services/Distribusjon/Kulturminner20180301/MapServer/7")
	v.SetDefault("sources.ngu_bedrock_url", "https://geo.ngu.no/mapserver/BerggrunnWMS3")
	v.SetDefault("sources.ngu_sediment_url", "https://geo.ngu.no/mapserver/LosmasserWMS3")
	v.SetDefault("sources.nve_url", "https://hydapi.nve.no/api/v1")
	v.SetDefault("sources.ssb_url", "https://data.ssb.no/api/v0/no/table")
	v.SetDefault("sources.brreg_url", "https://data.brreg.no/enhetsregisteret/api")
	v.SetDefault("lookup.zoom", 14)
	v.SetDefault("lookup.store_radius_km", 5.0)
	v.SetDefault("lookup.store_chains", []string{"narvesen"})
	v.SetDefault("lookup.cancel_superseded", true)
	v.SetDefault("search.debounce_ms", 250)
	v.SetDefault("search.min_chars", 2)
	v.SetDefault("search.max_results", 5)
	v.SetDefault("stores.directories", map[string]string{
		"narvesen": "https://narvesen.no/finn-butikk",
	})
	v.SetDefault("stores.max_body_bytes", 2*1024*1024)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the lookup core cannot run with.
func (c *Config) Validate() error {
	if c.Search.MinChars < 1 {
		return eris.Errorf("config: search.min_chars must be >= 1, got %d", c.Search.MinChars)
	}
	if c.Search.DebounceMs < 0 {
		return eris.Errorf("config: search.debounce_ms must be >= 0, got %d", c.Search.DebounceMs)
	}
	if c.Lookup.StoreRadiusKm < 0 {
		return eris.Errorf("config: lookup.store_radius_km must be >= 0, got %g", c.Lookup.StoreRadiusKm)
	}
	for _, chain := range c.Lookup.StoreChains {
		if _, ok := c.Stores.Directories[chain]; !ok {
			return eris.Errorf("config: lookup.store_chains names %q but stores.directories has no URL for it", chain)
		}
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.Sources.NVEAPIKey != "" {
		out.Sources.NVEAPIKey = "********"
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
