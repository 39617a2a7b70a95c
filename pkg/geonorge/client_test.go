package geonorge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/geo"
)

var oslo = geo.Coordinate{Lat: 59.9139, Lon: 10.7522}

func TestSearchAddress_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/adresser/v1/sok", r.URL.Path)
		assert.Equal(t, "karl johans gate", r.URL.Query().Get("sok"))
		assert.Equal(t, "true", r.URL.Query().Get("fuzzy"))
		assert.Equal(t, "5", r.URL.Query().Get("treffPerSide"))
		assert.Equal(t, "0", r.URL.Query().Get("side"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"adresser":[
			{"adressetekst":"Karl Johans gate 1","kommunenavn":"OSLO","fylkesnavn":"Oslo",
			 "representasjonspunkt":{"epsg":"EPSG:4258","lat":59.911,"lon":10.75}},
			{"adressetekst":"Karl Johans gate 2","kommunenavn":"OSLO"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	got, err := client.SearchAddress(context.Background(), "karl johans gate")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Karl Johans gate 1", got[0].Text)
	assert.Equal(t, "OSLO", got[0].Municipality)
	assert.Equal(t, "Oslo", got[0].County)
	require.NotNil(t, got[0].Point)
	assert.InDelta(t, 59.911, got[0].Point.Lat, 1e-9)
	assert.InDelta(t, 10.75, got[0].Point.Lon, 1e-9)

	_, ok := got[1].Position()
	assert.False(t, ok)
}

func TestSearchAddress_MaxResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("treffPerSide"))
		_, _ = w.Write([]byte(`{"adresser":[]}`))
	}))
	defer srv.Close()

	got, err := NewClient(WithBaseURL(srv.URL), WithMaxResults(3)).SearchAddress(context.Background(), "ab")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchAddress_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).SearchAddress(context.Background(), "oslo")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, fetcher.StatusCode(err))
}

func TestAdminUnit_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kommuneinfo/v1/punkt", r.URL.Path)
		assert.Equal(t, "59.9139", r.URL.Query().Get("nord"))
		assert.Equal(t, "10.7522", r.URL.Query().Get("ost"))
		assert.Equal(t, "4258", r.URL.Query().Get("koordsys"))
		_, _ = w.Write([]byte(`{"kommunenavn":"Oslo","fylkesnavn":"Oslo","kommunenummer":"0301","fylkesnummer":"03"}`))
	}))
	defer srv.Close()

	got, err := NewClient(WithBaseURL(srv.URL)).AdminUnit(context.Background(), oslo)
	require.NoError(t, err)
	assert.Equal(t, "Oslo", got.Municipality)
	assert.Equal(t, "Oslo", got.County)
	assert.Equal(t, "0301", got.RegionCode())
}

func TestAdminUnit_MissingNumber(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"kommunenavn":"Havområde"}`))
	}))
	defer srv.Close()

	got, err := NewClient(WithBaseURL(srv.URL)).AdminUnit(context.Background(), oslo)
	require.NoError(t, err)
	assert.Empty(t, got.RegionCode())
	assert.False(t, got.IsEmpty())
}

func TestAdminUnit_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).AdminUnit(context.Background(), oslo)
	require.Error(t, err)
	assert.Equal(t, "Admin unit request failed: HTTP 404", err.Error())
}

func TestPlaceNames_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stedsnavn/v1/punkt", r.URL.Path)
		assert.Equal(t, "500", r.URL.Query().Get("radius"))
		assert.Equal(t, "10", r.URL.Query().Get("treffPerSide"))
		_, _ = w.Write([]byte(`{"navn":[
			{"stedsnavn":[{"skrivemåte":"Slottsparken"}],"navneobjekttype":"Park"},
			{"skrivemåte":"Karl Johan","navneobjekttype":"Gate"}
		]}`))
	}))
	defer srv.Close()

	got, err := NewClient(WithBaseURL(srv.URL)).PlaceNames(context.Background(), oslo)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Slottsparken", got[0].Name)
	assert.Equal(t, "Park", got[0].Type)
	assert.Equal(t, "Karl Johan", got[1].Name)
}

func TestPlaceNames_Empty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"navn":[]}`))
	}))
	defer srv.Close()

	got, err := NewClient(WithBaseURL(srv.URL)).PlaceNames(context.Background(), oslo)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
