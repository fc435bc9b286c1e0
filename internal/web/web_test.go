package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scrollcal/internal/config"
	"scrollcal/internal/datastream"
)

func get(t *testing.T, h http.Handler, path string, auth ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(auth) == 2 {
		req.SetBasicAuth(auth[0], auth[1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPreviewAndDatastream(t *testing.T) {
	s := NewServer(config.DefaultConfig())
	h := s.Handler()

	require.Equal(t, http.StatusOK, get(t, h, "/health").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/preview.png").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/datastream").Code)

	data := datastream.NewElements()
	data.DatastreamWidth = 7
	s.Publish(&Result{
		RenderedAt: time.Date(2020, 5, 30, 12, 0, 0, 0, time.UTC),
		PNG:        []byte("\x89PNG fake"),
		Elements:   data,
		Stream: &datastream.Stream{
			Pixels:  make([]datastream.ByteColor, 3),
			Offsets: []datastream.Offset{{Name: "DATASTREAM_WIDTH", Index: 0}},
		},
		Days:   2,
		Events: 5,
	})

	rec := get(t, h, "/preview.png")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	body, _ := io.ReadAll(rec.Body)
	require.Equal(t, "\x89PNG fake", string(body))

	rec = get(t, h, "/api/datastream")
	require.Equal(t, http.StatusOK, rec.Code)
	var ds struct {
		Length   int `json:"length"`
		Elements struct {
			DatastreamWidth uint32
		} `json:"elements"`
		Offsets []offsetDTO `json:"offsets"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ds))
	require.Equal(t, 3, ds.Length)
	require.Equal(t, uint32(7), ds.Elements.DatastreamWidth)
	require.Equal(t, []offsetDTO{{Name: "DATASTREAM_WIDTH", Index: 0}}, ds.Offsets)
}

func TestStatusKeepsLastResultOnError(t *testing.T) {
	s := NewServer(config.DefaultConfig())
	s.Publish(&Result{RenderedAt: time.Now(), Days: 1, Events: 3})
	s.PublishError(errors.New("feed down"))

	rec := get(t, s.Handler(), "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var st statusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	require.Equal(t, 3, st.Events)
	require.Equal(t, "feed down", st.LastError)
	require.NotNil(t, st.RenderedAt)
	require.Equal(t, "*/15 * * * *", st.Refresh)
}

func TestRefresh(t *testing.T) {
	s := NewServer(config.DefaultConfig())
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusNotImplemented, rec.Code)

	calls := 0
	s.Refresh = func(context.Context) error {
		calls++
		s.Publish(&Result{RenderedAt: time.Now(), Days: 1})
		return nil
	}
	require.Equal(t, http.StatusMethodNotAllowed, get(t, h, "/api/refresh").Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, calls)

	s.Refresh = func(context.Context) error { return errors.New("boom") }
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	h := NewServer(cfg).Handler()

	require.Equal(t, http.StatusOK, get(t, h, "/health").Code)

	rec := get(t, h, "/api/status")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "scrollcal")

	require.Equal(t, http.StatusUnauthorized, get(t, h, "/api/status", "admin", "wrong").Code)
	require.Equal(t, http.StatusOK, get(t, h, "/api/status", "admin", "secret").Code)

	// A password-less config leaves the server open.
	cfg.BasicAuth.Password = ""
	require.Equal(t, http.StatusOK, get(t, NewServer(cfg).Handler(), "/api/status").Code)
}
