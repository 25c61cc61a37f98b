// Copyright 2025 Tokenlens
//
// HTTP surface tests

package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/tokenlens/tokenlens/pkg/inspector"
)

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	insp, err := inspector.New(inspector.Config{Logger: log})
	if err != nil {
		t.Fatalf("failed to build inspector: %v", err)
	}
	return New(insp, nil, apiKey, 1, log)
}

func TestAuth_MissingKeyRejected(t *testing.T) {
	srv := newTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chains", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_ValidKeyAccepted(t *testing.T) {
	srv := newTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chains", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Ethereum Mainnet") {
		t.Error("chains listing missing mainnet")
	}
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv := newTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAnalyze_InvalidAddress(t *testing.T) {
	srv := newTestServer(t, "")

	body := strings.NewReader(`{"chain_id":1,"contract_address":"not-an-address","token_id":"1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_ADDRESS") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAnalyze_InvalidTokenID(t *testing.T) {
	srv := newTestServer(t, "")

	body := strings.NewReader(`{"chain_id":1,"contract_address":"0x2222222222222222222222222222222222222222","token_id":"abc"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLeaderboard_WithoutStore(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
