package apihttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cryptoinvoice-pro/internal/profile"
)

func TestProfileHandlerEmpty(t *testing.T) {
	h := NewProfileHandler(profile.NewMemoryStore(profile.Profile{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p profile.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p != (profile.Profile{}) {
		t.Fatalf("profile = %+v, want zero", p)
	}
}

func TestProfileHandlerPutThenGet(t *testing.T) {
	h := NewProfileHandler(profile.NewMemoryStore(profile.Profile{}))

	body := `{"businessName": " Acme Labs ", "wallet": "bc1xyz"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))
	var p profile.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.BusinessName != "Acme Labs" || p.WalletAddress != "bc1xyz" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestProfileHandlerMethodNotAllowed(t *testing.T) {
	h := NewProfileHandler(profile.NewMemoryStore(profile.Profile{}))
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/profile", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
