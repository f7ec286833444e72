package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	h := newTestAPI().Handler()
	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestReadyzReportsProbeFailure(t *testing.T) {
	api := newTestAPI()
	api.ready = ReadyProbeFunc(func(context.Context) error { return errProbeDown })
	rec := doJSON(t, api.Handler(), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error != "not_ready" {
		t.Fatalf("error code = %q", body.Error)
	}
}

func TestInfo(t *testing.T) {
	h := newTestAPI().Handler()
	rec := doJSON(t, h, http.MethodGet, "/v1/info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("info status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if resp["service"] != "shopauth" || resp["version"] != "test" {
		t.Fatalf("unexpected info: %v", resp)
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestAPI().Handler()
	rec := doJSON(t, h, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error != "not_found" || body.Timestamp == "" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}
