package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGetByEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/email/a@x.com" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Identity{
			ID: "user-1", Email: "a@x.com", FirstName: "Ada", LastName: "Byron",
			Active: true, Roles: []string{"user"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	id, err := client.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if id.ID != "user-1" || id.FirstName != "Ada" || !id.Active {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.GetByEmail(context.Background(), "ghost@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.GetByEmail(context.Background(), "a@x.com"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClientTransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.EmailExists(context.Background(), "a@x.com"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClientEmailExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/exists" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		exists := r.URL.Query().Get("email") == "a@x.com"
		_ = json.NewEncoder(w).Encode(map[string]bool{"exists": exists})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	exists, err := client.EmailExists(context.Background(), "a@x.com")
	if err != nil || !exists {
		t.Fatalf("expected exists=true, got %v err=%v", exists, err)
	}
	exists, err = client.EmailExists(context.Background(), "b@x.com")
	if err != nil || exists {
		t.Fatalf("expected exists=false, got %v err=%v", exists, err)
	}
}

func TestClientCreateSendsNoPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		for key := range payload {
			if key == "password" || key == "passwordHash" {
				t.Fatalf("creation payload must not carry %q", key)
			}
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Identity{
			ID: "user-9", Email: payload["email"].(string), Active: true, Roles: []string{"user"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	id, err := client.Create(context.Background(), NewIdentity{
		Email: "a@x.com", FirstName: "Ada", LastName: "Byron",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id.ID != "user-9" {
		t.Fatalf("unexpected id: %s", id.ID)
	}
}

func TestClientCreateConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Create(context.Background(), NewIdentity{Email: "a@x.com"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestClientDeleteTreatsNotFoundAsDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if err := client.Delete(context.Background(), "user-1"); err != nil {
		t.Fatalf("Delete after not-found must succeed, got %v", err)
	}
}
