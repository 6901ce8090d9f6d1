package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRDAPDomainAge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/domain/example.com":
			w.Write([]byte(`{"events":[{"eventAction":"last changed","eventDate":"2024-12-01T00:00:00Z"},{"eventAction":"registration","eventDate":"2024-12-22T00:00:00Z"}]}`))
		case "/domain/nodate.com":
			w.Write([]byte(`{"events":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := &RDAP{
		BaseURL: srv.URL + "/domain",
		Client:  srv.Client(),
		Now:     func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) },
	}

	age, err := r.DomainAge(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if age != 10 {
		t.Errorf("age = %d, want 10", age)
	}

	if _, err := r.DomainAge(context.Background(), "nodate.com"); !errors.Is(err, ErrAgeUnknown) {
		t.Errorf("expected ErrAgeUnknown, got %v", err)
	}

	if _, err := r.DomainAge(context.Background(), "missing.com"); err == nil {
		t.Error("expected error on 404")
	}
}
