package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestAdaptChi_GroupRouteAndMiddleware(t *testing.T) {
	t.Parallel()

	r := AdaptChi(chi.NewRouter())
	r.Use(func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
			w.Header().Set("X-Root", "1")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = w.Write([]byte("ok")) })
	r.Head("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.Header().Set("X-Head", "1") })
	r.Group(func(g Router) {
		g.Use(func(next stdhttp.Handler) stdhttp.Handler {
			return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
				w.Header().Set("X-Group", "1")
				next.ServeHTTP(w, req)
			})
		})
		g.Get("/ledger", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = w.Write([]byte("ledger")) })
	})
	r.Route("/matches", func(sr Router) {
		if sr.Mux() == nil {
			t.Fatalf("route Mux() returned nil")
		}
		sr.Get("/{date}", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
			_, _ = w.Write([]byte(chi.URLParam(req, "date")))
		})
	})
	r.Handle("/std", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = w.Write([]byte("std")) }))

	do := func(method, path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		r.Mux().ServeHTTP(rr, httptest.NewRequest(method, path, nil))
		return rr
	}

	cases := []struct {
		method, path, body string
	}{
		{stdhttp.MethodGet, "/healthz", "ok"},
		{stdhttp.MethodGet, "/ledger", "ledger"},
		{stdhttp.MethodGet, "/matches/2024-05-06", "2024-05-06"},
		{stdhttp.MethodGet, "/std", "std"},
	}
	for _, c := range cases {
		rr := do(c.method, c.path)
		if rr.Code != 200 || rr.Body.String() != c.body {
			t.Fatalf("%s %s => %d %q", c.method, c.path, rr.Code, rr.Body.String())
		}
		if rr.Header().Get("X-Root") != "1" {
			t.Fatalf("%s: root middleware not applied", c.path)
		}
	}
	if rr := do(stdhttp.MethodGet, "/ledger"); rr.Header().Get("X-Group") != "1" {
		t.Fatalf("group middleware not applied")
	}
	if rr := do(stdhttp.MethodHead, "/healthz"); rr.Header().Get("X-Head") != "1" {
		t.Fatalf("HEAD handler not mounted")
	}
}

func TestAdaptChi_JSONNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()
	r := AdaptChi(chi.NewRouter())
	r.Get("/ledger", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {})

	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/nope", nil))
	if rr.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil || env.Code != "not_found" {
		t.Fatalf("404 envelope = %+v, %v", env, err)
	}

	rr = httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodPost, "/ledger", nil))
	if rr.Code != stdhttp.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}
