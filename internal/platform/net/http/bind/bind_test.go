package bind

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "hamfinder/internal/platform/errors"
	kit "hamfinder/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type opts struct {
	Sources []string `json:"sources" validate:"min=1,dive,weekday"`
	Digest  string   `json:"digest" validate:"oneof=md5 sha256"`
	Workers int      `json:"workers" validate:"max=4"`
}

func TestStruct_OK(t *testing.T) {
	t.Parallel()
	if err := Struct(opts{Sources: []string{"mon", "sat"}, Digest: "md5"}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestStruct_FieldAndCode(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		in    opts
		field string
		msg   string
	}{
		{"empty sources", opts{Digest: "md5"}, "sources", "must be at least"},
		{"bad weekday", opts{Sources: []string{"mon", "funday"}, Digest: "md5"}, "sources[1]", "three letter weekday"},
		{"bad digest", opts{Sources: []string{"mon"}, Digest: "crc32"}, "digest", "digest"},
		{"max", opts{Sources: []string{"mon"}, Digest: "md5", Workers: 9}, "workers", "at most 4"},
	}
	for _, c := range cases {
		err := Struct(c.in)
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("%s: code = %v (%v)", c.name, perr.CodeOf(err), err)
		}
		e, _ := perr.As(err)
		if e.Field() != c.field {
			t.Fatalf("%s: field = %q, want %q", c.name, e.Field(), c.field)
		}
		kit.MustContain(t, err.Error(), c.msg)
	}
}

func TestStruct_InvalidTarget(t *testing.T) {
	t.Parallel()
	err := Struct(nil)
	if err == nil || perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("nil target should be an internal error, got %v", err)
	}
}

func TestPathParam_Date(t *testing.T) {
	t.Parallel()
	req := func(v string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/matches/"+v, nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("date", v)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
	}

	got, err := PathParam(req("2024-05-06"), "date", "required,datetime=2006-01-02")
	if err != nil || got != "2024-05-06" {
		t.Fatalf("PathParam ok: %q %v", got, err)
	}

	_, err = PathParam(req("05-06-2024"), "date", "required,datetime=2006-01-02")
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	e, _ := perr.As(err)
	if e.Field() != "date" {
		t.Fatalf("field = %q", e.Field())
	}
	kit.MustContain(t, err.Error(), "date must be a date")
}

func TestValidationFieldAndMessage_Plain(t *testing.T) {
	t.Parallel()
	if f, m := ValidationFieldAndMessage(nil); f != "" || m != "" {
		t.Fatalf("nil should be empty")
	}
	if f, m := ValidationFieldAndMessage(context.Canceled); f != "" || m != context.Canceled.Error() {
		t.Fatalf("plain error passthrough: %q %q", f, m)
	}
}
