package archive

import (
	"context"
	"path/filepath"
	"testing"

	perr "hamfinder/internal/platform/errors"
	kit "hamfinder/internal/platform/testkit"
	"hamfinder/internal/services/ingest/domain"
)

var mon = domain.Source{Name: "mon", Artifact: "l_am_mon.zip"}

func TestPath_Deterministic(t *testing.T) {
	t.Parallel()
	a := New("archive")
	want := filepath.Join("archive", "l_am_mon_2024-05-06.zip")
	for range 2 {
		if got := a.Path(mon, "2024-05-06"); got != want {
			t.Fatalf("Path = %q, want %q", got, want)
		}
	}
	if a.Path(domain.Source{Name: "tue", Artifact: "l_am_tue.zip"}, "2024-05-06") == want {
		t.Fatalf("different sources must not share a destination")
	}
	if a.Path(mon, "2024-05-13") == want {
		t.Fatalf("different dates must not share a destination")
	}
}

func TestArchive_Moves(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	art := kit.WriteFile(t, dir, "l_am_mon.zip", "zip bytes")
	a := New(filepath.Join(dir, "archive"))

	dst, err := a.Archive(context.Background(), art, mon, "2024-05-06")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if dst != filepath.Join(dir, "archive", "l_am_mon_2024-05-06.zip") {
		t.Fatalf("dst = %q", dst)
	}
	kit.MustNotExist(t, art)
	if kit.ReadFile(t, dst) != "zip bytes" {
		t.Fatalf("archived body mismatch")
	}
}

func TestArchive_ConflictIsFatalAndPreserves(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := New(filepath.Join(dir, "archive"))
	kit.WriteFile(t, filepath.Join(dir, "archive"), "l_am_mon_2024-05-06.zip", "older archive")
	art := kit.WriteFile(t, dir, "l_am_mon.zip", "new bytes")

	_, err := a.Archive(context.Background(), art, mon, "2024-05-06")
	if !perr.IsCode(err, perr.ErrorCodeArchivalConflict) {
		t.Fatalf("err = %v", err)
	}
	if kit.ReadFile(t, a.Path(mon, "2024-05-06")) != "older archive" {
		t.Fatalf("existing archive must not be overwritten")
	}
	kit.MustExist(t, art)
}

func TestArchive_MissingArtifact(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, err := New(dir).Archive(context.Background(), filepath.Join(dir, "gone.zip"), mon, "2024-05-06")
	if !perr.IsCode(err, perr.ErrorCodePersistence) {
		t.Fatalf("err = %v", err)
	}
}
