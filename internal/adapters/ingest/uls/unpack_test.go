package uls

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	perr "hamfinder/internal/platform/errors"
	ptime "hamfinder/internal/platform/time"
	kit "hamfinder/internal/platform/testkit"
)

func TestUnpack_MemberAndMtime(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mt := time.Date(2024, 5, 6, 12, 30, 0, 0, time.UTC)
	body := kit.ENFile(kit.Entity{Callsign: "K4AAA", FirstName: "MARY", ZipCode: "22180"})
	zp := kit.Zip(t, filepath.Join(dir, "l_am_mon.zip"), "EN.dat", body, mt)

	out, err := NewUnpacker().Unpack(context.Background(), zp, "en.dat", filepath.Join(dir, "tmp"))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if out != filepath.Join(dir, "tmp", "EN.dat") {
		t.Fatalf("out = %q", out)
	}
	if kit.ReadFile(t, out) != body {
		t.Fatalf("member body mismatch")
	}
	fi, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := fi.ModTime(); ptime.Date(got) != "2024-05-06" || got.Hour() != 12 || got.Minute() != 30 {
		t.Fatalf("mtime = %v, want the header wall clock 2024-05-06 12:30", got)
	}
}

func TestUnpack_DOSOnlyHeaderKeepsPublisherDate(t *testing.T) {
	// swaps time.Local, so not parallel
	kit.Serial(t)
	kit.Swap(t, &time.Local, time.FixedZone("EDT", -4*60*60))

	dir := t.TempDir()
	body := kit.ENFile(kit.Entity{Callsign: "K4AAA", FirstName: "MARY", ZipCode: "22180"})
	zp := kit.ZipDOS(t, filepath.Join(dir, "l_am_mon.zip"), "EN.dat", body, time.Date(2024, 5, 6, 3, 0, 0, 0, time.UTC))

	out, err := NewUnpacker().Unpack(context.Background(), zp, "EN.dat", filepath.Join(dir, "tmp"))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	fi, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := ptime.Date(fi.ModTime()); got != "2024-05-06" {
		t.Fatalf("date = %s, want 2024-05-06", got)
	}
	if fi.ModTime().Hour() != 3 {
		t.Fatalf("hour = %d, want 3", fi.ModTime().Hour())
	}
}

func TestPublisherClock(t *testing.T) {
	t.Parallel()
	if !publisherClock(time.Time{}).IsZero() {
		t.Fatalf("zero stays zero")
	}
	in := time.Date(2024, 5, 6, 23, 59, 58, 0, time.FixedZone("", 9*60*60))
	got := publisherClock(in)
	if got.Location() != time.Local || got.Day() != 6 || got.Hour() != 23 || got.Second() != 58 {
		t.Fatalf("publisherClock = %v", got)
	}
}

func TestUnpack_Failures(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	notZip := kit.WriteFile(t, dir, "l_am_mon.zip", "<html>maintenance</html>")
	if _, err := NewUnpacker().Unpack(context.Background(), notZip, "EN.dat", filepath.Join(dir, "tmp")); !perr.IsCode(err, perr.ErrorCodeMalformedRecord) {
		t.Fatalf("not a zip err = %v", err)
	}

	wrong := kit.Zip(t, filepath.Join(dir, "l_am_tue.zip"), "HD.dat", "x", time.Now())
	_, err := NewUnpacker().Unpack(context.Background(), wrong, "EN.dat", filepath.Join(dir, "tmp"))
	if !perr.IsCode(err, perr.ErrorCodeMalformedRecord) {
		t.Fatalf("missing member err = %v", err)
	}
	kit.MustContain(t, err.Error(), "no EN.dat member")

	if _, err := NewUnpacker().Unpack(context.Background(), filepath.Join(dir, "gone.zip"), "EN.dat", dir); !perr.IsCode(err, perr.ErrorCodePersistence) {
		t.Fatalf("missing archive err = %v", err)
	}
}
