package extract

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perr "hamfinder/internal/platform/errors"
	kit "hamfinder/internal/platform/testkit"
	"hamfinder/internal/services/ingest/domain"
)

func TestNext_ProjectionAndCasing(t *testing.T) {
	t.Parallel()
	body := kit.ENFile(kit.Entity{
		Callsign: "KO4ABC", FullName: "JOHN Q SMITH", FirstName: "JOHN", LastName: "SMITH",
		Address: "123 MAIN ST", City: "FAIRFAX", State: "VA", ZipCode: "22030",
	})
	r := NewReader(strings.NewReader(body), "EN.dat", "2024-05-06")

	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := domain.HamRecord{
		Callsign: "KO4ABC", FullName: "John Q Smith", FirstName: "John", LastName: "Smith",
		Address: "123 Main St", City: "Fairfax", State: "VA", ZipCode: "22030", IngestionDate: "2024-05-06",
	}
	if got != want {
		t.Fatalf("record\n got %+v\nwant %+v", got, want)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
	// EOF is sticky
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF again, got %v", err)
	}
}

func TestNext_UntouchedFields(t *testing.T) {
	t.Parallel()
	body := kit.ENFile(kit.Entity{Callsign: "w1aw", FirstName: "ann", State: "ct", ZipCode: "06111-1494"})
	rec, err := NewReader(strings.NewReader(body), "EN.dat", "2024-05-06").Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec.Callsign != "w1aw" || rec.State != "ct" || rec.ZipCode != "06111-1494" || rec.FirstName != "Ann" {
		t.Fatalf("callsign, state and zip must not be recased: %+v", rec)
	}
}

func TestNext_ClubsExcluded(t *testing.T) {
	t.Parallel()
	body := kit.ENFile(
		kit.Entity{Callsign: "W4CLB", FullName: "VIENNA WIRELESS SOCIETY", ZipCode: "22180"},
		kit.Entity{Callsign: "K4AAA", FirstName: "MARY", ZipCode: "22180"},
		kit.Entity{Callsign: "K4BBB", LastName: "JONES", ZipCode: "22181"},
		kit.Entity{Callsign: "W4CL2", FullName: "ANOTHER CLUB", Address: "1 RADIO RD", ZipCode: "22181"},
	)
	r := NewReader(strings.NewReader(body), "EN.dat", "2024-05-06")
	rs, err := Collect(r)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rs) != 2 || rs[0].Callsign != "K4AAA" || rs[1].Callsign != "K4BBB" {
		t.Fatalf("unexpected records: %+v", rs)
	}
	for _, rec := range rs {
		if rec.IsClub() {
			t.Fatalf("club leaked: %+v", rec)
		}
	}
	if rows, clubs := r.Stats(); rows != 4 || clubs != 2 {
		t.Fatalf("Stats = %d rows %d clubs", rows, clubs)
	}
}

func TestNext_ShortRowIsMalformed(t *testing.T) {
	t.Parallel()
	good := kit.ENLine(kit.Entity{Callsign: "K4AAA", FirstName: "MARY", ZipCode: "22180"})
	body := good + "\r\nEN|4000002|||K4ZZZ|L||FULL|FIRST\r\n"
	r := NewReader(strings.NewReader(body), "EN.dat", "2024-05-06")
	if _, err := r.Next(); err != nil {
		t.Fatalf("first row: %v", err)
	}
	_, err := r.Next()
	if !perr.IsCode(err, perr.ErrorCodeMalformedRecord) {
		t.Fatalf("short row err = %v", err)
	}
	kit.MustContain(t, err.Error(), "line 2")

	if _, err := Collect(NewReader(strings.NewReader(body), "EN.dat", "x")); !perr.IsCode(err, perr.ErrorCodeMalformedRecord) {
		t.Fatalf("Collect must surface malformed rows, got %v", err)
	}
}

func TestNext_QuotesAndBlankLines(t *testing.T) {
	t.Parallel()
	row := kit.ENLine(kit.Entity{Callsign: "K4QQQ", FullName: `ROBERT "BOB" LEE`, FirstName: "ROBERT", LastName: "LEE", ZipCode: "22180"})
	rs, err := Collect(NewReader(strings.NewReader("\r\n"+row+"\r\n\r\n"), "EN.dat", "2024-05-06"))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rs) != 1 || rs[0].LastName != "Lee" {
		t.Fatalf("unexpected: %+v", rs)
	}
	kit.MustContain(t, rs[0].FullName, `"Bob"`)
}

func TestOpen_DateFromModTime(t *testing.T) {
	t.Parallel()
	path := kit.WriteFile(t, t.TempDir(), "EN.dat", kit.ENFile(kit.Entity{Callsign: "K4AAA", FirstName: "MARY", ZipCode: "22180"}))
	mt := time.Date(2024, 5, 6, 12, 0, 0, 0, time.Local)
	if err := os.Chtimes(path, mt, mt); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	rr, err := New().Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rs, err := Collect(rr)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rs) != 1 || rs[0].IngestionDate != "2024-05-06" {
		t.Fatalf("ingestion date should follow mtime: %+v", rs)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "nope.dat")); !perr.IsCode(err, perr.ErrorCodePersistence) {
		t.Fatalf("missing file err = %v", err)
	}
}
