package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// Entity is the subset of an EN.dat row the pipeline projects
type Entity struct {
	Callsign, FullName, FirstName, LastName string
	Address, City, State, ZipCode           string
}

// ENColumns is the width of a real EN.dat row
const ENColumns = 30

// ENLine renders e as a pipe-delimited EN.dat row
func ENLine(e Entity) string {
	cols := make([]string, ENColumns)
	cols[0] = "EN"
	cols[1] = "4000001"
	cols[4] = e.Callsign
	cols[5] = "L"
	cols[7] = e.FullName
	cols[8] = e.FirstName
	cols[10] = e.LastName
	cols[15] = e.Address
	cols[16] = e.City
	cols[17] = e.State
	cols[18] = e.ZipCode
	return strings.Join(cols, "|")
}

// ENFile joins rows into an EN.dat body with CRLF line endings, as published
func ENFile(rows ...Entity) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(ENLine(r))
		b.WriteString("\r\n")
	}
	return b.String()
}

// Zip writes a zip archive at path holding member with body, stamped with mtime.
// The header carries an extended timestamp next to the DOS one
func Zip(t *testing.T, path, member, body string, mtime time.Time) string {
	t.Helper()
	return writeZip(t, path, body, &zip.FileHeader{Name: member, Method: zip.Deflate, Modified: mtime})
}

// ZipDOS is Zip with only the MS-DOS date and time fields set, as older archivers write them.
// wall is recorded as a bare wall clock; its location is dropped
func ZipDOS(t *testing.T, path, member, body string, wall time.Time) string {
	t.Helper()
	hdr := &zip.FileHeader{
		Name:         member,
		Method:       zip.Deflate,
		ModifiedDate: uint16((wall.Year()-1980)<<9 | int(wall.Month())<<5 | wall.Day()),
		ModifiedTime: uint16(wall.Hour()<<11 | wall.Minute()<<5 | wall.Second()/2),
	}
	return writeZip(t, path, body, hdr)
}

func writeZip(t *testing.T, path, body string, hdr *zip.FileHeader) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		t.Fatalf("zip header: %v", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return path
}
