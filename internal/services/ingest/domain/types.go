// Package domain holds the core types and ports for licence ingestion
package domain

import "fmt"

// Source describes one periodic daily file to ingest
type Source struct {
	// Name is the short source name, e.g. "mon"
	Name string
	// Artifact is the remote and local filename, e.g. "l_am_mon.zip"
	Artifact string
}

// NewSource builds a Source by formatting pattern with name
func NewSource(name, pattern string) Source {
	return Source{Name: name, Artifact: fmt.Sprintf(pattern, name)}
}

// LedgerEntry is one row of processing history
type LedgerEntry struct {
	Fingerprint string `json:"fingerprint"`
	RunDate     string `json:"run_date"`
	SourceName  string `json:"source"`
}

// HamRecord is one licensed individual projected out of an EN row
type HamRecord struct {
	Callsign      string `json:"callsign"`
	FullName      string `json:"fullname"`
	FirstName     string `json:"firstname"`
	LastName      string `json:"lastname"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipcode"`
	IngestionDate string `json:"date"`
}

// IsClub reports whether the record has no personal name
func (h HamRecord) IsClub() bool { return h.FirstName == "" && h.LastName == "" }

// ResultSet is the ordered accumulation of records for one run
type ResultSet []HamRecord

// Verdict is the outcome of change detection
type Verdict uint8

const (
	// VerdictNew means the fingerprint was not in the ledger and has now been recorded
	VerdictNew Verdict = iota + 1
	// VerdictAlreadySeen means the fingerprint was already in the ledger
	VerdictAlreadySeen
)

func (v Verdict) String() string {
	switch v {
	case VerdictNew:
		return "new"
	case VerdictAlreadySeen:
		return "already_seen"
	default:
		return "unknown"
	}
}

// SourceOutcome reports what happened to one source during a run
type SourceOutcome struct {
	Source      string  `json:"source"`
	Verdict     Verdict `json:"-"`
	Fingerprint string  `json:"fingerprint"`
	DataDate    string  `json:"data_date,omitempty"`
	Extracted   int     `json:"extracted"`
	Matched     int     `json:"matched"`
	ArchivedTo  string  `json:"archived_to,omitempty"`
}

// Summary is the report of a whole run
type Summary struct {
	RunID   string          `json:"run_id"`
	RunDate string          `json:"run_date"`
	Sources []SourceOutcome `json:"sources"`
	Total   int             `json:"total"`
	Outputs []string        `json:"outputs,omitempty"`
}

// Count returns how many sources ended with verdict v
func (s Summary) Count(v Verdict) int {
	n := 0
	for _, o := range s.Sources {
		if o.Verdict == v {
			n++
		}
	}
	return n
}
