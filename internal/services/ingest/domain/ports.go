package domain

import (
	"context"
)

// RunnerPort is the public port exposed by the ingest module
type RunnerPort interface {
	Run(ctx context.Context) (Summary, error)
}

// Ledger is the durable append-only history of processed fingerprints
type Ledger interface {
	// HasSeen reports whether fingerprint was recorded in this or any prior run
	HasSeen(ctx context.Context, fingerprint string) (bool, error)
	// Record appends an entry; a fingerprint already present is rejected
	Record(ctx context.Context, e LedgerEntry) error
	// Entries lists all recorded entries in insertion order
	Entries(ctx context.Context) ([]LedgerEntry, error)
}

// Detector classifies a fetched artifact against the ledger
type Detector interface {
	Classify(ctx context.Context, artifactPath string, src Source, runDate string) (Verdict, string, error)
}

// Fetcher retrieves a source artifact into dir and returns its local path
type Fetcher interface {
	Fetch(ctx context.Context, src Source, dir string) (string, error)
}

// Unpacker extracts member from the archive at path into dir and returns the extracted path
type Unpacker interface {
	Unpack(ctx context.Context, path, member, dir string) (string, error)
}

// RecordReader is a finite single pass stream of records, io.EOF at end
type RecordReader interface {
	Next() (HamRecord, error)
	Close() error
	// Date is the ingestion date stamped on every record
	Date() string
}

// Extractor opens an entity file as a RecordReader
type Extractor interface {
	Open(path string) (RecordReader, error)
}

// ZipSet is a read only set of eligible postal codes
type ZipSet interface {
	Contains(zip string) bool
	Len() int
}

// GeoLoader yields the eligible set, loading it at most once
type GeoLoader interface {
	Load(ctx context.Context) (ZipSet, error)
}

// Sink persists a non empty result set keyed by run date and returns where it went
type Sink interface {
	Name() string
	Persist(ctx context.Context, runDate string, rs ResultSet) (string, error)
}

// Archiver relocates a consumed artifact to a dated, source named path
type Archiver interface {
	Archive(ctx context.Context, artifactPath string, src Source, date string) (string, error)
}
