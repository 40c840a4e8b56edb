package module

import (
	"net/url"
	"strings"
	"time"

	"hamfinder/internal/adapters/ingest/uls"
	"hamfinder/internal/platform/config"
	"hamfinder/internal/platform/net/http/bind"
)

// Options holds configuration for the ingest module
type Options struct {
	Sources         []string `json:"sources" validate:"min=1,dive,weekday"`
	BaseURL         *url.URL `json:"-" validate:"required"`
	ArtifactPattern string   `json:"artifact_pattern" validate:"required,contains=%s"`
	Member          string   `json:"member" validate:"required"`
	WorkDir         string   `json:"work_dir" validate:"required"`
	TmpDir          string   `json:"tmp_dir" validate:"required"`
	ArchiveDir      string   `json:"archive_dir" validate:"required"`
	Digest          string   `json:"digest" validate:"oneof=md5 sha256"`

	FetchTimeout   time.Duration `json:"fetch_timeout"`
	RunTimeout     time.Duration `json:"run_timeout"`
	PersistTimeout time.Duration `json:"persist_timeout"`

	LedgerBackend string `json:"ledger_backend" validate:"oneof=file pg"`
	LedgerPath    string `json:"ledger_path" validate:"required_if=LedgerBackend file"`

	ZipcodesPath string `json:"zipcodes_path" validate:"required"`

	OutputDir    string `json:"output_dir" validate:"required"`
	OutputPrefix string `json:"output_prefix" validate:"required"`
	Stdout       bool   `json:"stdout"`
	ClickHouse   bool   `json:"clickhouse"`
	CHTable      string `json:"ch_table" validate:"required_if=ClickHouse true"`

	MetricsTextfile string `json:"metrics_textfile"`
}

// FromConfig reads CORE_INGEST_*, CORE_LEDGER_*, CORE_GEO_*, CORE_OUTPUT_* and CORE_METRICS_*
func FromConfig(cfg config.Conf) Options {
	in := cfg.Prefix("CORE_INGEST_")
	led := cfg.Prefix("CORE_LEDGER_")
	geo := cfg.Prefix("CORE_GEO_")
	out := cfg.Prefix("CORE_OUTPUT_")
	met := cfg.Prefix("CORE_METRICS_")

	return Options{
		Sources:         lower(in.MayCSV("SOURCES", []string{"mon", "tue", "wed", "thu", "fri", "sat"})),
		BaseURL:         in.MayURL("BASE_URL", uls.DefaultBaseURL, "http", "https", "ftp"),
		ArtifactPattern: in.MayString("ARTIFACT_PATTERN", "l_am_%s.zip"),
		Member:          in.MayString("MEMBER", "EN.dat"),
		WorkDir:         in.MayPath("WORK_DIR", "."),
		TmpDir:          in.MayPath("TMP_DIR", "tmp"),
		ArchiveDir:      in.MayPath("ARCHIVE_DIR", "archive"),
		Digest:          in.MayEnum("DIGEST", "md5", "md5", "sha256"),
		FetchTimeout:    in.MayDuration("FETCH_TIMEOUT", 0),
		RunTimeout:      in.MayDuration("RUN_TIMEOUT", 0),
		PersistTimeout:  in.MayDuration("PERSIST_TIMEOUT", 0),

		LedgerBackend: led.MayEnum("BACKEND", "file", "file", "pg"),
		LedgerPath:    led.MayPath("PATH", "last_check.txt"),

		ZipcodesPath: geo.MayPath("ZIPCODES_PATH", "zipcodes_25mi.txt"),

		OutputDir:    out.MayPath("DIR", "."),
		OutputPrefix: out.MayString("PREFIX", "matches"),
		Stdout:       out.MayBool("STDOUT", false),
		ClickHouse:   out.MayBool("CLICKHOUSE", false),
		CHTable:      out.MayString("CH_TABLE", "ham_matches"),

		MetricsTextfile: met.MayPath("TEXTFILE", ""),
	}
}

// Validate checks cross field rules the config readers cannot
func (o Options) Validate() error { return bind.Struct(o) }

// NeedsPG reports whether the run needs a postgres connection
func (o Options) NeedsPG() bool { return o.LedgerBackend == "pg" }

// NeedsCH reports whether the run needs a clickhouse connection
func (o Options) NeedsCH() bool { return o.ClickHouse }

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
