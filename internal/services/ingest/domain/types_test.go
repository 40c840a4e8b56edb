package domain

import "testing"

func TestNewSource(t *testing.T) {
	t.Parallel()
	s := NewSource("mon", "l_am_%s.zip")
	if s.Name != "mon" || s.Artifact != "l_am_mon.zip" {
		t.Fatalf("NewSource = %+v", s)
	}
}

func TestHamRecord_IsClub(t *testing.T) {
	t.Parallel()
	if !(HamRecord{FullName: "Radio Club of Vienna"}).IsClub() {
		t.Fatalf("no first and last name should be a club")
	}
	if (HamRecord{LastName: "Smith"}).IsClub() || (HamRecord{FirstName: "John"}).IsClub() {
		t.Fatalf("either name present is an individual")
	}
}

func TestVerdictAndSummaryCount(t *testing.T) {
	t.Parallel()
	if VerdictNew.String() != "new" || VerdictAlreadySeen.String() != "already_seen" || Verdict(0).String() != "unknown" {
		t.Fatalf("verdict labels drifted")
	}
	s := Summary{Sources: []SourceOutcome{
		{Source: "mon", Verdict: VerdictNew},
		{Source: "tue", Verdict: VerdictAlreadySeen},
		{Source: "wed", Verdict: VerdictNew},
	}}
	if s.Count(VerdictNew) != 2 || s.Count(VerdictAlreadySeen) != 1 {
		t.Fatalf("Count mismatch: %+v", s)
	}
}
