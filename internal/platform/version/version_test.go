package version

import "testing"

func TestInfo_DefaultsAndService(t *testing.T) {
	bi := Info("hamfinder-api")
	if bi.Service != "hamfinder-api" || bi.Version != "dev" || bi.Commit != "none" || bi.Date != "unknown" {
		t.Fatalf("Info = %+v", bi)
	}
}
