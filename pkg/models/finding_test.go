package models

import "testing"

func TestFindingIDDeterministic(t *testing.T) {
	a := FindingID(KindUnusedImport, "src/a.ts", "lodash", 3)
	b := FindingID(KindUnusedImport, "src/a.ts", "lodash", 3)
	if a != b {
		t.Errorf("FindingID not deterministic: %s != %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("FindingID length = %d, want 16", len(a))
	}
}

func TestFindingIDDistinguishesInputs(t *testing.T) {
	base := FindingID(KindUnusedImport, "src/a.ts", "lodash", 3)
	variants := []string{
		FindingID(KindUnusedVariable, "src/a.ts", "lodash", 3),
		FindingID(KindUnusedImport, "src/b.ts", "lodash", 3),
		FindingID(KindUnusedImport, "src/a.ts", "moment", 3),
		FindingID(KindUnusedImport, "src/a.ts", "lodash", 4),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base id", i)
		}
	}
}

func TestCertaintyRank(t *testing.T) {
	if CertaintyHigh.Rank() >= CertaintyMedium.Rank() {
		t.Error("high should rank before medium")
	}
	if CertaintyMedium.Rank() >= CertaintyLow.Rank() {
		t.Error("medium should rank before low")
	}
}

func TestCertaintyDegrade(t *testing.T) {
	if CertaintyHigh.Degrade() != CertaintyMedium {
		t.Error("high should degrade to medium")
	}
	if CertaintyMedium.Degrade() != CertaintyLow {
		t.Error("medium should degrade to low")
	}
	if CertaintyLow.Degrade() != CertaintyLow {
		t.Error("low should stay low")
	}
}

func TestFindingPrimaryLocation(t *testing.T) {
	f := Finding{Locations: []Location{{File: "a.go", StartLine: 10}}}
	if f.File() != "a.go" || f.Line() != 10 {
		t.Errorf("primary location = %s:%d, want a.go:10", f.File(), f.Line())
	}

	empty := Finding{}
	if empty.File() != "" || empty.Line() != 0 {
		t.Error("empty finding should report zero location")
	}
}
