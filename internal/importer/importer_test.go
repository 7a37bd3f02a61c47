package importer

import (
	"strings"
	"testing"

	"github.com/meltforce/liftlog/internal/models"
)

// TestParseCSV verifies required columns, optional columns, and set-number
// assignment for blank set_number fields.
func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"date,exercise,set_type,set_number,weight_kg,reps,rir",
		"2026-01-05,Squat,warmup,1,40,8,",
		"2026-01-05,Squat,work,,100,5,2",
		"2026-01-05,Squat,work,,102.5,5,1.5",
		"2026-01-07,Bench Press,work,1,80,8,2",
	}, "\n")

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}

	if rows[0].SetType != models.SetTypeWarmup || rows[0].SetNumber != 1 {
		t.Errorf("row 0 = %+v, want warmup set 1", rows[0])
	}
	if rows[0].RIR != nil {
		t.Errorf("row 0 RIR = %v, want nil", rows[0].RIR)
	}

	// Blank set numbers count up per exercise and set type within a day.
	if rows[1].SetNumber != 1 || rows[2].SetNumber != 2 {
		t.Errorf("work set numbers = %d, %d, want 1, 2", rows[1].SetNumber, rows[2].SetNumber)
	}
	if rows[1].RIR == nil || *rows[1].RIR != 2 {
		t.Errorf("row 1 RIR = %v, want 2", rows[1].RIR)
	}
	if rows[2].WeightKg != 102.5 {
		t.Errorf("row 2 weight = %v, want 102.5", rows[2].WeightKg)
	}
}

// TestParseCSVMissingColumn verifies a missing required column errors.
func TestParseCSVMissingColumn(t *testing.T) {
	input := "date,exercise,reps\n2026-01-05,Squat,5\n"
	if _, err := ParseCSV(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for missing weight_kg column")
	}
}

// TestParseCSVBadData verifies malformed fields report their line number.
func TestParseCSVBadData(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bad date", "notadate,Squat,100,5"},
		{"bad weight", "2026-01-05,Squat,heavy,5"},
		{"bad reps", "2026-01-05,Squat,100,many"},
		{"empty exercise", "2026-01-05,,100,5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "date,exercise,weight_kg,reps\n" + tt.line + "\n"
			if _, err := ParseCSV(strings.NewReader(input)); err == nil {
				t.Fatalf("expected error for %q", tt.line)
			}
		})
	}
}

// TestGroupSessions verifies rows bucket by calendar day, oldest first.
func TestGroupSessions(t *testing.T) {
	input := strings.Join([]string{
		"date,exercise,weight_kg,reps",
		"2026-01-07,Bench Press,80,8",
		"2026-01-05,Squat,100,5",
		"2026-01-05,Squat,100,5",
		"2026-01-09,Deadlift,140,3",
	}, "\n")

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	groups := groupSessions(rows)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	wantDays := []string{"2026-01-05", "2026-01-07", "2026-01-09"}
	wantSizes := []int{2, 1, 1}
	for i, g := range groups {
		if got := g.Date.Format("2006-01-02"); got != wantDays[i] {
			t.Errorf("group %d date = %s, want %s", i, got, wantDays[i])
		}
		if len(g.Rows) != wantSizes[i] {
			t.Errorf("group %d size = %d, want %d", i, len(g.Rows), wantSizes[i])
		}
	}
}

// TestStateDBRoundTrip verifies the sqlite dedup state records and
// recognizes imported files.
func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer state.Close()

	imported, err := state.IsImported("log.csv", 123, "abc")
	if err != nil {
		t.Fatalf("IsImported: %v", err)
	}
	if imported {
		t.Error("fresh state should not know log.csv")
	}

	if err := state.MarkImported("log.csv", 123, "abc"); err != nil {
		t.Fatalf("MarkImported: %v", err)
	}

	imported, err = state.IsImported("log.csv", 123, "abc")
	if err != nil {
		t.Fatalf("IsImported: %v", err)
	}
	if !imported {
		t.Error("marked file should be recognized")
	}

	// Changed content means a re-import.
	imported, err = state.IsImported("log.csv", 123, "different-hash")
	if err != nil {
		t.Fatalf("IsImported: %v", err)
	}
	if imported {
		t.Error("changed hash should not match")
	}
}
