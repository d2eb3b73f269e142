package journal

import (
	"testing"
	"time"
)

// TestRecordAndList verifies the journal round trip: runs come back newest
// first with assigned IDs.
func TestRecordAndList(t *testing.T) {
	jnl, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer jnl.Close()

	base := time.Date(2023, 4, 2, 8, 0, 0, 0, time.UTC)

	id1, err := jnl.Record(Run{
		Operation:  "profiles",
		Records:    1,
		StartedAt:  base,
		FinishedAt: base.Add(2 * time.Second),
	})
	if err != nil {
		t.Fatal(err)
	}
	if id1 == "" {
		t.Fatal("expected an assigned run ID")
	}

	_, err = jnl.Record(Run{
		Operation:  "entries",
		Records:    288,
		Error:      "nightscout add entries: 401 Unauthorized",
		StartedAt:  base.Add(time.Minute),
		FinishedAt: base.Add(time.Minute + 5*time.Second),
	})
	if err != nil {
		t.Fatal(err)
	}

	runs, err := jnl.Runs(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].Operation != "entries" {
		t.Errorf("runs[0].Operation = %q, want entries (newest first)", runs[0].Operation)
	}
	if runs[0].Error == "" {
		t.Error("runs[0].Error should carry the failure text")
	}
	if runs[1].ID != id1 {
		t.Errorf("runs[1].ID = %q, want %q", runs[1].ID, id1)
	}
	if !runs[1].StartedAt.Equal(base) {
		t.Errorf("runs[1].StartedAt = %v, want %v", runs[1].StartedAt, base)
	}
}

// TestRunsLimit verifies the limit is applied.
func TestRunsLimit(t *testing.T) {
	jnl, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer jnl.Close()

	base := time.Date(2023, 4, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := jnl.Record(Run{
			Operation:  "treatments",
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := jnl.Runs(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Errorf("runs = %d, want 3", len(runs))
	}
}
