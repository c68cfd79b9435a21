package journal_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pflow-xyz/go-treasury/journal"
)

func TestWriteAndParse(t *testing.T) {
	var buf bytes.Buffer
	w := journal.NewWriter(&buf)

	e1 := journal.NewEntry("ledger-1", journal.OpIssue, "alice")
	e1.Amount = 5
	e1.Collateral = 750
	e2 := journal.NewEntry("ledger-1", journal.OpRedeem, "alice").
		WithResult(errors.New("ledger: burn amount exceeds circulating supply"))

	for _, e := range []journal.Entry{e1, e2} {
		if err := w.Record(e); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	entries, err := journal.Parse(&buf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].Operation != journal.OpIssue || !entries[0].OK() {
		t.Errorf("first entry = %+v, want committed issue", entries[0])
	}
	if entries[0].Amount != 5 || entries[0].Collateral != 750 {
		t.Errorf("first entry amounts = %d/%d, want 5/750", entries[0].Amount, entries[0].Collateral)
	}
	if entries[1].OK() {
		t.Error("second entry should record a rejection")
	}
	if entries[0].OpID == "" || entries[0].OpID == entries[1].OpID {
		t.Error("entries must carry distinct operation IDs")
	}
}

func TestParseSkipsEmptyLines(t *testing.T) {
	input := `{"op_id":"1","ledger_id":"l","operation":"pause","result":"ok","timestamp":"2026-01-02T15:04:05Z"}

{"op_id":"2","ledger_id":"l","operation":"resume","result":"ok","timestamp":"2026-01-02T15:05:05Z"}
`
	entries, err := journal.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestParseRejectsMalformedLine(t *testing.T) {
	input := `{"op_id":"1","ledger_id":"l","operation":"pause","result":"ok","timestamp":"2026-01-02T15:04:05Z"}
not json
`
	_, err := journal.Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the offending line: %v", err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := t.TempDir() + "/ops.journal"

	w, err := journal.OpenFile(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := w.Record(journal.NewEntry("ledger-1", journal.OpInitialize, "owner")); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Reopen and append: the journal is append-only.
	w, err = journal.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := w.Record(journal.NewEntry("ledger-1", journal.OpPause, "governance")); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	w.Close()

	entries, err := journal.ParseFile(path)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after append, got %d", len(entries))
	}
	if entries[1].Operation != journal.OpPause {
		t.Errorf("second entry = %s, want pause", entries[1].Operation)
	}
}
