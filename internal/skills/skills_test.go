package skills

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestInferFromIssueText(t *testing.T) {
	table := DefaultTable()
	got := table.Infer("Electrical fault near the door, breaker keeps tripping", nil)
	if !reflect.DeepEqual(got, []string{"electrical"}) {
		t.Fatalf("expected [electrical], got %v", got)
	}
}

func TestInferFromParts(t *testing.T) {
	table := DefaultTable()
	got := table.Infer("unit not working", []string{"Compressor valve kit"})
	if !reflect.DeepEqual(got, []string{"plumbing", "refrigeration"}) {
		t.Fatalf("expected [plumbing refrigeration], got %v", got)
	}
}

func TestInferNoMatchMeansGeneralist(t *testing.T) {
	table := DefaultTable()
	if got := table.Infer("routine inspection", nil); len(got) != 0 {
		t.Fatalf("expected no categories, got %v", got)
	}
}

func TestMismatchRules(t *testing.T) {
	required := []string{"electrical"}

	if Mismatch(nil, required) {
		t.Fatalf("no declared skills must mean generalist, not mismatch")
	}
	if Mismatch([]string{"plumbing"}, nil) {
		t.Fatalf("no required categories must mean no mismatch")
	}
	if Mismatch([]string{"Electrical Systems"}, required) {
		t.Fatalf("substring match in either direction must clear the mismatch")
	}
	if !Mismatch([]string{"plumbing"}, required) {
		t.Fatalf("disjoint skills must be flagged as mismatch")
	}
}

func TestLoadFileOverridesTable(t *testing.T) {
	custom := Table{"welding": {"weld", "torch"}}
	raw, err := json.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "skills.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := loaded.Infer("cracked frame needs torch work", nil)
	if !reflect.DeepEqual(got, []string{"welding"}) {
		t.Fatalf("expected [welding], got %v", got)
	}
}
