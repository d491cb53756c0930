package skills

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
)

// Table maps a skill category to the keywords that suggest it. Matching is
// case-insensitive substring matching over issue descriptions and part names.
type Table map[string][]string

// DefaultTable covers the trades seen in container field service. The table
// is data, not behavior: deployments can replace it wholesale via LoadFile
// without touching the scorer.
func DefaultTable() Table {
	return Table{
		"electrical": {
			"electric", "wiring", "voltage", "circuit", "breaker", "fuse",
			"short circuit", "power supply",
		},
		"mechanical": {
			"mechanical", "motor", "bearing", "vibration", "belt", "gearbox",
			"hinge", "door seal",
		},
		"plumbing": {
			"plumbing", "leak", "pipe", "drain", "valve", "water",
		},
		"refrigeration": {
			"refrigeration", "cooling", "compressor", "refrigerant", "freezer",
			"temperature", "defrost",
		},
		"hvac": {
			"hvac", "air conditioning", "ventilation", "airflow", "condenser",
			"evaporator", "thermostat",
		},
		"electronics": {
			"electronics", "controller", "sensor", "display", "pcb", "firmware",
			"alarm code",
		},
	}
}

// LoadFile reads a category-to-keywords table from a JSON file.
func LoadFile(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return t, nil
}

// Infer returns the sorted set of skill categories suggested by the issue
// description and required parts. An empty result means generalist work.
func (t Table) Infer(issue string, parts []string) []string {
	haystacks := make([]string, 0, len(parts)+1)
	if s := strings.ToLower(strings.TrimSpace(issue)); s != "" {
		haystacks = append(haystacks, s)
	}
	for _, p := range parts {
		if s := strings.ToLower(strings.TrimSpace(p)); s != "" {
			haystacks = append(haystacks, s)
		}
	}

	matched := map[string]bool{}
	for category, keywords := range t {
		for _, kw := range keywords {
			if matched[category] {
				break
			}
			kw = strings.ToLower(kw)
			for _, h := range haystacks {
				if strings.Contains(h, kw) {
					matched[category] = true
					break
				}
			}
		}
	}

	out := make([]string, 0, len(matched))
	for category := range matched {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Mismatch reports whether a technician's declared skills intersect none of
// the required categories. A technician with no declared skills is treated
// as a generalist; work with no inferred categories needs no specific
// skill. Either way there is no mismatch.
func Mismatch(declared []string, required []string) bool {
	if len(required) == 0 || len(declared) == 0 {
		return false
	}
	for _, skill := range declared {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s == "" {
			continue
		}
		for _, category := range required {
			c := strings.ToLower(category)
			if strings.Contains(s, c) || strings.Contains(c, s) {
				return false
			}
		}
	}
	return true
}
