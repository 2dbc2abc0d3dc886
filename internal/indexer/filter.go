package indexer

import (
	"strings"

	"golang.org/x/text/cases"
)

// DropDuplicates removes records whose description contains any marker,
// compared under Unicode case folding. It returns the kept and dropped records.
func DropDuplicates(records []Record, markers []string) (kept, dropped []Record) {
	fold := cases.Fold()
	folded := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			folded = append(folded, fold.String(m))
		}
	}

	for _, rec := range records {
		desc := fold.String(rec.Description)
		duplicate := false
		for _, m := range folded {
			if strings.Contains(desc, m) {
				duplicate = true
				break
			}
		}
		if duplicate {
			dropped = append(dropped, rec)
			continue
		}
		kept = append(kept, rec)
	}
	return kept, dropped
}

// DropSingleVisits removes every subject that has exactly one record left. It
// returns the kept records and the dropped subjects in first-seen order.
func DropSingleVisits(records []Record) (kept []Record, subjects []string) {
	counts := make(map[string]int, len(records))
	var order []string
	for _, rec := range records {
		if counts[rec.Subject] == 0 {
			order = append(order, rec.Subject)
		}
		counts[rec.Subject]++
	}
	for _, subject := range order {
		if counts[subject] == 1 {
			subjects = append(subjects, subject)
		}
	}
	for _, rec := range records {
		if counts[rec.Subject] != 1 {
			kept = append(kept, rec)
		}
	}
	return kept, subjects
}
