package indexer

import (
	"reflect"
	"testing"
)

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Identifier)
	}
	return out
}

func TestDropDuplicates(t *testing.T) {
	records := []Record{
		{Identifier: "I1", Description: "MPRAGE"},
		{Identifier: "I2", Description: "MPRAGE_2"},
		{Identifier: "I3", Description: "mprage Repeat"},
		{Identifier: "I4", Description: "Straße"},
	}

	kept, dropped := DropDuplicates(records, []string{"_2", "REPEAT", "SS"})
	if got := ids(kept); !reflect.DeepEqual(got, []string{"I1"}) {
		t.Fatalf("kept = %v", got)
	}
	if got := ids(dropped); !reflect.DeepEqual(got, []string{"I2", "I3", "I4"}) {
		t.Fatalf("dropped = %v", got)
	}
}

func TestDropDuplicatesIgnoresBlankMarkers(t *testing.T) {
	records := []Record{{Identifier: "I1", Description: "MPRAGE"}}
	kept, dropped := DropDuplicates(records, []string{"", "  "})
	if len(kept) != 1 || len(dropped) != 0 {
		t.Fatalf("kept=%v dropped=%v", ids(kept), ids(dropped))
	}
}

func TestDropSingleVisits(t *testing.T) {
	records := []Record{
		{Identifier: "I1", Subject: "A"},
		{Identifier: "I2", Subject: "B"},
		{Identifier: "I3", Subject: "A"},
		{Identifier: "I4", Subject: "C"},
	}
	kept, subjects := DropSingleVisits(records)
	if got := ids(kept); !reflect.DeepEqual(got, []string{"I1", "I3"}) {
		t.Fatalf("kept = %v", got)
	}
	if !reflect.DeepEqual(subjects, []string{"B", "C"}) {
		t.Fatalf("dropped subjects = %v", subjects)
	}
}
