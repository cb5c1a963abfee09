package reconcile

import "testing"

type rec struct {
	ID   string
	Name string
}

func id(r rec) string { return r.ID }

func TestMergePrependsNewRecord(t *testing.T) {
	list := []rec{{ID: "b"}, {ID: "c"}}
	got := Merge(list, rec{ID: "a"}, id)

	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].ID != "a" {
		t.Fatalf("new record must be prepended, got head %s", got[0].ID)
	}
	if len(list) != 2 {
		t.Fatalf("input slice was mutated: %+v", list)
	}
}

func TestMergeReplacesInPlace(t *testing.T) {
	list := []rec{{ID: "a", Name: "old"}, {ID: "b"}}
	got := Merge(list, rec{ID: "a", Name: "new"}, id)

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Name != "new" {
		t.Fatalf("record was not replaced: %+v", got[0])
	}
	if list[0].Name != "old" {
		t.Fatalf("input slice was mutated: %+v", list)
	}
}

func TestMergeIntoEmpty(t *testing.T) {
	got := Merge(nil, rec{ID: "a"}, id)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDrop(t *testing.T) {
	list := []rec{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := Drop(list, "b", id)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got = Drop(got, "missing", id); len(got) != 2 {
		t.Fatalf("dropping a missing id must be a no-op")
	}
}
