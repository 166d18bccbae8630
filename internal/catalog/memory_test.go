package catalog_test

import (
	"testing"

	"github.com/oneday-english/oneday/internal/catalog"
)

func TestMemory_ItemsOrdered(t *testing.T) {
	m := catalog.NewMemory()
	m.Add(catalog.Item{ID: "v3", Type: catalog.TypeVocab, Level: 1, Position: 3})
	m.Add(catalog.Item{ID: "v1", Type: catalog.TypeVocab, Level: 1, Position: 1})
	m.Add(catalog.Item{ID: "v2", Type: catalog.TypeVocab, Level: 1, Position: 2})

	items, err := m.Items(t.Context(), catalog.TypeVocab, 1)
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}

	want := []string{"v1", "v2", "v3"}
	if len(items) != len(want) {
		t.Fatalf("Items() count = %d, want %d", len(items), len(want))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("items[%d].ID = %q, want %q", i, items[i].ID, id)
		}
	}
}

func TestMemory_ItemsOrdered_PositionTieBreaksOnID(t *testing.T) {
	m := catalog.NewMemory()
	m.Add(catalog.Item{ID: "b", Type: catalog.TypeReading, Level: 2, Position: 1})
	m.Add(catalog.Item{ID: "a", Type: catalog.TypeReading, Level: 2, Position: 1})

	items, _ := m.Items(t.Context(), catalog.TypeReading, 2)
	if items[0].ID != "a" || items[1].ID != "b" {
		t.Errorf("tie break order = [%s %s], want [a b]", items[0].ID, items[1].ID)
	}
}

func TestMemory_Items_UnknownLevelEmpty(t *testing.T) {
	m := catalog.NewMemory()
	m.Add(catalog.Item{ID: "v1", Type: catalog.TypeVocab, Level: 1, Position: 1})

	items, err := m.Items(t.Context(), catalog.TypeVocab, 9)
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Items() for unknown level = %d items, want 0", len(items))
	}
}

func TestMemory_SeparatesTypesAndLevels(t *testing.T) {
	m := catalog.NewMemory()
	m.Add(catalog.Item{ID: "v1", Type: catalog.TypeVocab, Level: 1, Position: 1})
	m.Add(catalog.Item{ID: "g1", Type: catalog.TypeGrammar, Level: 1, Position: 1})
	m.Add(catalog.Item{ID: "v2", Type: catalog.TypeVocab, Level: 2, Position: 1})

	items, _ := m.Items(t.Context(), catalog.TypeVocab, 1)
	if len(items) != 1 || items[0].ID != "v1" {
		t.Errorf("Items(vocab, 1) = %v, want only v1", items)
	}
}

func TestFind(t *testing.T) {
	items := []catalog.Item{{ID: "a"}, {ID: "b"}}

	if _, ok := catalog.Find(items, "b"); !ok {
		t.Error("Find(b) should succeed")
	}
	if _, ok := catalog.Find(items, "z"); ok {
		t.Error("Find(z) should fail")
	}
}
