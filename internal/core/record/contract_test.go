package record

import (
	"errors"
	"testing"
	"time"
)

func TestParseInstant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "calendar date", raw: "2024-08-01", want: "2024-08-01T00:00:00.000Z"},
		{name: "utc instant", raw: "2024-08-01T10:20:30Z", want: "2024-08-01T10:20:30.000Z"},
		{name: "offset instant", raw: "2024-08-01T10:20:30-03:00", want: "2024-08-01T13:20:30.000Z"},
		{name: "milliseconds", raw: "2024-08-01T10:20:30.123Z", want: "2024-08-01T10:20:30.123Z"},
		{name: "local datetime", raw: "2024-08-01T10:20", want: "2024-08-01T10:20:00.000Z"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseInstant(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if FormatInstant(got) != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, FormatInstant(got))
			}
		})
	}

	if _, err := ParseInstant("01/08/2024"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := ParseInstant("  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPrepareCreate_BaseRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	c := MustCollection(CollectionCleaning)

	doc, err := PrepareCreate(c, Document{
		"date":         "2024-08-10",
		FieldIsActive:  false,
		FieldCreatedBy: "forged",
		"group":        "A",
	}, "id-1", "actor-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "id-1" {
		t.Fatalf("unexpected id: %s", doc.ID())
	}
	if doc[FieldIsActive] != true {
		t.Fatalf("expected active record")
	}
	if doc[FieldCreatedBy] != "actor-1" {
		t.Fatalf("expected createdBy to be stamped, got %v", doc[FieldCreatedBy])
	}
	if doc["date"] != "2024-08-10T00:00:00.000Z" {
		t.Fatalf("date not normalized: %v", doc["date"])
	}
}

func TestPrepareCreate_NestedDates(t *testing.T) {
	t.Parallel()

	c := MustCollection(CollectionTerritories)
	doc, err := PrepareCreate(c, Document{
		"number": 3,
		"status": "REQUESTED",
		"assignment": map[string]any{
			"publisherName":      "Ana",
			"checkoutDate":       "2024-08-01T08:00:00Z",
			"expectedReturnDate": "2024-09-01",
		},
	}, "T3", "actor", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := doc.Lookup("assignment.expectedReturnDate")
	if !ok || got != "2024-09-01T00:00:00.000Z" {
		t.Fatalf("nested date not normalized: %v", got)
	}
	if _, ok := doc[FieldCreatedAt]; ok {
		t.Fatalf("raw record must not carry audit metadata")
	}
}

func TestApplyPatch(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	c := MustCollection(CollectionCleaning)
	existing, err := PrepareCreate(c, Document{"date": "2024-08-01", "group": "A", "notes": "n"}, "id-1", "actor-1", created)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	t.Run("merge", func(t *testing.T) {
		t.Parallel()
		later := created.Add(time.Hour)
		merged, err := ApplyPatch(c, existing, Document{"group": "B", "notes": nil, FieldID: "other"}, "actor-2", later)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if merged.ID() != "id-1" || merged["group"] != "B" {
			t.Fatalf("unexpected merge: %v", merged)
		}
		if _, ok := merged["notes"]; ok {
			t.Fatalf("nil must remove the field")
		}
		if merged[FieldUpdatedAt] != FormatInstant(later) || merged[FieldUpdatedBy] != "actor-2" {
			t.Fatalf("update stamp missing: %v", merged)
		}
		if existing["group"] != "A" {
			t.Fatalf("existing document mutated")
		}
	})

	t.Run("required date removal", func(t *testing.T) {
		t.Parallel()
		_, err := ApplyPatch(c, existing, Document{"date": nil}, "actor-2", created)
		var fe *FieldError
		if !errors.As(err, &fe) || fe.Field != "date" {
			t.Fatalf("expected FieldError on date, got %v", err)
		}
	})

	t.Run("isActive is not patchable", func(t *testing.T) {
		t.Parallel()
		archived, err := ApplyArchive(c, existing, "actor-2", created)
		if err != nil {
			t.Fatalf("archive: %v", err)
		}
		revived, err := ApplyPatch(c, archived, Document{FieldIsActive: true, "group": "C"}, "actor-3", created)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if revived[FieldIsActive] != false || revived["group"] != "C" {
			t.Fatalf("isActive must only change through ApplyArchive: %v", revived)
		}
		patched, err := ApplyPatch(c, existing, Document{FieldIsActive: false}, "actor-2", created)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if patched[FieldIsActive] != true {
			t.Fatalf("patch must not archive: %v", patched)
		}
	})
}

func TestApplyArchive(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)
	c := MustCollection(CollectionPublishers)
	existing := Document{FieldID: "pub-1", "name": "Ana", FieldIsActive: true, FieldCreatedBy: "actor-1"}

	archived, err := ApplyArchive(c, existing, "actor-2", later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if archived[FieldIsActive] != false || archived[FieldUpdatedBy] != "actor-2" || archived[FieldUpdatedAt] != FormatInstant(later) {
		t.Fatalf("unexpected archive result: %v", archived)
	}
	if existing[FieldIsActive] != true {
		t.Fatalf("existing document mutated")
	}

	if _, err := ApplyArchive(MustCollection(CollectionBusTickets), Document{FieldID: "t1"}, "actor-2", later); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
}

func TestPrepareCreate_CollectionDateFields(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		collection string
		data       Document
		want       map[string]string
		absent     []string
	}{
		{
			name:       "cleaning end date",
			collection: CollectionCleaning,
			data:       Document{"date": "2024-08-01", "endDate": "2024-08-15"},
			want:       map[string]string{"date": "2024-08-01T00:00:00.000Z", "endDate": "2024-08-15T00:00:00.000Z"},
		},
		{
			name:       "report date",
			collection: CollectionReports,
			data:       Document{"date": "2024-07-01", "submittedAt": "2024-08-01T10:00:00Z"},
			want:       map[string]string{"date": "2024-07-01T00:00:00.000Z", "submittedAt": "2024-08-01T10:00:00.000Z"},
		},
		{
			name:       "publisher dates",
			collection: CollectionPublishers,
			data:       Document{"name": "Ana", "birthDate": "1990-05-02", "baptismDate": ""},
			want:       map[string]string{"birthDate": "1990-05-02T00:00:00.000Z"},
			absent:     []string{"baptismDate"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := PrepareCreate(MustCollection(tt.collection), tt.data, "id-1", "actor-1", now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for field, want := range tt.want {
				if doc[field] != want {
					t.Fatalf("%s: expected %s, got %v", field, want, doc[field])
				}
			}
			for _, field := range tt.absent {
				if _, ok := doc[field]; ok {
					t.Fatalf("%s must be dropped when empty", field)
				}
			}
		})
	}

	_, err := PrepareCreate(MustCollection(CollectionPublishers), Document{"name": "Ana"}, "id-1", "actor-1", now)
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "birthDate" {
		t.Fatalf("expected FieldError on birthDate, got %v", err)
	}
}

func TestFilterAndSort(t *testing.T) {
	t.Parallel()

	strict := MustCollection(CollectionPublishers)
	docs := []Document{
		{FieldID: "b", "name": "Bruno", FieldIsActive: true},
		{FieldID: "a", "name": "Ana", FieldIsActive: true},
		{FieldID: "c", "name": "Carla", FieldIsActive: false},
		{FieldID: "d", FieldIsActive: true},
		{FieldID: "e", "name": "Eva"},
	}

	got, err := FilterAndSort(strict, docs, ListOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "d"}
	if len(got) != len(want) {
		t.Fatalf("expected %d docs, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID() != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID())
		}
	}

	lenient := MustCollection(CollectionReports)
	got, err = FilterAndSort(lenient, docs, ListOptions{SortField: "name", Direction: DirectionDesc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = []string{"e", "b", "a", "d"}
	for i, id := range want {
		if got[i].ID() != id {
			t.Fatalf("lenient position %d: expected %s, got %s", i, id, got[i].ID())
		}
	}
}

func TestSortDocuments_TiesBreakByID(t *testing.T) {
	t.Parallel()

	docs := []Document{
		{FieldID: "z", "number": float64(1)},
		{FieldID: "a", "number": float64(1)},
		{FieldID: "m", "number": float64(0)},
	}
	SortDocuments(docs, SortSpec{Field: "number", Direction: DirectionAsc})
	if docs[0].ID() != "m" || docs[1].ID() != "a" || docs[2].ID() != "z" {
		t.Fatalf("unexpected order: %v", docs)
	}
}

func TestLookupCollection(t *testing.T) {
	t.Parallel()

	if _, err := LookupCollection("unknown"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
	if got := len(Catalog()); got != 12 {
		t.Fatalf("expected 12 collections, got %d", got)
	}
	territories := MustCollection(CollectionTerritories)
	if territories.Deletable() || territories.Archivable() {
		t.Fatalf("territories must be neither deletable nor archivable")
	}
	if !MustCollection(CollectionBusTickets).Deletable() {
		t.Fatalf("bus tickets must be deletable")
	}
}
