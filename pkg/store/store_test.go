package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/render"
)

func sampleColumnSet() render.ColumnSet {
	return render.ColumnSet{
		ColumnCount: 2,
		ColumnWidth: 310,
		Columns: []render.Column{
			{Index: 0, Items: []render.ColumnItem{{ID: "a", Height: 300}}, Height: 300},
			{Index: 1, Items: []render.ColumnItem{{ID: "b", Height: 280}}, Height: 280},
		},
		Variation: 6.7,
		TargetMet: true,
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	// Missing record
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, errors.ErrCodeLayoutNotFound) {
		t.Fatalf("Get missing: err = %v, want LAYOUT_NOT_FOUND", err)
	}

	// Put assigns ID and timestamps
	rec := &Record{Name: "homepage", FeedHash: "abc", ColumnSet: sampleColumnSet()}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Put should assign an ID")
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Fatal("Put should set timestamps")
	}

	// Round trip
	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "homepage" || got.FeedHash != "abc" {
		t.Errorf("Get = %+v", got)
	}
	if got.ColumnSet.ColumnCount != 2 {
		t.Errorf("ColumnSet not preserved: %+v", got.ColumnSet)
	}

	// Update preserves CreatedAt
	created := rec.CreatedAt
	time.Sleep(time.Millisecond)
	rec.Name = "homepage-v2"
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put update: %v", err)
	}
	got, _ = s.Get(ctx, rec.ID)
	if got.Name != "homepage-v2" {
		t.Errorf("update not applied: %q", got.Name)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on update: %v -> %v", created, got.CreatedAt)
	}
	if !got.UpdatedAt.After(created) {
		t.Errorf("UpdatedAt should advance on update")
	}

	// Delete
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !errors.Is(err, errors.ErrCodeLayoutNotFound) {
		t.Errorf("Get after delete: err = %v, want LAYOUT_NOT_FOUND", err)
	}
	if err := s.Delete(ctx, rec.ID); !errors.Is(err, errors.ErrCodeLayoutNotFound) {
		t.Errorf("double delete: err = %v, want LAYOUT_NOT_FOUND", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	for _, name := range []string{"first", "second", "third"} {
		if err := s.Put(ctx, &Record{Name: name, ColumnSet: sampleColumnSet()}); err != nil {
			t.Fatalf("Put %s: %v", name, err)
		}
		time.Sleep(time.Millisecond)
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List returned %d records, want 3", len(all))
	}
	// Newest first
	if all[0].Name != "third" || all[2].Name != "first" {
		t.Errorf("List order: %q, %q, %q", all[0].Name, all[1].Name, all[2].Name)
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d records", len(limited))
	}
}
