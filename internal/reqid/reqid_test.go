package reqid

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithAndFrom(t *testing.T) {
	id := New()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("New returned %q: %v", id, err)
	}
	ctx := With(context.Background(), id)
	got, ok := From(ctx)
	if !ok || got != id {
		t.Fatalf("From = %q, %v", got, ok)
	}
	if _, ok := From(context.Background()); ok {
		t.Fatalf("From on bare context should be false")
	}
	if _, ok := From(With(context.Background(), "")); ok {
		t.Fatalf("empty id should not be reported")
	}
}
