package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := UUID("go-newsroom:test:alpha")
	second := UUID("go-newsroom:test:alpha")
	if first != second {
		t.Fatalf("expected stable derivation, got %s and %s", first, second)
	}
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid for blank key, got %s", got)
	}
}

func TestEventAndCommentUUIDsDoNotCollide(t *testing.T) {
	itemID := uuid.New()
	event := EventUUID(itemID, 1)
	comment := CommentUUID(itemID, 1)
	if event == comment {
		t.Fatal("expected distinct namespaces for events and comments")
	}
	if EventUUID(itemID, 1) == EventUUID(itemID, 2) {
		t.Fatal("expected sequence to differentiate events")
	}
	if EventUUID(itemID, 1) == EventUUID(uuid.New(), 1) {
		t.Fatal("expected item id to differentiate events")
	}
}
