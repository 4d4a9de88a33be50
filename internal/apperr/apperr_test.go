package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if KindOf(Forbidden("nope")) != KindForbidden {
		t.Fatalf("expected forbidden kind")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected unknown kind for foreign error")
	}

	// kind survives wrapping
	wrapped := fmt.Errorf("handler: %w", Conflict("dup"))
	if KindOf(wrapped) != KindConflict {
		t.Fatalf("expected conflict through wrap, got %v", KindOf(wrapped))
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("store unavailable", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if IsKind(err, KindValidation) {
		t.Fatalf("internal error misclassified")
	}
}
