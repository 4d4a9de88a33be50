package contacts

import (
	"context"
	"fmt"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/plantpulse/messaging/internal/apperr"
	"github.com/plantpulse/messaging/internal/profiles"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&profiles.Profile{}, &Contact{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *profiles.Service) {
	t.Helper()
	db := openTestDB(t)
	profileRepo := profiles.NewRepo(db)
	return NewService(NewRepo(db), profileRepo), profiles.NewService(profileRepo)
}

func seed(t *testing.T, ps *profiles.Service, id uint64, email string) {
	t.Helper()
	if _, err := ps.Ensure(context.Background(), id, email); err != nil {
		t.Fatalf("seed profile %d: %v", id, err)
	}
}

func TestAddListRemove(t *testing.T) {
	svc, ps := newTestService(t)
	ctx := context.Background()
	seed(t, ps, 1, "ana@x.io")
	seed(t, ps, 2, "luis@x.io")

	edge, err := svc.Add(ctx, 1, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if edge.Status != StatusAccepted {
		t.Fatalf("expected accepted edge, got %q", edge.Status)
	}
	if edge.Profile.ID != 2 || edge.Profile.Username != "luis" {
		t.Fatalf("expected joined target profile, got %+v", edge.Profile)
	}

	list, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ContactID != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}

	// the relation is one-directional: luis sees nothing
	other, err := svc.List(ctx, 2)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no reciprocal edge, got %+v", other)
	}

	if err := svc.Remove(ctx, 1, 2); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(ctx, 1, 2); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found on second remove, got %v", err)
	}

	// no residual state: re-add succeeds
	if _, err := svc.Add(ctx, 1, 2); err != nil {
		t.Fatalf("re-add after remove: %v", err)
	}
}

func TestAdd_DuplicateIsConflict(t *testing.T) {
	svc, ps := newTestService(t)
	ctx := context.Background()
	seed(t, ps, 3, "a@x.io")
	seed(t, ps, 4, "b@x.io")

	if _, err := svc.Add(ctx, 3, 4); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, 3, 4); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	// opposite direction is a distinct edge
	if _, err := svc.Add(ctx, 4, 3); err != nil {
		t.Fatalf("reverse add: %v", err)
	}
}

func TestAdd_Validation(t *testing.T) {
	svc, ps := newTestService(t)
	ctx := context.Background()
	seed(t, ps, 5, "a@x.io")

	if _, err := svc.Add(ctx, 5, 5); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation for self-add, got %v", err)
	}
	if _, err := svc.Add(ctx, 5, 999); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unknown target, got %v", err)
	}
	if _, err := svc.Add(ctx, 5, 0); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation for zero id, got %v", err)
	}
}

func TestRemove_ScopedToOwner(t *testing.T) {
	svc, ps := newTestService(t)
	ctx := context.Background()
	seed(t, ps, 6, "a@x.io")
	seed(t, ps, 7, "b@x.io")

	if _, err := svc.Add(ctx, 6, 7); err != nil {
		t.Fatalf("add: %v", err)
	}

	// user 7 cannot remove 6's edge
	if err := svc.Remove(ctx, 7, 6); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found removing another user's edge, got %v", err)
	}
	list, err := svc.List(ctx, 6)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("edge should survive, got %+v", list)
	}
}
