package profiles

import (
	"context"
	"fmt"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/plantpulse/messaging/internal/apperr"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Profile{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestEnsure_Idempotent(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	p1, err := svc.Ensure(context.Background(), 1, "ana.garcia@plantpulse.io")
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if p1.Username != "ana.garcia" {
		t.Fatalf("expected username from email local-part, got %q", p1.Username)
	}
	if p1.Status != StatusOnline {
		t.Fatalf("expected new profile online, got %q", p1.Status)
	}

	// second call must neither fail nor duplicate
	p2, err := svc.Ensure(context.Background(), 1, "ana.garcia@plantpulse.io")
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if p2.ID != p1.ID {
		t.Fatalf("expected same profile, got %d and %d", p1.ID, p2.ID)
	}

	var cnt int64
	if err := db.Model(&Profile{}).Where("id = ?", uint64(1)).Count(&cnt).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected exactly one profile row, got %d", cnt)
	}
}

func TestEnsure_KeepsExistingFields(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	if _, err := svc.Ensure(context.Background(), 2, "luis@plantpulse.io"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := svc.UpdateUsername(context.Background(), 2, "luis_m"); err != nil {
		t.Fatalf("update username: %v", err)
	}

	p, err := svc.Ensure(context.Background(), 2, "luis@plantpulse.io")
	if err != nil {
		t.Fatalf("re-ensure: %v", err)
	}
	if p.Username != "luis_m" {
		t.Fatalf("ensure overwrote existing username: %q", p.Username)
	}
}

func TestSearch_CaseInsensitiveExcludesSelf(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))
	ctx := context.Background()

	for id, email := range map[uint64]string{
		10: "ana@plantpulse.io",
		11: "anabel@plantpulse.io",
		12: "luis@plantpulse.io",
	} {
		if _, err := svc.Ensure(ctx, id, email); err != nil {
			t.Fatalf("seed %d: %v", id, err)
		}
	}

	got, err := svc.Search(ctx, 10, "ANA")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != 11 {
		t.Fatalf("expected only anabel (requester excluded), got %+v", got)
	}

	if _, err := svc.Search(ctx, 10, "   "); err == nil {
		t.Fatalf("expected validation error for blank query")
	} else if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", apperr.KindOf(err))
	}
}

func TestListAvailable_ExcludesSelfAndContacts(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))
	ctx := context.Background()

	for id, email := range map[uint64]string{
		20: "a@x.io",
		21: "b@x.io",
		22: "c@x.io",
	} {
		if _, err := svc.Ensure(ctx, id, email); err != nil {
			t.Fatalf("seed %d: %v", id, err)
		}
	}

	got, err := svc.ListAvailable(ctx, 20, []uint64{21})
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(got) != 1 || got[0].ID != 22 {
		t.Fatalf("expected only user 22, got %+v", got)
	}
}

func TestUpdateUsername_RejectsBlank(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))
	ctx := context.Background()

	if _, err := svc.Ensure(ctx, 30, "x@y.io"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if _, err := svc.UpdateUsername(ctx, 30, "  \t "); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	p, err := svc.Get(ctx, 30)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Username != "x" {
		t.Fatalf("rejected update must not mutate, got %q", p.Username)
	}
}
