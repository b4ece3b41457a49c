package idgen_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-dcgeneral/pkg/data/idgen"
)

func TestUUID_GeneratesCanonicalIDs(t *testing.T) {
	gen := idgen.UUID{}
	first, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	if len(first) != gen.Size() {
		t.Fatalf("expected id length %d, got %d", gen.Size(), len(first))
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected parseable uuid: %v", err)
	}
}

func TestDatabase_UsesSQLiteUUIDFunction(t *testing.T) {
	if err := idgen.RegisterSQLiteUUID(); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := idgen.RegisterSQLiteUUID(); err != nil {
		t.Fatalf("second register should be a no-op: %v", err)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	gen := idgen.NewDatabase(db, "")
	id, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid from database, got %q: %v", id, err)
	}
}

func TestAutoIncrement_DefersToStorage(t *testing.T) {
	id, err := idgen.AutoIncrement{}.Generate(context.Background())
	if err != nil || id != "" {
		t.Fatalf("expected empty id, got %q (%v)", id, err)
	}
}
