package database

import (
	"context"
	"testing"
	"testing/fstest"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_000000_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY);")},
		"20260101_000000_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
		"20260102_000000_gadgets.up.sql":   {Data: []byte("CREATE TABLE gadgets (id INTEGER PRIMARY KEY);")},
		"README.md":                        {Data: []byte("ignored")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n); err != nil {
		t.Fatalf("checking table %s: %v", name, err)
	}
	return n == 1
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	src := testMigrations()

	if err := db.Migrate(ctx, src); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	for _, table := range []string{"widgets", "gadgets"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s not created", table)
		}
	}

	applied, pending, err := db.MigrationStatus(ctx, src)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("MigrationStatus() = %d applied, %d pending; want 2, 0", len(applied), len(pending))
	}

	// A second run is a no-op.
	if err := db.Migrate(ctx, src); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	src := testMigrations()
	if err := db.Migrate(ctx, src); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if err := db.MigrateDown(ctx, src); err == nil {
		t.Fatal("MigrateDown() expected error: latest migration has no down SQL")
	}

	src["20260102_000000_gadgets.down.sql"] = &fstest.MapFile{Data: []byte("DROP TABLE gadgets;")}

	if err := db.MigrateDown(ctx, src); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "gadgets") {
		t.Error("gadgets still exists after MigrateDown")
	}
	if !tableExists(t, db, "widgets") {
		t.Error("widgets dropped by MigrateDown")
	}

	_, pending, err := db.MigrationStatus(ctx, src)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Name != "gadgets" {
		t.Errorf("pending = %+v, want only gadgets", pending)
	}
}

func TestMigrateNoMigrations(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background(), nil); err != nil {
		t.Errorf("Migrate(nil) error = %v", err)
	}
	if err := db.Migrate(context.Background(), fstest.MapFS{}); err != nil {
		t.Errorf("Migrate(empty) error = %v", err)
	}
}

func TestMigrateBadSQL(t *testing.T) {
	db := openTestDB(t)
	src := fstest.MapFS{
		"20260101_000000_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"20260102_000000_broken.up.sql": {Data: []byte("CREATE TABLE (;")},
	}
	if err := db.Migrate(context.Background(), src); err == nil {
		t.Fatal("Migrate() expected error for broken SQL")
	}
	if !tableExists(t, db, "ok") {
		t.Error("earlier migrations must stay applied")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"20260118_120000_initial.up.sql", "20260118_120000", true, true},
		{"20260118_120000_initial.down.sql", "20260118_120000", false, true},
		{"20260118_120000.up.sql", "20260118_120000", true, true},
		{"20260118_120000_initial.sql", "", false, false},
		{"notes.txt", "", false, false},
		{"single.up.sql", "", false, false},
	}
	for _, tt := range tests {
		version, isUp, ok := parseMigrationFilename(tt.name)
		if version != tt.wantVersion || isUp != tt.wantUp || ok != tt.wantOK {
			t.Errorf("parseMigrationFilename(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.name, version, isUp, ok, tt.wantVersion, tt.wantUp, tt.wantOK)
		}
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := map[string]string{
		"20260118_120000_registry_values.up.sql": "registry_values",
		"20260118_120000_x.down.sql":             "x",
		"20260118_120000.up.sql":                 "20260118_120000",
	}
	for in, want := range tests {
		if got := extractMigrationName(in); got != want {
			t.Errorf("extractMigrationName(%q) = %q, want %q", in, got, want)
		}
	}
}
