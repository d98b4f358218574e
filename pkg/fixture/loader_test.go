package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/halcyondb/halcyon/pkg/catalog"
	"github.com/halcyondb/halcyon/pkg/log"
)

func newTestLoader(t *testing.T) (*Loader, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Open(context.Background(), catalog.DefaultStoreConfig())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	logCfg := log.DefaultConfig()
	logCfg.DefaultLevel = log.LevelOff
	return NewLoader(cat, log.New(logCfg)), cat
}

func writeFixture(t *testing.T, dir, name, sql string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sql), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "01_table.sql", "CREATE TABLE t (a int8)")
	writeFixture(t, dir, "02_view.sql", "CREATE VIEW v AS SELECT a FROM t")
	writeFixture(t, dir, "notes.txt", "not a fixture")

	loader, cat := newTestLoader(t)
	result, err := loader.LoadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	if result.SuccessCount != 2 || result.FailCount != 0 {
		t.Fatalf("loaded %d/%d, want 2/0", result.SuccessCount, result.FailCount)
	}

	items, err := cat.LoadItems(context.Background())
	if err != nil {
		t.Fatalf("load items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Name order maps to id order.
	if items[0].Name != "t" || items[1].Name != "v" {
		t.Errorf("unexpected item names: %s, %s", items[0].Name, items[1].Name)
	}

	env, err := catalog.DecodeEnvelope(items[0].Definition)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.CreateSQL != "CREATE TABLE t (a int8)" {
		t.Errorf("stored text = %q", env.CreateSQL)
	}
}

func TestLoadDirectoryReportsBadFixtures(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "good.sql", "CREATE TABLE t (a int8)")
	writeFixture(t, dir, "bad.sql", "this is not sql")

	loader, cat := newTestLoader(t)
	result, err := loader.LoadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	if result.SuccessCount != 1 || result.FailCount != 1 {
		t.Errorf("loaded %d/%d, want 1/1", result.SuccessCount, result.FailCount)
	}

	n, _ := cat.ItemCount(context.Background())
	if n != 1 {
		t.Errorf("expected 1 item, got %d", n)
	}
}

func TestLoadDirectoryMissing(t *testing.T) {
	loader, _ := newTestLoader(t)
	if _, err := loader.LoadDirectory(context.Background(), "/no/such/dir"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestReloadReplacesItem(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "t.sql", "CREATE TABLE t (a int8)")

	loader, cat := newTestLoader(t)
	ctx := context.Background()
	if _, err := loader.LoadDirectory(ctx, dir); err != nil {
		t.Fatalf("load: %v", err)
	}
	id, ok := loader.itemForPath(path)
	if !ok {
		t.Fatal("loader did not record the fixture path")
	}

	writeFixture(t, dir, "t.sql", "CREATE TABLE t (a int8, b text)")
	if err := loader.LoadFile(ctx, path); err != nil {
		t.Fatalf("reload: %v", err)
	}

	newID, _ := loader.itemForPath(path)
	if newID != id {
		t.Errorf("reload changed the item id: %d -> %d", id, newID)
	}

	items, _ := cat.LoadItems(ctx)
	if len(items) != 1 {
		t.Fatalf("expected 1 item after reload, got %d", len(items))
	}
	env, _ := catalog.DecodeEnvelope(items[0].Definition)
	if env.CreateSQL != "CREATE TABLE t (a int8, b text)" {
		t.Errorf("stored text = %q", env.CreateSQL)
	}
}

func TestRemoveFileDeletesItem(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "t.sql", "CREATE TABLE t (a int8)")

	loader, cat := newTestLoader(t)
	ctx := context.Background()
	if _, err := loader.LoadDirectory(ctx, dir); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := loader.RemoveFile(ctx, path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	n, _ := cat.ItemCount(ctx)
	if n != 0 {
		t.Errorf("expected 0 items after removal, got %d", n)
	}

	// Removing an unknown path is a no-op.
	if err := loader.RemoveFile(ctx, "/no/such/file.sql"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStatementNameByKind(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"CREATE TABLE s.t (a int8)", "s.t"},
		{"CREATE VIEW v AS SELECT 1", "v"},
		{"CREATE INDEX i ON t (a)", "i"},
		{"CREATE TYPE l AS LIST WITH (element_type = int4)", "l"},
		{"CREATE SOURCE src FROM FILE '/tmp/in.csv'", "src"},
		{"CREATE SINK snk FROM v INTO FILE '/tmp/out.csv'", "snk"},
	}

	dir := t.TempDir()
	loader, cat := newTestLoader(t)
	ctx := context.Background()

	for i, tt := range tests {
		path := writeFixture(t, dir, filepath.Base(tt.want)+".sql", tt.sql)
		if err := loader.LoadFile(ctx, path); err != nil {
			t.Fatalf("load %q: %v", tt.sql, err)
		}
		items, _ := cat.LoadItems(ctx)
		if items[i].Name != tt.want {
			t.Errorf("item name for %q = %q, want %q", tt.sql, items[i].Name, tt.want)
		}
	}
}
