package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/halcyondb/halcyon/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(context.Background(), StoreConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnvelopeRoundTrip(t *testing.T) {
	def := NewDefinition("CREATE TABLE t (a int8)")

	env, err := DecodeEnvelope(def)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Version != EnvelopeVersion {
		t.Errorf("version = %q, want %q", env.Version, EnvelopeVersion)
	}
	if env.CreateSQL != "CREATE TABLE t (a int8)" {
		t.Errorf("create_sql = %q", env.CreateSQL)
	}
}

func TestEnvelopePreservesEvalEnv(t *testing.T) {
	raw := []byte(`{"version":"v1","create_sql":"CREATE TABLE t (a int8)","eval_env":{"wall_time":42}}`)

	env, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	env.CreateSQL = "CREATE TABLE t (a pg_catalog.int8)"
	encoded := env.MustEncode()

	again, err := DecodeEnvelope(encoded)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if string(again.EvalEnv) != `{"wall_time":42}` {
		t.Errorf("eval_env changed: %s", again.EvalEnv)
	}
	if again.CreateSQL != "CREATE TABLE t (a pg_catalog.int8)" {
		t.Errorf("create_sql = %q", again.CreateSQL)
	}
}

func TestDecodeEnvelopeRejectsUnknownVersion(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"version":"v9","create_sql":"CREATE TABLE t (a int8)"}`))
	if err == nil {
		t.Fatal("expected version error")
	}
	if !errors.IsCode(err, errors.ErrCodeEnvelopeVersion) {
		t.Errorf("unexpected error code: %v", err)
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, err := DecodeEnvelope([]byte("not json"))
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.IsCode(err, errors.ErrCodeEnvelopeDecode) {
		t.Errorf("unexpected error code: %v", err)
	}
}

func TestStoreInsertAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	items := []Item{
		{ID: 2, Name: "v", Definition: NewDefinition("CREATE VIEW v AS SELECT 1")},
		{ID: 1, Name: "t", Definition: NewDefinition("CREATE TABLE t (a int8)")},
	}
	for _, it := range items {
		if err := store.InsertItem(ctx, it); err != nil {
			t.Fatalf("insert %s: %v", it.Name, err)
		}
	}

	loaded, err := store.LoadItems(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded))
	}
	// Snapshot order is by id.
	if loaded[0].Name != "t" || loaded[1].Name != "v" {
		t.Errorf("unexpected order: %s, %s", loaded[0].Name, loaded[1].Name)
	}

	n, err := store.ItemCount(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestTransactionCommitAppliesUpdates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	orig := NewDefinition("CREATE TABLE t (a int8)")
	if err := store.InsertItem(ctx, Item{ID: 1, Name: "t", Definition: orig}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tx, err := store.Transaction(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	updated := NewDefinition("CREATE TABLE t (a pg_catalog.int8)")
	if err := tx.UpdateItem(1, "t", updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	if tx.Staged() != 1 {
		t.Errorf("staged = %d, want 1", tx.Staged())
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	loaded, _ := store.LoadItems(ctx)
	if string(loaded[0].Definition) != string(updated) {
		t.Error("commit did not apply the staged update")
	}
}

func TestTransactionRollbackDiscardsUpdates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	orig := NewDefinition("CREATE TABLE t (a int8)")
	if err := store.InsertItem(ctx, Item{ID: 1, Name: "t", Definition: orig}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tx, err := store.Transaction(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.UpdateItem(1, "t", NewDefinition("CREATE TABLE t (a pg_catalog.int8)")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	loaded, _ := store.LoadItems(ctx)
	if string(loaded[0].Definition) != string(orig) {
		t.Error("rollback did not discard the staged update")
	}
}

func TestUpdateMissingItemFails(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx, err := store.Transaction(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	err = tx.UpdateItem(99, "ghost", NewDefinition("CREATE TABLE g (a int8)"))
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !errors.IsCode(err, errors.ErrCodeStorageNotFound) {
		t.Errorf("unexpected error code: %v", err)
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), StoreConfig{Driver: "oracle", DSN: ""})
	if err == nil {
		t.Fatal("expected driver error")
	}
	if !strings.Contains(err.Error(), "unknown storage driver") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRebindNumbered(t *testing.T) {
	got := rebindNumbered("UPDATE x SET a = ?, b = ? WHERE id = ?", "$")
	want := "UPDATE x SET a = $1, b = $2 WHERE id = $3"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}

	got = rebindNumbered("SELECT ? WHERE a = ?", "@p")
	want = "SELECT @p1 WHERE a = @p2"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
}
