package migrate

import (
	"context"
	"strings"
	"testing"

	"github.com/halcyondb/halcyon/pkg/catalog"
	"github.com/halcyondb/halcyon/pkg/errors"
)

func newTestCatalog(t *testing.T, sqls ...string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Open(context.Background(), catalog.DefaultStoreConfig())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	for i, sql := range sqls {
		item := catalog.Item{
			ID:         int64(i + 1),
			Name:       "item",
			Definition: catalog.NewDefinition(sql),
		}
		if err := cat.InsertItem(context.Background(), item); err != nil {
			t.Fatalf("insert item %d: %v", i+1, err)
		}
	}
	return cat
}

func storedSQL(t *testing.T, cat *catalog.Catalog, id int64) string {
	t.Helper()
	items, err := cat.LoadItems(context.Background())
	if err != nil {
		t.Fatalf("load items: %v", err)
	}
	for _, it := range items {
		if it.ID != id {
			continue
		}
		env, err := catalog.DecodeEnvelope(it.Definition)
		if err != nil {
			t.Fatalf("decode item %d: %v", id, err)
		}
		return env.CreateSQL
	}
	t.Fatalf("item %d not found", id)
	return ""
}

func storedBytes(t *testing.T, cat *catalog.Catalog, id int64) string {
	t.Helper()
	items, err := cat.LoadItems(context.Background())
	if err != nil {
		t.Fatalf("load items: %v", err)
	}
	for _, it := range items {
		if it.ID == id {
			return string(it.Definition)
		}
	}
	t.Fatalf("item %d not found", id)
	return ""
}

func TestQualifyTypeReferences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"table column types",
			"CREATE TABLE t (a int8, b text NOT NULL)",
			"CREATE TABLE t (a pg_catalog.int8, b pg_catalog.text NOT NULL)",
		},
		{
			"already qualified left untouched",
			"CREATE TABLE t (a pg_catalog.int8, b other_schema.mytype)",
			"CREATE TABLE t (a pg_catalog.int8, b other_schema.mytype)",
		},
		{
			"list element types",
			"CREATE TABLE t (a int4 list list)",
			"CREATE TABLE t (a pg_catalog.int4 list list)",
		},
		{
			"column default casts",
			"CREATE TABLE t (a int8 DEFAULT CAST(0 AS int8))",
			"CREATE TABLE t (a pg_catalog.int8 DEFAULT CAST(0 AS pg_catalog.int8))",
		},
		{
			"casts anywhere in a view query",
			"CREATE VIEW v AS SELECT CAST(a AS int8) FROM t WHERE (CAST(b AS numeric(38, 0)) > 1)",
			"CREATE VIEW v AS SELECT CAST(a AS pg_catalog.int8) FROM t WHERE (CAST(b AS pg_catalog.numeric(38, 0)) > 1)",
		},
		{
			"index key expressions and options",
			"CREATE INDEX i ON t (CAST(a AS int8)) WITH (element_type = int4)",
			"CREATE INDEX i ON t (CAST(a AS pg_catalog.int8)) WITH (element_type = pg_catalog.int4)",
		},
		{
			"type definition options",
			"CREATE TYPE int4_list AS LIST WITH (element_type = int4)",
			"CREATE TYPE int4_list AS LIST WITH (element_type = pg_catalog.int4)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newTestCatalog(t, tt.input)
			if err := qualifyTypeReferences061(context.Background(), cat); err != nil {
				t.Fatalf("migration failed: %v", err)
			}
			if got := storedSQL(t, cat, 1); got != tt.want {
				t.Errorf("stored text:\n got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestQualifyFunctionReferences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"bare builtin in a view",
			"CREATE VIEW v AS SELECT lower(a) FROM t",
			"CREATE VIEW v AS SELECT pg_catalog.lower(a) FROM t",
		},
		{
			"table-valued function factor",
			"CREATE VIEW v AS SELECT * FROM generate_series(1, 10) AS g",
			"CREATE VIEW v AS SELECT * FROM pg_catalog.generate_series(1, 10) AS g",
		},
		{
			"user-defined names left alone",
			"CREATE VIEW v AS SELECT my_udf(a) FROM t",
			"CREATE VIEW v AS SELECT my_udf(a) FROM t",
		},
		{
			"already qualified left untouched",
			"CREATE VIEW v AS SELECT hc_catalog.list_length(a) FROM t",
			"CREATE VIEW v AS SELECT hc_catalog.list_length(a) FROM t",
		},
		{
			"index key expressions",
			"CREATE INDEX i ON t (lower(a))",
			"CREATE INDEX i ON t (pg_catalog.lower(a))",
		},
		{
			"nested calls",
			"CREATE VIEW v AS SELECT lower(btrim(a)) FROM t",
			"CREATE VIEW v AS SELECT pg_catalog.lower(pg_catalog.btrim(a)) FROM t",
		},
		{
			"calls inside CASE arms",
			"CREATE VIEW v AS SELECT CASE WHEN (a > 1) THEN lower(b) ELSE btrim(c) END FROM t",
			"CREATE VIEW v AS SELECT CASE WHEN (a > 1) THEN pg_catalog.lower(b) ELSE pg_catalog.btrim(c) END FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newTestCatalog(t, tt.input)
			if err := qualifyFunctionReferences061(context.Background(), cat); err != nil {
				t.Fatalf("migration failed: %v", err)
			}
			if got := storedSQL(t, cat, 1); got != tt.want {
				t.Errorf("stored text:\n got %q\nwant %q", got, tt.want)
			}
		})
	}
}

// A name present in more than one built-in namespace must always take the
// schema of the earliest namespace in the precedence order.
func TestFunctionNamespacePrecedence(t *testing.T) {
	cat := newTestCatalog(t,
		"CREATE VIEW v AS SELECT version(), unnest(x) FROM t")
	if err := qualifyFunctionReferences061(context.Background(), cat); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	got := storedSQL(t, cat, 1)
	if !strings.Contains(got, "pg_catalog.version()") {
		t.Errorf("version not qualified to pg_catalog: %q", got)
	}
	if !strings.Contains(got, "hc_catalog.unnest(x)") {
		t.Errorf("unnest not qualified to hc_catalog: %q", got)
	}
}

// Statement kinds a policy skips must come through byte-identical, down to
// the original (non-canonical) spelling of the stored text.
func TestSkippedKindsStayByteIdentical(t *testing.T) {
	sources := []string{
		"create source s from file '/tmp/in.csv' format csv",
		"CREATE SINK snk FROM v INTO KAFKA BROKER 'localhost:9092' TOPIC 'out'",
	}
	cat := newTestCatalog(t, sources...)

	before := []string{storedBytes(t, cat, 1), storedBytes(t, cat, 2)}

	if err := qualifyTypeReferences061(context.Background(), cat); err != nil {
		t.Fatalf("type migration failed: %v", err)
	}
	if err := qualifyFunctionReferences061(context.Background(), cat); err != nil {
		t.Fatalf("function migration failed: %v", err)
	}

	for i := range sources {
		after := storedBytes(t, cat, int64(i+1))
		if after != before[i] {
			t.Errorf("item %d changed:\nbefore %q\n after %q", i+1, before[i], after)
		}
	}
}

// Function qualification skips tables entirely, so even a table whose
// default expression names a builtin stays byte-identical under it.
func TestFunctionPolicySkipsTables(t *testing.T) {
	cat := newTestCatalog(t, "CREATE TABLE t (a text DEFAULT lower('X'))")
	before := storedBytes(t, cat, 1)

	if err := qualifyFunctionReferences061(context.Background(), cat); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	if after := storedBytes(t, cat, 1); after != before {
		t.Errorf("table changed under function qualification:\nbefore %q\n after %q", before, after)
	}
}

// Applying a migration twice must be a no-op the second time: only bare
// single-segment names are eligible, and the first pass leaves none.
func TestMigrationsAreIdempotent(t *testing.T) {
	cat := newTestCatalog(t,
		"CREATE TABLE t (a int8)",
		"CREATE VIEW v AS SELECT lower(a), CAST(b AS int4) FROM t",
		"CREATE INDEX i ON t (btrim(a)) WITH (element_type = int4)",
	)
	ctx := context.Background()

	if err := Run(ctx, cat); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := []string{storedSQL(t, cat, 1), storedSQL(t, cat, 2), storedSQL(t, cat, 3)}

	if err := Run(ctx, cat); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	for i := range first {
		if got := storedSQL(t, cat, int64(i+1)); got != first[i] {
			t.Errorf("item %d diverged on re-run:\nfirst  %q\nsecond %q", i+1, first[i], got)
		}
	}
}

// An item whose statement kind is outside the dispatch table fails the
// whole step, and nothing at all is committed, including updates already
// staged for valid items.
func TestUnexpectedStatementAbortsStep(t *testing.T) {
	cat := newTestCatalog(t,
		"CREATE TABLE t (a int8)",
		"SELECT 1",
	)
	before := storedBytes(t, cat, 1)

	err := qualifyTypeReferences061(context.Background(), cat)
	if err == nil {
		t.Fatal("expected migration to fail")
	}
	if !errors.IsCode(err, errors.ErrCodeUnexpectedStmt) {
		t.Errorf("unexpected error code: %v", err)
	}
	if !strings.Contains(err.Error(), "SELECT 1") {
		t.Errorf("error should name the rendered statement: %v", err)
	}

	if after := storedBytes(t, cat, 1); after != before {
		t.Error("valid item was committed despite the step failing")
	}
}

// An unparseable stored definition is unrecoverable: the step fails and
// zero updates land, even for items processed before the bad one.
func TestUnparseableItemAbortsStep(t *testing.T) {
	cat := newTestCatalog(t,
		"CREATE TABLE t (a int8)",
		"CREATE GIBBERISH !!!",
	)
	before := storedBytes(t, cat, 1)

	err := qualifyTypeReferences061(context.Background(), cat)
	if err == nil {
		t.Fatal("expected migration to fail")
	}
	if !errors.IsCode(err, errors.ErrCodeParseFailed) {
		t.Errorf("unexpected error code: %v", err)
	}

	if after := storedBytes(t, cat, 1); after != before {
		t.Error("valid item was committed despite the step failing")
	}
}

func TestUnreadableEnvelopeAbortsStep(t *testing.T) {
	cat := newTestCatalog(t, "CREATE TABLE t (a int8)")
	if err := cat.InsertItem(context.Background(), catalog.Item{
		ID: 2, Name: "bad", Definition: []byte("not an envelope"),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	before := storedBytes(t, cat, 1)

	err := qualifyTypeReferences061(context.Background(), cat)
	if err == nil {
		t.Fatal("expected migration to fail")
	}
	if after := storedBytes(t, cat, 1); after != before {
		t.Error("valid item was committed despite the step failing")
	}
}

// Run applies the whole registry in order.
func TestRunAppliesAllMigrations(t *testing.T) {
	cat := newTestCatalog(t,
		"CREATE VIEW v AS SELECT lower(CAST(a AS text)) FROM t",
	)
	if err := Run(context.Background(), cat); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := "CREATE VIEW v AS SELECT pg_catalog.lower(CAST(a AS pg_catalog.text)) FROM t"
	if got := storedSQL(t, cat, 1); got != want {
		t.Errorf("stored text:\n got %q\nwant %q", got, want)
	}
}

func TestRunFailureMentionsStep(t *testing.T) {
	cat := newTestCatalog(t, "SELECT 1")
	err := Run(context.Background(), cat)
	if err == nil {
		t.Fatal("expected run to fail")
	}
	if !strings.Contains(err.Error(), "content migration 0 failed") {
		t.Errorf("error should name the failing step: %v", err)
	}
}

// Shipped migrations must never change behavior. These pairs pin each
// registered migration's transformation against fixed inputs; if one of
// these starts failing, a shipped entry was edited instead of superseded.
func TestRegisteredMigrationsArePinned(t *testing.T) {
	pinned := []struct {
		step  int
		input string
		want  string
	}{
		{0, "CREATE TABLE t (a int8)", "CREATE TABLE t (a pg_catalog.int8)"},
		{0, "CREATE TYPE l AS LIST WITH (element_type = int4)", "CREATE TYPE l AS LIST WITH (element_type = pg_catalog.int4)"},
		{1, "CREATE VIEW v AS SELECT lower(a) FROM t", "CREATE VIEW v AS SELECT pg_catalog.lower(a) FROM t"},
		{1, "CREATE VIEW v AS SELECT version() FROM t", "CREATE VIEW v AS SELECT pg_catalog.version() FROM t"},
		{1, "CREATE VIEW v AS SELECT unnest(x) FROM t", "CREATE VIEW v AS SELECT hc_catalog.unnest(x) FROM t"},
	}

	if len(ContentMigrations) != 2 {
		t.Fatalf("registry has %d migrations; update the pinned pairs when appending", len(ContentMigrations))
	}

	for _, p := range pinned {
		cat := newTestCatalog(t, p.input)
		if err := ContentMigrations[p.step](context.Background(), cat); err != nil {
			t.Fatalf("step %d on %q: %v", p.step, p.input, err)
		}
		if got := storedSQL(t, cat, 1); got != p.want {
			t.Errorf("step %d on %q:\n got %q\nwant %q", p.step, p.input, got, p.want)
		}
	}
}
