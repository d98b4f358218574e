package builtins

import "testing"

func TestResolveSchema(t *testing.T) {
	tests := []struct {
		name       string
		wantSchema string
		wantFound  bool
	}{
		{"lower", PgCatalogSchema, true},
		{"count", PgCatalogSchema, true},
		{"list_length", HcCatalogSchema, true},
		{"hc_record_count", HcInternalSchema, true},
		{"my_user_function", "", false},
	}

	for _, tt := range tests {
		schema, found := ResolveSchema(tt.name)
		if found != tt.wantFound {
			t.Errorf("ResolveSchema(%q) found = %v, want %v", tt.name, found, tt.wantFound)
			continue
		}
		if schema != tt.wantSchema {
			t.Errorf("ResolveSchema(%q) = %q, want %q", tt.name, schema, tt.wantSchema)
		}
	}
}

// Names present in more than one namespace must resolve to the earliest
// namespace in the precedence order. Stored catalog text has already been
// qualified under this order, so it can never change.
func TestResolutionPrecedence(t *testing.T) {
	if !PgCatalog.Contains("version") || !HcCatalog.Contains("version") {
		t.Fatal("test requires 'version' in both pg_catalog and hc_catalog")
	}
	if schema, _ := ResolveSchema("version"); schema != PgCatalogSchema {
		t.Errorf("version resolved to %q, want %q", schema, PgCatalogSchema)
	}

	if !HcCatalog.Contains("unnest") || !HcInternal.Contains("unnest") {
		t.Fatal("test requires 'unnest' in both hc_catalog and hc_internal")
	}
	if schema, _ := ResolveSchema("unnest"); schema != HcCatalogSchema {
		t.Errorf("unnest resolved to %q, want %q", schema, HcCatalogSchema)
	}
}

func TestResolutionOrderIsFrozen(t *testing.T) {
	want := []string{PgCatalogSchema, HcCatalogSchema, HcInternalSchema}
	if len(Resolution) != len(want) {
		t.Fatalf("expected %d namespaces, got %d", len(want), len(Resolution))
	}
	for i, ns := range Resolution {
		if ns.Schema != want[i] {
			t.Errorf("namespace %d = %s, want %s", i, ns.Schema, want[i])
		}
	}
}
