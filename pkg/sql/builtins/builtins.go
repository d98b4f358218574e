// Package builtins holds the name tables of halcyon's built-in functions.
//
// Built-ins live in three fixed schemas, checked in precedence order:
// pg_catalog first, then hc_catalog, then hc_internal. The order is frozen:
// stored catalog text has already been qualified against it, so reordering
// would silently re-interpret migrated definitions.
package builtins

// Schema names of the built-in namespaces.
const (
	PgCatalogSchema  = "pg_catalog"
	HcCatalogSchema  = "hc_catalog"
	HcInternalSchema = "hc_internal"
)

// Namespace is one read-only table of built-in function names.
type Namespace struct {
	Schema string
	names  map[string]struct{}
}

// Contains reports whether name is a built-in of this namespace.
func (n *Namespace) Contains(name string) bool {
	_, ok := n.names[name]
	return ok
}

func newNamespace(schema string, names ...string) *Namespace {
	m := make(map[string]struct{}, len(names))
	for _, name := range names {
		m[name] = struct{}{}
	}
	return &Namespace{Schema: schema, names: m}
}

// PgCatalog is the primary, pg-compatible namespace.
var PgCatalog = newNamespace(PgCatalogSchema,
	"abs",
	"ascii",
	"avg",
	"btrim",
	"ceil",
	"char_length",
	"coalesce",
	"concat",
	"count",
	"current_timestamp",
	"date_trunc",
	"floor",
	"generate_series",
	"jsonb_array_elements",
	"jsonb_each",
	"length",
	"lower",
	"lpad",
	"ltrim",
	"max",
	"min",
	"mod",
	"now",
	"nullif",
	"replace",
	"round",
	"rtrim",
	"split_part",
	"sqrt",
	"substr",
	"sum",
	"to_char",
	"to_timestamp",
	"upper",
	"version",
)

// HcCatalog holds halcyon's own documented built-ins.
var HcCatalog = newNamespace(HcCatalogSchema,
	"csv_extract",
	"list_append",
	"list_cat",
	"list_length",
	"list_ndims",
	"list_prepend",
	"hc_logical_timestamp",
	"regexp_extract",
	"repeat_row",
	"unnest",
	"version", // also in pg_catalog; precedence resolves to pg_catalog
)

// HcInternal holds undocumented built-ins used by introspection views.
var HcInternal = newNamespace(HcInternalSchema,
	"hc_all_frontiers",
	"hc_dataflow_channels",
	"hc_dataflow_operators",
	"hc_record_count",
	"hc_scheduling_histogram",
	"unnest", // also in hc_catalog; precedence resolves to hc_catalog
)

// Resolution is the frozen precedence order consulted by name qualification.
var Resolution = []*Namespace{PgCatalog, HcCatalog, HcInternal}

// ResolveSchema returns the schema of the first namespace in precedence order
// that recognizes name, and whether any namespace did.
func ResolveSchema(name string) (string, bool) {
	for _, ns := range Resolution {
		if ns.Contains(name) {
			return ns.Schema, true
		}
	}
	return "", false
}
