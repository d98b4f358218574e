// Package migrate upgrades persisted catalog definitions between releases.
//
// Catalog items are stored as the SQL text of their CREATE statement and
// reloaded by re-parsing that text on every start. When a release changes
// how names are resolved, previously stored text would reload under the
// wrong rules; a content migration rewrites the stored text once, at
// startup, before any item is resolved against the others.
package migrate

import (
	"context"
	"strings"

	"github.com/halcyondb/halcyon/pkg/catalog"
	"github.com/halcyondb/halcyon/pkg/errors"
	"github.com/halcyondb/halcyon/pkg/log"
	"github.com/halcyondb/halcyon/pkg/sql/ast"
	"github.com/halcyondb/halcyon/pkg/sql/builtins"
	"github.com/halcyondb/halcyon/pkg/sql/parser"
)

// Migration is one atomic rewrite pass over all persisted catalog items.
type Migration func(ctx context.Context, cat *catalog.Catalog) error

// ContentMigrations is the ordered registry of content migrations. Run
// executes them in registration order, exactly once per catalog, before the
// catalog serves anything else.
var ContentMigrations = []Migration{
	qualifyTypeReferences061,
	qualifyFunctionReferences061,
	// Add new migrations to the end of the list. Migrations run in order
	// against catalogs written by every prior release, so a shipped entry
	// must never be edited or removed; supersede it by appending a new one.
}

// Run applies every registered migration in order. Any failure aborts the
// run: the process must not serve a partially migrated catalog.
func Run(ctx context.Context, cat *catalog.Catalog) error {
	logger := log.Default().Migration()
	for i, step := range ContentMigrations {
		if err := step(ctx, cat); err != nil {
			return errors.Wrapf(err, errors.ErrCodeMigrationFailed, "content migration %d failed", i).
				WithOp("Migration.Run").Err()
		}
		logger.Debug("content migration applied", "step", i)
	}
	logger.Info("content migrations complete", "steps", len(ContentMigrations))
	return nil
}

// qualifyTypeReferences061 rewrites every bare type name inside eligible
// statements to carry the default pg_catalog schema. Once type names resolve
// strictly by schema membership, stored bare names would become ambiguous;
// editing the stored text is the only safe fix because the catalog is still
// empty of resolvable dependencies at this point.
func qualifyTypeReferences061(ctx context.Context, cat *catalog.Catalog) error {
	q := typeQualifier{}
	return rewriteItems(ctx, cat, func(stmt ast.Statement) (bool, error) {
		switch s := stmt.(type) {
		case *ast.CreateTableStatement:
			for _, col := range s.Columns {
				ast.WalkColumnDef(q, col)
			}
		case *ast.CreateViewStatement:
			// Types can appear in casts anywhere in the query body.
			ast.WalkQuery(q, s.Query)
		case *ast.CreateIndexStatement:
			for _, k := range s.KeyParts {
				ast.WalkExpr(q, k)
			}
			for _, o := range s.WithOptions {
				ast.WalkOption(q, o)
			}
		case *ast.CreateTypeStatement:
			// A type definition references other types through its options,
			// e.g. the element type of a list.
			for _, o := range s.WithOptions {
				ast.WalkOption(q, o)
			}
		case *ast.CreateSourceStatement, *ast.CreateSinkStatement:
			// These kinds cannot reference types in their persisted text.
			return false, nil
		default:
			return false, unexpectedStatement(stmt)
		}
		return true, nil
	})
}

// qualifyFunctionReferences061 rewrites every bare built-in function and
// table-function name to carry the schema of the first built-in namespace
// that recognizes it. Names no namespace recognizes are presumed
// user-defined and left alone.
func qualifyFunctionReferences061(ctx context.Context, cat *catalog.Catalog) error {
	q := funcQualifier{}
	return rewriteItems(ctx, cat, func(stmt ast.Statement) (bool, error) {
		switch s := stmt.(type) {
		case *ast.CreateViewStatement:
			ast.WalkQuery(q, s.Query)
		case *ast.CreateIndexStatement:
			// Key expressions only; index options cannot reference functions.
			for _, k := range s.KeyParts {
				ast.WalkExpr(q, k)
			}
		case *ast.CreateTableStatement, *ast.CreateTypeStatement,
			*ast.CreateSourceStatement, *ast.CreateSinkStatement:
			// These kinds cannot reference functions in their persisted text.
			return false, nil
		default:
			return false, unexpectedStatement(stmt)
		}
		return true, nil
	})
}

// typeQualifier prepends the default schema to bare type names. Names with
// more than one segment are already qualified and left untouched, which is
// what makes re-application a no-op.
type typeQualifier struct {
	ast.NopMutator
}

func (typeQualifier) MutateDataType(dt ast.DataType) {
	nt, ok := dt.(*ast.NamedType)
	if !ok {
		return
	}
	if len(nt.Name.Parts) != 1 {
		return
	}
	nt.Name.Parts = append(
		[]*ast.Identifier{{Value: builtins.PgCatalogSchema}}, nt.Name.Parts...)
}

// funcQualifier qualifies bare function-call and table-function names
// against the built-in namespaces in their frozen precedence order.
type funcQualifier struct {
	ast.NopMutator
}

func (funcQualifier) MutateFunction(fn *ast.FunctionCall) {
	qualifyBuiltinName(fn.Name)
}

func (funcQualifier) MutateTableFactor(tf ast.TableFactor) {
	if fn, ok := tf.(*ast.TableFunction); ok {
		qualifyBuiltinName(fn.Name)
	}
}

func qualifyBuiltinName(name *ast.ObjectName) {
	if len(name.Parts) != 1 {
		return
	}
	schema, ok := builtins.ResolveSchema(strings.ToLower(name.Parts[0].Value))
	if !ok {
		return
	}
	name.Parts = append([]*ast.Identifier{{Value: schema}}, name.Parts...)
}

// unexpectedStatement reports a statement kind the rewrite was not written
// for. The catalog must not contain such items; one turning up means a
// newer release wrote it or the store is corrupt, and the error carries the
// rendered statement so the offender can be found.
func unexpectedStatement(stmt ast.Statement) error {
	return errors.Newf(errors.ErrCodeUnexpectedStmt,
		"catalog item contained unexpected statement: %s", stmt.String()).Err()
}

// rewriteItems drives one migration: load every item, parse its stored
// text, apply the rewrite, and commit every updated definition in a single
// transaction. Any failure leaves the store untouched.
//
// A rewrite returning false means the statement kind is out of scope for
// this migration; no update is staged and the stored bytes stay identical.
func rewriteItems(ctx context.Context, cat *catalog.Catalog, rewrite func(ast.Statement) (bool, error)) error {
	items, err := cat.LoadItems(ctx)
	if err != nil {
		return err
	}

	tx, err := cat.Transaction(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		env, err := catalog.DecodeEnvelope(item.Definition)
		if err != nil {
			return errors.Wrapf(err, errors.ErrCodeMigrationAborted,
				"item %s has an unreadable definition", item.Name).Err()
		}

		stmt, err := parser.ParseOne(env.CreateSQL)
		if err != nil {
			return errors.Wrapf(err, errors.ErrCodeParseFailed,
				"item %s has unparseable stored text", item.Name).Err()
		}

		update, err := rewrite(stmt)
		if err != nil {
			return err
		}
		if !update {
			continue
		}

		env.CreateSQL = stmt.String()
		if err := tx.UpdateItem(item.ID, item.Name, env.MustEncode()); err != nil {
			return err
		}
	}

	return tx.Commit()
}
