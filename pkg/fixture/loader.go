// Package fixture seeds a catalog from .sql files on disk.
//
// A fixture directory is flat: each .sql file holds exactly one CREATE
// statement and becomes one catalog item, wrapped in a fresh definition
// envelope. Fixtures exist for development and testing; a production
// catalog is populated by DDL, not from disk.
package fixture

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/halcyondb/halcyon/pkg/catalog"
	hcerrors "github.com/halcyondb/halcyon/pkg/errors"
	"github.com/halcyondb/halcyon/pkg/log"
	"github.com/halcyondb/halcyon/pkg/sql/ast"
	"github.com/halcyondb/halcyon/pkg/sql/parser"
)

// Loader loads fixture files into a catalog and remembers which item each
// file produced so a watcher can replace them on change.
type Loader struct {
	mu     sync.Mutex
	cat    *catalog.Catalog
	logger *log.Logger

	byPath map[string]int64
	nextID int64
}

// LoadResult holds the outcome of loading a fixture directory.
type LoadResult struct {
	Loaded       []string
	Errors       []LoadError
	SuccessCount int
	FailCount    int
}

// LoadError records a loading error with context.
type LoadError struct {
	Path    string
	Error   error
	Message string
}

// NewLoader creates a fixture loader for the given catalog.
func NewLoader(cat *catalog.Catalog, logger *log.Logger) *Loader {
	return &Loader{
		cat:    cat,
		logger: logger,
		byPath: make(map[string]int64),
		nextID: 1,
	}
}

// LoadDirectory loads every .sql file in dir, in name order, into the
// catalog. Files that fail to parse are reported in the result and skipped;
// the directory itself being unreadable is an error.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, hcerrors.Wrap(err, hcerrors.ErrCodeConfigInvalid,
			"fixture directory not found").
			WithOp("Loader.LoadDirectory").
			WithField("path", dir).
			Err()
	}
	if !info.IsDir() {
		return nil, hcerrors.Newf(hcerrors.ErrCodeConfigInvalid,
			"not a directory: %s", dir).
			WithOp("Loader.LoadDirectory").
			Err()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, hcerrors.Wrap(err, hcerrors.ErrCodeConfigInvalid,
			"failed to read fixture directory").
			WithOp("Loader.LoadDirectory").
			WithField("path", dir).
			Err()
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(strings.ToLower(name), ".sql") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Continue numbering after whatever the catalog already holds.
	if items, err := l.cat.LoadItems(ctx); err == nil {
		for _, it := range items {
			if it.ID >= l.nextID {
				l.nextID = it.ID + 1
			}
		}
	}

	result := &LoadResult{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := l.LoadFile(ctx, path); err != nil {
			result.Errors = append(result.Errors, LoadError{
				Path:    path,
				Error:   err,
				Message: "failed to load fixture",
			})
			result.FailCount++
			continue
		}
		result.Loaded = append(result.Loaded, path)
		result.SuccessCount++
	}

	l.logger.Application().Info("fixture load complete",
		"dir", dir,
		"loaded", result.SuccessCount,
		"errors", result.FailCount,
	)

	return result, nil
}

// LoadFile loads one fixture file. If the file was loaded before, its item
// is replaced; otherwise a new item is created.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return hcerrors.Wrap(err, hcerrors.ErrCodeConfigInvalid,
			"failed to read fixture file").
			WithOp("Loader.LoadFile").
			WithField("path", path).
			Err()
	}

	stmt, err := parser.ParseOne(strings.TrimSpace(string(source)))
	if err != nil {
		return hcerrors.Wrap(err, hcerrors.ErrCodeFixtureParseError,
			"failed to parse fixture").
			WithOp("Loader.LoadFile").
			WithField("path", path).
			Err()
	}

	name, err := statementName(stmt)
	if err != nil {
		return hcerrors.Wrap(err, hcerrors.ErrCodeFixtureParseError,
			"fixture is not a CREATE statement").
			WithOp("Loader.LoadFile").
			WithField("path", path).
			Err()
	}

	definition := catalog.NewDefinition(stmt.String())

	l.mu.Lock()
	id, known := l.byPath[path]
	if !known {
		id = l.nextID
		l.nextID++
	}
	l.mu.Unlock()

	if known {
		if err := l.cat.DeleteItem(ctx, id); err != nil {
			return err
		}
	}
	if err := l.cat.InsertItem(ctx, catalog.Item{ID: id, Name: name, Definition: definition}); err != nil {
		return err
	}

	l.mu.Lock()
	l.byPath[path] = id
	l.mu.Unlock()

	l.logger.Application().Debug("fixture loaded",
		"path", path,
		"item", name,
		"id", id,
	)
	return nil
}

// RemoveFile deletes the item a fixture file produced, if any.
func (l *Loader) RemoveFile(ctx context.Context, path string) error {
	l.mu.Lock()
	id, ok := l.byPath[path]
	if ok {
		delete(l.byPath, path)
	}
	l.mu.Unlock()

	if !ok {
		return nil
	}
	if err := l.cat.DeleteItem(ctx, id); err != nil {
		return err
	}

	l.logger.Application().Info("fixture removed", "path", path, "id", id)
	return nil
}

// itemForPath returns the item id a path produced, for tests.
func (l *Loader) itemForPath(path string) (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.byPath[path]
	return id, ok
}

// statementName extracts the object name a CREATE statement defines.
func statementName(stmt ast.Statement) (string, error) {
	switch s := stmt.(type) {
	case *ast.CreateTableStatement:
		return s.Name.String(), nil
	case *ast.CreateViewStatement:
		return s.Name.String(), nil
	case *ast.CreateIndexStatement:
		return s.Name.Value, nil
	case *ast.CreateTypeStatement:
		return s.Name.String(), nil
	case *ast.CreateSourceStatement:
		return s.Name.String(), nil
	case *ast.CreateSinkStatement:
		return s.Name.String(), nil
	default:
		return "", hcerrors.Newf(hcerrors.ErrCodeItemInvalid,
			"unsupported statement: %s", stmt.TokenLiteral()).Err()
	}
}
