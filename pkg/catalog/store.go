package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/halcyondb/halcyon/pkg/errors"
	"github.com/halcyondb/halcyon/pkg/log"
)

// Store is the durable item store backing a catalog. Items live in a single
// halcyon_items table; the schema is bootstrapped on open.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	dialect string
}

// StoreConfig selects the backend and its connection string.
type StoreConfig struct {
	// Driver is one of "sqlite", "postgres", "sqlserver".
	Driver string

	// DSN is the driver-specific connection string. For sqlite, a file path
	// or ":memory:".
	DSN string
}

// DefaultStoreConfig returns an in-memory sqlite store, the default for
// tests and local runs.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{Driver: "sqlite", DSN: ":memory:"}
}

// driverName maps a config driver to the registered database/sql driver.
func driverName(driver string) (string, error) {
	switch driver {
	case "sqlite":
		return "sqlite3", nil
	case "postgres":
		return "pgx", nil
	case "sqlserver":
		return "sqlserver", nil
	default:
		return "", errors.Newf(errors.ErrCodeStorageDriver, "unknown storage driver: %s", driver).Err()
	}
}

// OpenStore opens the configured backend, verifies the connection, and
// bootstraps the item table.
func OpenStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	name, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if cfg.Driver == "sqlite" {
		if dsn == "" {
			dsn = ":memory:"
		}
		dsn += "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=ON"
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStorageConnect, "failed to open %s store", cfg.Driver).Err()
	}

	if cfg.Driver == "sqlite" {
		// Single writer; also keeps :memory: databases on one connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, errors.ErrCodeStorageConnect, "failed to ping %s store", cfg.Driver).Err()
	}

	s := &Store{db: db, dialect: cfg.Driver}
	if err := s.bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug(log.CategoryStorage, "store opened", "driver", cfg.Driver)
	return s, nil
}

// bootstrap creates the item table if it does not exist.
func (s *Store) bootstrap(ctx context.Context) error {
	var ddl string
	switch s.dialect {
	case "postgres":
		ddl = `CREATE TABLE IF NOT EXISTS halcyon_items (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			definition BYTEA NOT NULL
		)`
	case "sqlserver":
		ddl = `IF OBJECT_ID('halcyon_items', 'U') IS NULL
		CREATE TABLE halcyon_items (
			id BIGINT PRIMARY KEY,
			name NVARCHAR(512) NOT NULL,
			definition VARBINARY(MAX) NOT NULL
		)`
	default:
		ddl = `CREATE TABLE IF NOT EXISTS halcyon_items (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			definition BLOB NOT NULL
		)`
	}

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageExec, "failed to bootstrap item table").Err()
	}
	return nil
}

// rebind rewrites ?-style placeholders into the dialect's form.
func (s *Store) rebind(query string) string {
	switch s.dialect {
	case "postgres":
		return rebindNumbered(query, "$")
	case "sqlserver":
		return rebindNumbered(query, "@p")
	default:
		return query
	}
}

func rebindNumbered(query, prefix string) string {
	var out strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out.WriteString(prefix)
			out.WriteString(fmt.Sprintf("%d", n))
			continue
		}
		out.WriteByte(query[i])
	}
	return out.String()
}

// LoadItems returns a consistent snapshot of every persisted item, ordered
// by id.
func (s *Store) LoadItems(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT id, name, definition FROM halcyon_items ORDER BY id"))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageQuery, "failed to load items").Err()
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Definition); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStorageQuery, "failed to scan item").Err()
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageQuery, "failed to load items").Err()
	}
	return items, nil
}

// InsertItem persists a new item outside any migration transaction. Used by
// fixture seeding; migrations never create items.
func (s *Store) InsertItem(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO halcyon_items (id, name, definition) VALUES (?, ?, ?)"),
		item.ID, item.Name, item.Definition)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageExec, "failed to insert item %s", item.Name).Err()
	}
	return nil
}

// DeleteItem removes an item by id. Used by fixture reloads, never by
// migrations.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		s.rebind("DELETE FROM halcyon_items WHERE id = ?"), id)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageExec, "failed to delete item %d", id).Err()
	}
	return nil
}

// ItemCount returns the number of persisted items.
func (s *Store) ItemCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT COUNT(*) FROM halcyon_items")).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStorageQuery, "failed to count items").Err()
	}
	return n, nil
}

// Transaction begins a unit of atomic work. Staged updates become visible
// only after Commit.
func (s *Store) Transaction(ctx context.Context) (*Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageTxn, "failed to begin transaction").Err()
	}
	return &Transaction{store: s, tx: tx, ctx: ctx}, nil
}

// Dialect returns the configured backend name.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Transaction stages item updates and applies them all-or-nothing.
type Transaction struct {
	store  *Store
	tx     *sql.Tx
	ctx    context.Context
	staged int
	done   bool
}

// UpdateItem stages a replacement of one item's serialized definition. No
// effect until Commit.
func (t *Transaction) UpdateItem(id int64, name string, definition []byte) error {
	res, err := t.tx.ExecContext(t.ctx,
		t.store.rebind("UPDATE halcyon_items SET name = ?, definition = ? WHERE id = ?"),
		name, definition, id)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageExec, "failed to update item %s", name).Err()
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageExec, "failed to read rows affected").Err()
	}
	if affected == 0 {
		return errors.Newf(errors.ErrCodeStorageNotFound, "item %d (%s) not found", id, name).Err()
	}
	t.staged++
	return nil
}

// Staged returns the number of updates staged so far.
func (t *Transaction) Staged() int {
	return t.staged
}

// Commit atomically applies all staged updates.
func (t *Transaction) Commit() error {
	if t.done {
		return errors.New(errors.ErrCodeStorageTxn, "transaction already finished").Err()
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageTxn, "commit failed").Err()
	}
	return nil
}

// Rollback discards all staged updates. Safe to call after Commit.
func (t *Transaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageTxn, "rollback failed").Err()
	}
	return nil
}
