// Package catalog is halcyon's registry of named objects. Each object is
// persisted as its original CREATE statement text inside a small versioned
// envelope; the catalog is rebuilt by re-parsing that text on every start.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/halcyondb/halcyon/pkg/errors"
)

// Item is one persisted catalog object. Identity is the ID; Name is carried
// for diagnostics and commit bookkeeping.
type Item struct {
	ID         int64
	Name       string
	Definition []byte
}

// EnvelopeVersion is the only serialization version in use.
const EnvelopeVersion = "v1"

// Envelope is the versioned wrapper around an object's SQL text. EvalEnv is
// opaque evaluation-environment metadata owned by other components; rewrites
// must carry it through byte for byte.
type Envelope struct {
	Version   string          `json:"version"`
	CreateSQL string          `json:"create_sql"`
	EvalEnv   json.RawMessage `json:"eval_env,omitempty"`
}

// DecodeEnvelope parses a persisted definition. Unknown versions are
// rejected: an envelope written by a newer release cannot be migrated by
// this one.
func DecodeEnvelope(definition []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(definition, &e); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEnvelopeDecode, "failed to decode item envelope").Err()
	}
	if e.Version != EnvelopeVersion {
		return nil, errors.Newf(errors.ErrCodeEnvelopeVersion, "unsupported envelope version %q", e.Version).Err()
	}
	return &e, nil
}

// MustEncode serializes the envelope. Encoding is a total function over the
// catalog's own representation, so failure is an internal invariant
// violation, not a recoverable error.
func (e *Envelope) MustEncode() []byte {
	e.Version = EnvelopeVersion
	data, err := json.Marshal(e)
	if err != nil {
		panic(fmt.Sprintf("catalog: envelope encoding failed: %v", err))
	}
	return data
}

// NewDefinition builds a fresh V1 definition around SQL text.
func NewDefinition(createSQL string) []byte {
	e := &Envelope{Version: EnvelopeVersion, CreateSQL: createSQL}
	return e.MustEncode()
}

// Catalog owns the durable item store. During startup it is driven
// single-threaded: content migrations run to completion before anything
// else touches the items.
type Catalog struct {
	store *Store
}

// New wraps an open store.
func New(store *Store) *Catalog {
	return &Catalog{store: store}
}

// Open opens a store and wraps it.
func Open(ctx context.Context, cfg StoreConfig) (*Catalog, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(store), nil
}

// LoadItems returns a full snapshot of all persisted items.
func (c *Catalog) LoadItems(ctx context.Context) ([]Item, error) {
	return c.store.LoadItems(ctx)
}

// Transaction begins a unit of atomic work against the item store.
func (c *Catalog) Transaction(ctx context.Context) (*Transaction, error) {
	return c.store.Transaction(ctx)
}

// InsertItem persists a new item. Fixture seeding only.
func (c *Catalog) InsertItem(ctx context.Context, item Item) error {
	return c.store.InsertItem(ctx, item)
}

// DeleteItem removes an item by id. Fixture reloads only.
func (c *Catalog) DeleteItem(ctx context.Context, id int64) error {
	return c.store.DeleteItem(ctx, id)
}

// ItemCount returns the number of persisted items.
func (c *Catalog) ItemCount(ctx context.Context) (int, error) {
	return c.store.ItemCount(ctx)
}

// Close closes the underlying store.
func (c *Catalog) Close() error {
	return c.store.Close()
}
