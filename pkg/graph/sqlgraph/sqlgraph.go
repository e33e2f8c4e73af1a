// Package sqlgraph is an item graph stored as an adjacency table in SQLite.
// Items are row ids; children are ordered by position.
package sqlgraph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/pkg/types"
)

// ID identifies one item.
type ID int64

// Record is one stored item.
type Record struct {
	ID       ID
	Parent   ID // 0 for the root
	Name     string
	Value    string
	Position int
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id        INTEGER PRIMARY KEY,
	parent_id INTEGER REFERENCES items(id) ON DELETE CASCADE,
	name      TEXT NOT NULL,
	value     TEXT NOT NULL DEFAULT '',
	position  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS items_parent ON items(parent_id, position);
`

// Graph reads and writes items in one database.
type Graph struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dsn, a file path or
// ":memory:".
func Open(ctx context.Context, dsn string) (*Graph, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	// One connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)
	g, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return g, nil
}

// New uses an already open database, creating the schema if needed.
func New(ctx context.Context, db *sql.DB) (*Graph, error) {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Graph{db: db}, nil
}

// Close closes the database.
func (g *Graph) Close() error { return g.db.Close() }

func adapterErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return types.Wrap(types.ErrAdapter, op, err)
}

func nullable(id ID) any {
	if id == 0 {
		return nil
	}
	return int64(id)
}

// Insert appends an item under parent, 0 creating a root. It returns the
// new id.
func (g *Graph) Insert(ctx context.Context, parent ID, name, value string) (ID, error) {
	res, err := g.db.ExecContext(ctx, `
		INSERT INTO items (parent_id, name, value, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM items WHERE parent_id IS ?))`,
		nullable(parent), name, value, nullable(parent))
	if err != nil {
		return 0, adapterErr("sqlgraph insert", err)
	}
	id, err := res.LastInsertId()
	return ID(id), adapterErr("sqlgraph insert", err)
}

// Root returns the first item without a parent.
func (g *Graph) Root(ctx context.Context) (ID, error) {
	var id int64
	err := g.db.QueryRowContext(ctx, `SELECT id FROM items WHERE parent_id IS NULL ORDER BY id LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, types.Wrap(types.ErrNotFound, "sqlgraph root", fmt.Errorf("no root item"))
	}
	return ID(id), adapterErr("sqlgraph root", err)
}

// Get returns the stored record of id.
func (g *Graph) Get(ctx context.Context, id ID) (Record, error) {
	var (
		r      Record
		parent sql.NullInt64
	)
	err := g.db.QueryRowContext(ctx,
		`SELECT id, parent_id, name, value, position FROM items WHERE id = ?`, int64(id)).
		Scan(&r.ID, &parent, &r.Name, &r.Value, &r.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, types.Wrap(types.ErrNotFound, "sqlgraph get", fmt.Errorf("item %d", id))
	}
	if err != nil {
		return Record{}, adapterErr("sqlgraph get", err)
	}
	r.Parent = ID(parent.Int64)
	return r, nil
}

// SetValue updates the value column of id.
func (g *Graph) SetValue(ctx context.Context, id ID, value string) error {
	return g.update(ctx, "sqlgraph set value", `UPDATE items SET value = ? WHERE id = ?`, value, int64(id))
}

// Rename updates the name of id.
func (g *Graph) Rename(ctx context.Context, id ID, name string) error {
	return g.update(ctx, "sqlgraph rename", `UPDATE items SET name = ? WHERE id = ?`, name, int64(id))
}

func (g *Graph) update(ctx context.Context, op, query string, args ...any) error {
	res, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return adapterErr(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.Wrap(types.ErrNotFound, op, fmt.Errorf("item %v", args[len(args)-1]))
	}
	return nil
}

// Delete removes id and its descendants.
func (g *Graph) Delete(ctx context.Context, id ID) error {
	return g.update(ctx, "sqlgraph delete", `DELETE FROM items WHERE id = ?`, int64(id))
}

// Move reparents id under parent at position, shifting later siblings.
// Moving an item below itself is rejected.
func (g *Graph) Move(ctx context.Context, id, parent ID, position int) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return adapterErr("sqlgraph move", err)
	}
	defer tx.Rollback()

	var cycle bool
	err = tx.QueryRowContext(ctx, `
		WITH RECURSIVE up(id, parent_id) AS (
			SELECT id, parent_id FROM items WHERE id = ?
			UNION ALL
			SELECT i.id, i.parent_id FROM items i JOIN up ON i.id = up.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM up WHERE id = ?)`, int64(parent), int64(id)).Scan(&cycle)
	if err != nil {
		return adapterErr("sqlgraph move", err)
	}
	if cycle {
		return &types.Error{Kind: types.ErrKindContract, Op: "sqlgraph move", Msg: fmt.Sprintf("item %d cannot move below itself", id)}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET position = position + 1 WHERE parent_id IS ? AND position >= ?`,
		nullable(parent), position); err != nil {
		return adapterErr("sqlgraph move", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE items SET parent_id = ?, position = ? WHERE id = ?`, nullable(parent), position, int64(id))
	if err != nil {
		return adapterErr("sqlgraph move", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.Wrap(types.ErrNotFound, "sqlgraph move", fmt.Errorf("item %d", id))
	}
	logger.Debug("sqlgraph: moved", "id", id, "parent", parent, "position", position)
	return adapterErr("sqlgraph move", tx.Commit())
}

func asID(op string, it types.Item) (ID, error) {
	id, ok := it.(ID)
	if !ok {
		return 0, &types.Error{Kind: types.ErrKindContract, Op: op, Msg: fmt.Sprintf("item %T is not a sqlgraph.ID", it)}
	}
	return id, nil
}

// Children returns the child ids of an ID item in position order.
func (g *Graph) Children(ctx context.Context, it types.Item) ([]types.Item, error) {
	id, err := asID("sqlgraph children", it)
	if err != nil {
		return nil, err
	}
	rows, err := g.db.QueryContext(ctx,
		`SELECT id FROM items WHERE parent_id = ? ORDER BY position, id`, int64(id))
	if err != nil {
		return nil, adapterErr("sqlgraph children", err)
	}
	defer rows.Close()

	var out []types.Item
	for rows.Next() {
		var child int64
		if err := rows.Scan(&child); err != nil {
			return nil, adapterErr("sqlgraph children", err)
		}
		out = append(out, ID(child))
	}
	return out, adapterErr("sqlgraph children", rows.Err())
}

// Parent implements get-parent.
func (g *Graph) Parent(it types.Item) (types.Item, bool) {
	id, ok := it.(ID)
	if !ok {
		return nil, false
	}
	var parent sql.NullInt64
	err := g.db.QueryRow(`SELECT parent_id FROM items WHERE id = ?`, int64(id)).Scan(&parent)
	if err != nil || !parent.Valid {
		return nil, false
	}
	return ID(parent.Int64), true
}

// HasChildren reports whether an item has at least one child.
func (g *Graph) HasChildren(it types.Item) bool {
	id, ok := it.(ID)
	if !ok {
		return false
	}
	var has bool
	err := g.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM items WHERE parent_id = ?)`, int64(id)).Scan(&has)
	return err == nil && has
}

// Count returns the number of stored items.
func (g *Graph) Count(ctx context.Context) (int, error) {
	var n int
	err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, adapterErr("sqlgraph count", err)
}
