package leads

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteTimeLayout is fixed width so lexical order matches time order.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS leads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    whatsapp TEXT NOT NULL,
    operation TEXT NOT NULL DEFAULT '',
    property_type TEXT NOT NULL DEFAULT '',
    zone TEXT NOT NULL DEFAULT '',
    budget TEXT NOT NULL DEFAULT '',
    financing TEXT NOT NULL DEFAULT '',
    timeline TEXT NOT NULL DEFAULT '',
    classification TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
`

// SQLiteRepository stores leads in a local SQLite file, the default for a
// single-node deployment.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteRepository opens (or creates) the database at path and ensures
// the schema exists.
func OpenSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("leads: open sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("leads: create schema: %w", err)
	}
	return NewSQLiteRepository(db), nil
}

// NewSQLiteRepository wraps an already-open handle. The schema is assumed to exist.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	if db == nil {
		panic("leads: sql db required")
	}
	return &SQLiteRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Close releases the underlying handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new row.
func (r *SQLiteRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	createdAt := r.now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (name, whatsapp, operation, property_type, zone, budget, financing, timeline, classification, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Name,
		req.WhatsApp,
		req.Operation,
		req.PropertyType,
		req.Zone,
		req.Budget,
		req.Financing,
		req.Timeline,
		string(req.Classification),
		string(StatusPending),
		createdAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return nil, storageErr("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("insert", err)
	}
	return req.toLead(id, createdAt), nil
}

// List returns all leads newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]*Lead, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, whatsapp, operation, property_type, zone, budget,
		       financing, timeline, classification, status, created_at
		FROM leads
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, storageErr("select", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		var (
			lead                              Lead
			classification, status, createdAt string
		)
		if err := rows.Scan(
			&lead.ID,
			&lead.Name,
			&lead.WhatsApp,
			&lead.Operation,
			&lead.PropertyType,
			&lead.Zone,
			&lead.Budget,
			&lead.Financing,
			&lead.Timeline,
			&classification,
			&status,
			&createdAt,
		); err != nil {
			return nil, storageErr("scan", err)
		}
		ts, err := time.ParseInLocation(sqliteTimeLayout, createdAt, time.UTC)
		if err != nil {
			return nil, storageErr("scan", fmt.Errorf("created_at %q: %w", createdAt, err))
		}
		lead.Classification = Classification(classification)
		lead.Status = Status(status)
		lead.CreatedAt = ts
		out = append(out, &lead)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("select", err)
	}
	return out, nil
}

// UpdateStatus sets status on the row; zero affected rows is not an error.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE leads SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return storageErr("update", err)
	}
	return nil
}
