package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the subset of pgxpool.Pool used by the repository.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const pgSelectLeads = `
	SELECT id, name, whatsapp, operation, property_type, zone, budget,
	       financing, timeline, classification, status, created_at
	FROM leads
	ORDER BY created_at DESC, id DESC
`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO leads (name, whatsapp, operation, property_type, zone, budget, financing, timeline, classification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, status, created_at
	`
	lead := req.toLead(0, time.Time{})
	var status string
	if err := r.db.QueryRow(ctx, query,
		req.Name,
		req.WhatsApp,
		req.Operation,
		req.PropertyType,
		req.Zone,
		req.Budget,
		req.Financing,
		req.Timeline,
		string(req.Classification),
	).Scan(&lead.ID, &status, &lead.CreatedAt); err != nil {
		return nil, storageErr("insert", err)
	}
	lead.Status = Status(status)
	return lead, nil
}

// List returns all leads newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Lead, error) {
	rows, err := r.db.Query(ctx, pgSelectLeads)
	if err != nil {
		return nil, storageErr("select", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		var (
			lead                   Lead
			classification, status string
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
			&lead.CreatedAt,
		); err != nil {
			return nil, storageErr("scan", err)
		}
		lead.Classification = Classification(classification)
		lead.Status = Status(status)
		out = append(out, &lead)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("select", fmt.Errorf("iterate rows: %w", err))
	}
	return out, nil
}

// UpdateStatus sets status on the row; zero affected rows is not an error.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if _, err := r.db.Exec(ctx, `UPDATE leads SET status = $1 WHERE id = $2`, string(status), id); err != nil {
		return storageErr("update", err)
	}
	return nil
}
