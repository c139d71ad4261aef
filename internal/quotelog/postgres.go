package quotelog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS quote_log (
    id          uuid PRIMARY KEY,
    created_at  timestamptz NOT NULL,
    user_id     text NOT NULL,
    reserved    text NOT NULL DEFAULT '',
    company     text NOT NULL,
    channel     text NOT NULL,
    mode        text NOT NULL,
    origin      text NOT NULL,
    destination text NOT NULL,
    weight      text NOT NULL,
    volume      text NOT NULL,
    modality    text NOT NULL,
    total       numeric(14,2) NOT NULL,
    summary     text NOT NULL
)`

// PostgresSink inserts records into the quote_log table.
type PostgresSink struct {
	db *pgxpool.Pool
}

// NewPostgresSink returns a sink; call EnsureSchema once at startup.
func NewPostgresSink(db *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: db}
}

// EnsureSchema creates quote_log when missing.
func (p *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create quote_log: %w", err)
	}
	return nil
}

func (p *PostgresSink) Append(ctx context.Context, r Record) error {
	_, err := p.db.Exec(ctx, `
        INSERT INTO quote_log (
            id, created_at, user_id, company, channel, mode,
            origin, destination, weight, volume, modality, total, summary
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `,
		uuid.New(),
		r.Timestamp.UTC(),
		r.UserID,
		r.Company,
		Channel,
		string(r.Mode),
		r.Origin,
		r.Destination,
		r.Weight,
		r.Volume,
		r.Modality,
		r.Total,
		r.Summary,
	)
	if err != nil {
		return fmt.Errorf("insert quote_log: %w", err)
	}
	return nil
}
