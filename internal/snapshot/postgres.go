package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS lims_snapshots (
	slot     TEXT PRIMARY KEY,
	version  INT NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL,
	data     JSONB NOT NULL
)`

// PostgresAdapter stores the snapshot in a single database row, for
// deployments that want the slot inside the lab's existing database. The
// upsert is atomic so a failed write never clobbers the previous row.
type PostgresAdapter struct {
	db   *sqlx.DB
	slot string
}

func NewPostgres(dsn, slot string) (*PostgresAdapter, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, apperrors.Persistence("failed to connect to snapshot database", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, apperrors.Persistence("failed to create snapshot table", err)
	}
	return &PostgresAdapter{db: db, slot: slot}, nil
}

func (p *PostgresAdapter) Save(ctx context.Context, state *State) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO lims_snapshots (slot, version, saved_at, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slot) DO UPDATE SET
			version = EXCLUDED.version,
			saved_at = EXCLUDED.saved_at,
			data = EXCLUDED.data
	`
	if _, err := p.db.ExecContext(ctx, query, p.slot, Version, time.Now().UTC(), data); err != nil {
		return apperrors.Persistence("failed to write snapshot row", err)
	}
	return nil
}

func (p *PostgresAdapter) Load(ctx context.Context) (*State, error) {
	var data []byte
	query := `SELECT data FROM lims_snapshots WHERE slot = $1`
	err := p.db.GetContext(ctx, &data, query, p.slot)
	if errors.Is(err, sql.ErrNoRows) {
		return Empty(), nil
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to read snapshot row", err)
	}
	return decode(data)
}

func (p *PostgresAdapter) Close() error {
	return p.db.Close()
}
