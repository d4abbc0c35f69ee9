package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

// ErrEntityNotFound — no persisted snapshot exists for the given name.
var ErrEntityNotFound = errors.New("entity not found")

// EntityRow is one persisted entity snapshot.
type EntityRow struct {
	Name string
	Kind string
	Data entity.PersistedEntity
}

// EntityRepository stores entity snapshots as JSONB. The engine hands
// over plain structured data; the schema stays agnostic of attribute
// and effect vocabulary.
type EntityRepository struct {
	db *pgxpool.Pool
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(db *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{db: db}
}

// Save upserts one entity snapshot.
func (r *EntityRepository) Save(ctx context.Context, name, kind string, data entity.PersistedEntity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx, name)

	if err := r.SaveTx(ctx, tx, name, kind, data); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for entity %q: %w", name, err)
	}
	return nil
}

// SaveTx upserts one entity snapshot within an existing transaction.
func (r *EntityRepository) SaveTx(ctx context.Context, tx pgx.Tx, name, kind string, data entity.PersistedEntity) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding entity %q: %w", name, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO entities (name, kind, data, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (name) DO UPDATE
		 SET kind = EXCLUDED.kind, data = EXCLUDED.data, updated_at = now()`,
		name, kind, payload,
	); err != nil {
		return fmt.Errorf("saving entity %q: %w", name, err)
	}
	return nil
}

// SaveAll persists a batch of snapshots in a single transaction:
// either every entity is saved or none.
func (r *EntityRepository) SaveAll(ctx context.Context, rows []EntityRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx, "batch")

	for _, row := range rows {
		if err := r.SaveTx(ctx, tx, row.Name, row.Kind, row.Data); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch of %d entities: %w", len(rows), err)
	}

	slog.Info("entities saved", "count", len(rows))
	return nil
}

// Load returns one entity snapshot by name.
func (r *EntityRepository) Load(ctx context.Context, name string) (EntityRow, error) {
	var (
		row     EntityRow
		payload []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT name, kind, data FROM entities WHERE name = $1`, name,
	).Scan(&row.Name, &row.Kind, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EntityRow{}, fmt.Errorf("%w: %q", ErrEntityNotFound, name)
		}
		return EntityRow{}, fmt.Errorf("querying entity %q: %w", name, err)
	}

	if err := json.Unmarshal(payload, &row.Data); err != nil {
		return EntityRow{}, fmt.Errorf("decoding entity %q: %w", name, err)
	}
	return row, nil
}

// LoadAll returns every persisted entity snapshot.
func (r *EntityRepository) LoadAll(ctx context.Context) ([]EntityRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, kind, data FROM entities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	out := make([]EntityRow, 0, 64)
	for rows.Next() {
		var (
			row     EntityRow
			payload []byte
		)
		if err := rows.Scan(&row.Name, &row.Kind, &payload); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		if err := json.Unmarshal(payload, &row.Data); err != nil {
			return nil, fmt.Errorf("decoding entity %q: %w", row.Name, err)
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entity rows: %w", err)
	}
	return out, nil
}

func rollback(ctx context.Context, tx pgx.Tx, scope string) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("rollback failed", "scope", scope, "error", err)
	}
}
