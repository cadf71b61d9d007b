package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// BunRepository persists settings records in the settings table.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Get(ctx context.Context, group Group) (*Record, error) {
	record := new(Record)
	err := r.db.NewSelect().Model(record).Where("?TableAlias.group_key = ?", group).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("settings repository error: %w", err)
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Record, error) {
	var records []*Record
	if err := r.db.NewSelect().Model(&records).OrderExpr("?TableAlias.group_key ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("settings repository error: %w", err)
	}
	return records, nil
}

func (r *BunRepository) Upsert(ctx context.Context, record *Record) (*Record, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(Record)
		err := tx.NewSelect().Model(existing).Where("?TableAlias.group_key = ?", record.Group).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.NewInsert().Model(record).Exec(ctx)
			return err
		case err != nil:
			return err
		}
		record.CreatedAt = existing.CreatedAt
		_, err = tx.NewUpdate().
			Model(record).
			Column("payload", "updated_by", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("settings repository error: %w", err)
	}
	return r.Get(ctx, record.Group)
}
