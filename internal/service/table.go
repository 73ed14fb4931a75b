package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
)

var (
	ErrInvalidTableCount = errors.New("table count must be >= 1")
	ErrTablesOccupied    = errors.New("cannot remove tables with active orders")
)

// TableStore defines the DB methods needed by the table pool.
type TableStore interface {
	MaxTableID(ctx context.Context) (int32, error)
	CountOccupiedAbove(ctx context.Context, arg database.CountOccupiedAboveParams) (int64, error)
	InsertTable(ctx context.Context, arg database.InsertTableParams) error
	DeleteTablesAbove(ctx context.Context, id int32) error
	UpdateSettings(ctx context.Context, arg database.UpdateSettingsParams) (database.CafeSettings, error)
}

type NewTableStore func(db database.DBTX) TableStore

// TableService manages the fixed pool of numbered tables and the settings
// row that records its size.
type TableService struct {
	pool     TxBeginner
	newStore NewTableStore
}

func NewTableService(pool TxBeginner, newStore NewTableStore) *TableService {
	return &TableService{pool: pool, newStore: newStore}
}

// Resize grows or shrinks the table pool to the target count.
func (s *TableService) Resize(ctx context.Context, target int32) error {
	if target < 1 {
		return ErrInvalidTableCount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := resizeTables(ctx, s.newStore(tx), target); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateSettings writes the settings row and resizes the table pool in
// the same transaction, so total_tables never disagrees with the tables
// that actually exist.
func (s *TableService) UpdateSettings(ctx context.Context, arg database.UpdateSettingsParams) (database.CafeSettings, error) {
	if arg.TotalTables < 1 {
		return database.CafeSettings{}, ErrInvalidTableCount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.CafeSettings{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if err := resizeTables(ctx, store, arg.TotalTables); err != nil {
		return database.CafeSettings{}, err
	}

	settings, err := store.UpdateSettings(ctx, arg)
	if err != nil {
		return database.CafeSettings{}, fmt.Errorf("update settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.CafeSettings{}, fmt.Errorf("commit tx: %w", err)
	}
	return settings, nil
}

// resizeTables brings the pool to the target count. Growing appends fresh
// AVAILABLE tables; shrinking refuses while any table above the new count
// is still occupied, so no live order loses its table.
func resizeTables(ctx context.Context, store TableStore, target int32) error {
	current, err := store.MaxTableID(ctx)
	if err != nil {
		return fmt.Errorf("max table id: %w", err)
	}

	switch {
	case target > current:
		for id := current + 1; id <= target; id++ {
			if err := store.InsertTable(ctx, database.InsertTableParams{
				ID:     id,
				Status: enum.TableStatusAvailable,
			}); err != nil {
				return fmt.Errorf("insert table %d: %w", id, err)
			}
		}
	case target < current:
		occupied, err := store.CountOccupiedAbove(ctx, database.CountOccupiedAboveParams{
			ID:     target,
			Status: enum.TableStatusOccupied,
		})
		if err != nil {
			return fmt.Errorf("count occupied tables: %w", err)
		}
		if occupied > 0 {
			return ErrTablesOccupied
		}
		if err := store.DeleteTablesAbove(ctx, target); err != nil {
			return fmt.Errorf("delete tables: %w", err)
		}
	}

	return nil
}
