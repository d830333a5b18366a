package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/edunexa/assessment-api/pkg/errors"
)

// LockRepository serialises pipeline runs per (tenant, class) with Postgres
// advisory locks. Two concurrent saves or promotion runs on the same class
// cannot interleave; the loser gets ErrClassLocked and retries.
type LockRepository struct {
	db *sqlx.DB
}

// NewLockRepository creates a new lock repository.
func NewLockRepository(db *sqlx.DB) *LockRepository {
	return &LockRepository{db: db}
}

// ClassLockKey builds the advisory lock key for a class-scoped pipeline run.
func ClassLockKey(tenantID, classID string) string {
	return fmt.Sprintf("class:%s:%s", tenantID, classID)
}

// WithLock runs fn while holding the advisory lock for key. The lock is a
// transaction-scoped advisory lock, released on commit or rollback. Lock
// contention surfaces as ErrClassLocked without waiting.
func (r *LockRepository) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lock tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var acquired bool
	if err := tx.GetContext(ctx, &acquired, "SELECT pg_try_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return appErrors.ErrClassLocked
	}

	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}
	return nil
}
