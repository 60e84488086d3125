package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"dictionary/internal/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store implements repository.Store
type Store struct {
	db *sql.DB
}

// NewStore creates a new store over the given connection pool
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Words returns a word repository working outside a transaction
func (s *Store) Words() repository.WordRepository {
	return NewWordRepo(s.db)
}

// Translations returns a translation repository working outside a transaction
func (s *Store) Translations() repository.TranslationRepository {
	return NewTranslationRepo(s.db)
}

// Begin starts a new transaction
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Tx implements repository.Tx over *sql.Tx
type Tx struct {
	tx *sql.Tx
}

// Words returns a word repository bound to the transaction
func (t *Tx) Words() repository.WordRepository {
	return NewWordRepo(t.tx)
}

// Translations returns a translation repository bound to the transaction
func (t *Tx) Translations() repository.TranslationRepository {
	return NewTranslationRepo(t.tx)
}

// Commit commits the transaction
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Calling it after Commit is a no-op.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}
