package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"dictionary/internal/domain"
)

// WordRepo implements repository.WordRepository
type WordRepo struct {
	db querier
}

// NewWordRepo creates a new word repository
func NewWordRepo(db querier) *WordRepo {
	return &WordRepo{db: db}
}

// FindByID returns the word with the given id or nil if there is none.
// Translations are not loaded.
func (r *WordRepo) FindByID(ctx context.Context, id int) (*domain.Word, error) {
	query := `
		SELECT id, name, progress, registration_date
		FROM words
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByName returns the first word with exactly the given name or nil
func (r *WordRepo) FindByName(ctx context.Context, name string) (*domain.Word, error) {
	query := `
		SELECT id, name, progress, registration_date
		FROM words
		WHERE name = $1
		ORDER BY id
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// FindAll returns every word in insertion order
func (r *WordRepo) FindAll(ctx context.Context) ([]domain.Word, error) {
	query := `
		SELECT id, name, progress, registration_date
		FROM words
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []domain.Word
	for rows.Next() {
		var w domain.Word
		if err := rows.Scan(&w.ID, &w.Name, &w.Progress, &w.RegistrationDate); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, w)
	}

	return words, rows.Err()
}

// Save inserts a new word or overwrites the row with the word's id
func (r *WordRepo) Save(ctx context.Context, word *domain.Word) error {
	if word.ID == 0 {
		query := `
			INSERT INTO words (name, progress, registration_date)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		err := r.db.QueryRowContext(ctx, query, word.Name, word.Progress, word.RegistrationDate).Scan(&word.ID)
		if err != nil {
			return fmt.Errorf("failed to insert word: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO words (id, name, progress, registration_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name,
			progress = EXCLUDED.progress,
			registration_date = EXCLUDED.registration_date
	`
	if _, err := r.db.ExecContext(ctx, query, word.ID, word.Name, word.Progress, word.RegistrationDate); err != nil {
		return fmt.Errorf("failed to save word %d: %w", word.ID, err)
	}
	return nil
}

// DeleteByID removes the word row. Missing ids are ignored.
func (r *WordRepo) DeleteByID(ctx context.Context, id int) error {
	query := `DELETE FROM words WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete word %d: %w", id, err)
	}
	return nil
}

// LockName takes a transaction-scoped advisory lock keyed by the name.
// Outside a transaction the lock is released as soon as the statement ends.
func (r *WordRepo) LockName(ctx context.Context, name string) error {
	query := `SELECT pg_advisory_xact_lock(hashtext($1))`
	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("failed to lock word name %q: %w", name, err)
	}
	return nil
}

func (r *WordRepo) scanOne(row *sql.Row) (*domain.Word, error) {
	var w domain.Word
	err := row.Scan(&w.ID, &w.Name, &w.Progress, &w.RegistrationDate)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}

	return &w, nil
}
