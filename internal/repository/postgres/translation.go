package postgres

import (
	"context"
	"fmt"

	"dictionary/internal/domain"

	"github.com/lib/pq"
)

// TranslationRepo implements repository.TranslationRepository
type TranslationRepo struct {
	db querier
}

// NewTranslationRepo creates a new translation repository
func NewTranslationRepo(db querier) *TranslationRepo {
	return &TranslationRepo{db: db}
}

// Save inserts a new translation or overwrites the row with the same id
func (r *TranslationRepo) Save(ctx context.Context, t *domain.Translation) error {
	if t.ID == 0 {
		query := `
			INSERT INTO translations (name, registration_date, word_id)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		err := r.db.QueryRowContext(ctx, query, t.Name, t.RegistrationDate, t.WordID).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("failed to insert translation: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO translations (id, name, registration_date, word_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name,
			registration_date = EXCLUDED.registration_date,
			word_id = EXCLUDED.word_id
	`
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.RegistrationDate, t.WordID); err != nil {
		return fmt.Errorf("failed to save translation %d: %w", t.ID, err)
	}
	return nil
}

// FindByWordID returns the translations of one word in insertion order
func (r *TranslationRepo) FindByWordID(ctx context.Context, wordID int) ([]domain.Translation, error) {
	query := `
		SELECT id, name, registration_date, word_id
		FROM translations
		WHERE word_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, wordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query translations: %w", err)
	}
	defer rows.Close()

	var translations []domain.Translation
	for rows.Next() {
		var t domain.Translation
		if err := rows.Scan(&t.ID, &t.Name, &t.RegistrationDate, &t.WordID); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		translations = append(translations, t)
	}

	return translations, rows.Err()
}

// FindByWordIDs loads the translations of several words with one query,
// grouped by word id
func (r *TranslationRepo) FindByWordIDs(ctx context.Context, wordIDs []int) (map[int][]domain.Translation, error) {
	result := make(map[int][]domain.Translation)
	if len(wordIDs) == 0 {
		return result, nil
	}

	ids := make([]int64, len(wordIDs))
	for i, id := range wordIDs {
		ids[i] = int64(id)
	}

	query := `
		SELECT id, name, registration_date, word_id
		FROM translations
		WHERE word_id = ANY($1)
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query translations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Translation
		if err := rows.Scan(&t.ID, &t.Name, &t.RegistrationDate, &t.WordID); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		result[t.WordID] = append(result[t.WordID], t)
	}

	return result, rows.Err()
}

// DeleteByID removes one translation
func (r *TranslationRepo) DeleteByID(ctx context.Context, id int) error {
	query := `DELETE FROM translations WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete translation %d: %w", id, err)
	}
	return nil
}

// DeleteByWordID removes every translation of a word
func (r *TranslationRepo) DeleteByWordID(ctx context.Context, wordID int) error {
	query := `DELETE FROM translations WHERE word_id = $1`
	if _, err := r.db.ExecContext(ctx, query, wordID); err != nil {
		return fmt.Errorf("failed to delete translations of word %d: %w", wordID, err)
	}
	return nil
}
