package service

import (
	"context"
	"fmt"
	"time"

	"dictionary/internal/domain"
	"dictionary/internal/repository"
)

// TranslationService handles translation persistence for words
type TranslationService struct {
	repo repository.TranslationRepository
	now  func() time.Time
}

// NewTranslationService creates a new translation service
func NewTranslationService(repo repository.TranslationRepository) *TranslationService {
	return &TranslationService{
		repo: repo,
		now:  time.Now,
	}
}

// WithTx returns a copy of the service whose writes go through tx
func (s *TranslationService) WithTx(tx repository.Tx) *TranslationService {
	return &TranslationService{
		repo: tx.Translations(),
		now:  s.now,
	}
}

// Save persists a translation, stamping its registration date if unset
func (s *TranslationService) Save(ctx context.Context, t *domain.Translation) error {
	if t.RegistrationDate.IsZero() {
		t.RegistrationDate = s.now()
	}
	return s.repo.Save(ctx, t)
}

// AddTranslation creates a new translation for word and appends it to the word
func (s *TranslationService) AddTranslation(ctx context.Context, word *domain.Word, name string) (*domain.Translation, error) {
	t := domain.Translation{
		Name:   name,
		WordID: word.ID,
	}
	if err := s.Save(ctx, &t); err != nil {
		return nil, fmt.Errorf("failed to add translation %q to word %d: %w", name, word.ID, err)
	}

	word.Translations = append(word.Translations, t)
	return &word.Translations[len(word.Translations)-1], nil
}

// FindTranslationByName looks up a translation by exact name in list
func (s *TranslationService) FindTranslationByName(list []domain.Translation, name string) (*domain.Translation, bool) {
	word := domain.Word{Translations: list}
	return word.FindTranslation(name)
}

// DeleteTranslation removes a translation by id
func (s *TranslationService) DeleteTranslation(ctx context.Context, id int) error {
	return s.repo.DeleteByID(ctx, id)
}

// DeleteAllOf removes every translation of a word
func (s *TranslationService) DeleteAllOf(ctx context.Context, wordID int) error {
	return s.repo.DeleteByWordID(ctx, wordID)
}

// TranslationsOf returns the translations owned by a word
func (s *TranslationService) TranslationsOf(ctx context.Context, wordID int) ([]domain.Translation, error) {
	return s.repo.FindByWordID(ctx, wordID)
}

// TranslationsOfAll returns the translations of several words grouped by word id
func (s *TranslationService) TranslationsOfAll(ctx context.Context, wordIDs []int) (map[int][]domain.Translation, error) {
	return s.repo.FindByWordIDs(ctx, wordIDs)
}
