package service

import (
	"context"
	"fmt"
	"time"

	"dictionary/internal/domain"
	"dictionary/internal/repository"

	"go.uber.org/zap"
)

// WordService handles word-related business logic
type WordService struct {
	store        repository.Store
	translations *TranslationService
	progressStep int
	logger       *zap.Logger
	now          func() time.Time
}

// NewWordService creates a new word service. progressStep is the amount
// IncreaseProgress and DecreaseProgress move a word's progress by.
func NewWordService(
	store repository.Store,
	translations *TranslationService,
	progressStep int,
	logger *zap.Logger,
) *WordService {
	return &WordService{
		store:        store,
		translations: translations,
		progressStep: progressStep,
		logger:       logger,
		now:          time.Now,
	}
}

// FindByID returns the word with its translations, or nil if it does not exist
func (s *WordService) FindByID(ctx context.Context, id int) (*domain.Word, error) {
	word, err := s.store.Words().FindByID(ctx, id)
	if err != nil || word == nil {
		return nil, err
	}
	if err := s.attachTranslations(ctx, word); err != nil {
		return nil, err
	}
	return word, nil
}

// GetWordByID is an alias of FindByID
func (s *WordService) GetWordByID(ctx context.Context, id int) (*domain.Word, error) {
	return s.FindByID(ctx, id)
}

// FindByName returns the word with exactly the given name, or nil
func (s *WordService) FindByName(ctx context.Context, name string) (*domain.Word, error) {
	word, err := s.store.Words().FindByName(ctx, name)
	if err != nil || word == nil {
		return nil, err
	}
	if err := s.attachTranslations(ctx, word); err != nil {
		return nil, err
	}
	return word, nil
}

// FindAll returns every stored word with its translations in insertion order
func (s *WordService) FindAll(ctx context.Context) ([]domain.Word, error) {
	words, err := s.store.Words().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}

	grouped, err := s.translations.TranslationsOfAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range words {
		words[i].Translations = grouped[words[i].ID]
	}

	return words, nil
}

// ListNames returns the names of all words in the same order as FindAll
func (s *WordService) ListNames(ctx context.Context) ([]string, error) {
	words, err := s.store.Words().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(words))
	for _, w := range words {
		names = append(names, w.Name)
	}
	return names, nil
}

// ContainsName reports whether a word with exactly this name is stored
func (s *WordService) ContainsName(ctx context.Context, name string) (bool, error) {
	word, err := s.store.Words().FindByName(ctx, name)
	if err != nil {
		return false, err
	}
	return word != nil, nil
}

// Save persists the word, stamping its registration date if it has none.
// word is updated with the stored id and date only after the commit.
func (s *WordService) Save(ctx context.Context, word *domain.Word) error {
	updated := *word

	if err := s.inTx(ctx, func(tx repository.Tx) error {
		return s.save(ctx, tx.Words(), &updated)
	}); err != nil {
		return err
	}

	*word = updated
	return nil
}

// Edit overwrites the record with the given id using word's fields.
// The caller is responsible for not clobbering an unrelated word.
func (s *WordService) Edit(ctx context.Context, word *domain.Word, id int) error {
	word.ID = id
	return s.inTx(ctx, func(tx repository.Tx) error {
		return tx.Words().Save(ctx, word)
	})
}

// AddWord creates a word with the given translations. It returns false
// without touching the store if a word with that name already exists.
func (s *WordService) AddWord(ctx context.Context, name string, translationNames []string) (bool, error) {
	added := false

	err := s.inTx(ctx, func(tx repository.Tx) error {
		words := tx.Words()

		// Held until the transaction ends so concurrent adds of one name
		// see each other's insert
		if err := words.LockName(ctx, name); err != nil {
			return err
		}

		existing, err := words.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		// The first save assigns the id the translations reference
		word := &domain.Word{Name: name, Progress: 0}
		if err := s.save(ctx, words, word); err != nil {
			return err
		}

		translations := s.translations.WithTx(tx)
		list := make([]domain.Translation, 0, len(translationNames))
		for _, tn := range translationNames {
			t := domain.Translation{
				Name:             tn,
				RegistrationDate: s.now(),
				WordID:           word.ID,
			}
			if err := translations.Save(ctx, &t); err != nil {
				return err
			}
			list = append(list, t)
		}
		word.Translations = list

		if err := s.save(ctx, words, word); err != nil {
			return err
		}

		added = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to add word %q: %w", name, err)
	}

	if added {
		s.logger.Info("Word added",
			zap.String("word", name),
			zap.Int("translations", len(translationNames)),
		)
	} else {
		s.logger.Debug("Word already exists, skipping", zap.String("word", name))
	}

	return added, nil
}

// ChangeName renames the word and persists it
func (s *WordService) ChangeName(ctx context.Context, newName string, word *domain.Word) error {
	updated := *word
	updated.Name = newName

	if err := s.inTx(ctx, func(tx repository.Tx) error {
		return tx.Words().Save(ctx, &updated)
	}); err != nil {
		return err
	}

	*word = updated
	return nil
}

// DeleteWord removes a word together with its translations
func (s *WordService) DeleteWord(ctx context.Context, id int) error {
	err := s.inTx(ctx, func(tx repository.Tx) error {
		if err := s.translations.WithTx(tx).DeleteAllOf(ctx, id); err != nil {
			return err
		}
		return tx.Words().DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Word deleted", zap.Int("word_id", id))
	return nil
}

// DeleteOneTranslation removes the translation named translationName from the
// word with wordID. Both must exist.
func (s *WordService) DeleteOneTranslation(ctx context.Context, wordID int, translationName string) error {
	return s.inTx(ctx, func(tx repository.Tx) error {
		word, err := tx.Words().FindByID(ctx, wordID)
		if err != nil {
			return err
		}
		if word == nil {
			return fmt.Errorf("word %d: %w", wordID, domain.ErrWordNotFound)
		}

		translations := s.translations.WithTx(tx)
		list, err := translations.TranslationsOf(ctx, wordID)
		if err != nil {
			return err
		}

		t, ok := translations.FindTranslationByName(list, translationName)
		if !ok {
			return fmt.Errorf("translation %q of word %d: %w", translationName, wordID, domain.ErrTranslationNotFound)
		}

		return translations.DeleteTranslation(ctx, t.ID)
	})
}

// AddOneTranslation adds a translation to the word with exactly wordName
func (s *WordService) AddOneTranslation(ctx context.Context, wordName, translationName string) error {
	return s.inTx(ctx, func(tx repository.Tx) error {
		word, err := tx.Words().FindByName(ctx, wordName)
		if err != nil {
			return err
		}
		if word == nil {
			return fmt.Errorf("word %q: %w", wordName, domain.ErrWordNotFound)
		}

		_, err = s.translations.WithTx(tx).AddTranslation(ctx, word, translationName)
		return err
	})
}

// IncreaseProgress adds the configured step to the word's progress
func (s *WordService) IncreaseProgress(ctx context.Context, word *domain.Word) error {
	return s.moveProgress(ctx, word, s.progressStep)
}

// DecreaseProgress subtracts the configured step from the word's progress.
// Progress is not clamped and may become negative.
func (s *WordService) DecreaseProgress(ctx context.Context, word *domain.Word) error {
	return s.moveProgress(ctx, word, -s.progressStep)
}

func (s *WordService) moveProgress(ctx context.Context, word *domain.Word, delta int) error {
	updated := *word
	updated.Progress += delta

	if err := s.inTx(ctx, func(tx repository.Tx) error {
		return tx.Words().Save(ctx, &updated)
	}); err != nil {
		return err
	}

	*word = updated
	return nil
}

func (s *WordService) save(ctx context.Context, words repository.WordRepository, word *domain.Word) error {
	if word.RegistrationDate.IsZero() {
		word.RegistrationDate = s.now()
	}
	return words.Save(ctx, word)
}

func (s *WordService) attachTranslations(ctx context.Context, word *domain.Word) error {
	translations, err := s.translations.TranslationsOf(ctx, word.ID)
	if err != nil {
		return err
	}
	word.Translations = translations
	return nil
}

// inTx runs fn in a new transaction, committing when it returns nil and
// rolling back otherwise
func (s *WordService) inTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
