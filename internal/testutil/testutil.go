package testutil

import (
	"time"

	"dictionary/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestWord creates a test word with translations linked to it
func NewTestWord(id int, name string, translations ...string) *domain.Word {
	word := &domain.Word{
		ID:               id,
		Name:             name,
		RegistrationDate: time.Now(),
	}
	for i, t := range translations {
		word.Translations = append(word.Translations, domain.Translation{
			ID:               id*100 + i + 1,
			Name:             t,
			RegistrationDate: time.Now(),
			WordID:           id,
		})
	}
	return word
}
