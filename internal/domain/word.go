package domain

import (
	"errors"
	"time"
)

var (
	// ErrWordNotFound is returned by operations that require an existing word
	ErrWordNotFound = errors.New("word not found")
	// ErrTranslationNotFound is returned when a word has no translation with the given name
	ErrTranslationNotFound = errors.New("translation not found")
)

// Word represents a vocabulary entry with its translations
type Word struct {
	ID               int
	Name             string
	Progress         int
	RegistrationDate time.Time
	Translations     []Translation
}

// Translation is one rendering of a word in the target language
type Translation struct {
	ID               int
	Name             string
	RegistrationDate time.Time
	WordID           int
}

// WordDTO is the word shape returned by the remote lookup service.
// It is never persisted directly.
type WordDTO struct {
	Name         string   `json:"name"`
	Translations []string `json:"translations"`
}

// TranslationNames returns the names of the word's translations in order
func (w *Word) TranslationNames() []string {
	names := make([]string, 0, len(w.Translations))
	for _, t := range w.Translations {
		names = append(names, t.Name)
	}
	return names
}

// FindTranslation returns the translation with exactly the given name
func (w *Word) FindTranslation(name string) (*Translation, bool) {
	for i := range w.Translations {
		if w.Translations[i].Name == name {
			return &w.Translations[i], true
		}
	}
	return nil, false
}
