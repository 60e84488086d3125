package repository

import (
	"context"

	"dictionary/internal/domain"
)

// WordRepository defines word data operations
type WordRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Word, error)
	FindByName(ctx context.Context, name string) (*domain.Word, error)
	FindAll(ctx context.Context) ([]domain.Word, error)
	// Save inserts the word when ID is zero and writes the generated ID back,
	// otherwise it upserts by ID
	Save(ctx context.Context, word *domain.Word) error
	DeleteByID(ctx context.Context, id int) error
	// LockName blocks until no other transaction holds the lock for name.
	// The lock is released when the surrounding transaction ends.
	LockName(ctx context.Context, name string) error
}

// TranslationRepository defines translation data operations
type TranslationRepository interface {
	Save(ctx context.Context, translation *domain.Translation) error
	FindByWordID(ctx context.Context, wordID int) ([]domain.Translation, error)
	FindByWordIDs(ctx context.Context, wordIDs []int) (map[int][]domain.Translation, error)
	DeleteByID(ctx context.Context, id int) error
	DeleteByWordID(ctx context.Context, wordID int) error
}

// Tx is a unit of work. Repositories returned by it write inside the transaction.
type Tx interface {
	Words() WordRepository
	Translations() TranslationRepository
	Commit() error
	Rollback() error
}

// Store gives access to repositories outside a transaction and opens new ones
type Store interface {
	Words() WordRepository
	Translations() TranslationRepository
	Begin(ctx context.Context) (Tx, error)
}
