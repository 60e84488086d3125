package testutil

import (
	"context"

	"dictionary/internal/domain"
	"dictionary/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockWordRepository is a mock for WordRepository
type MockWordRepository struct {
	mock.Mock
}

func (m *MockWordRepository) FindByID(ctx context.Context, id int) (*domain.Word, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Word), args.Error(1)
}

func (m *MockWordRepository) FindByName(ctx context.Context, name string) (*domain.Word, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Word), args.Error(1)
}

func (m *MockWordRepository) FindAll(ctx context.Context) ([]domain.Word, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Word), args.Error(1)
}

func (m *MockWordRepository) Save(ctx context.Context, word *domain.Word) error {
	args := m.Called(ctx, word)
	return args.Error(0)
}

func (m *MockWordRepository) DeleteByID(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWordRepository) LockName(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockTranslationRepository is a mock for TranslationRepository
type MockTranslationRepository struct {
	mock.Mock
}

func (m *MockTranslationRepository) Save(ctx context.Context, translation *domain.Translation) error {
	args := m.Called(ctx, translation)
	return args.Error(0)
}

func (m *MockTranslationRepository) FindByWordID(ctx context.Context, wordID int) ([]domain.Translation, error) {
	args := m.Called(ctx, wordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Translation), args.Error(1)
}

func (m *MockTranslationRepository) FindByWordIDs(ctx context.Context, wordIDs []int) (map[int][]domain.Translation, error) {
	args := m.Called(ctx, wordIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int][]domain.Translation), args.Error(1)
}

func (m *MockTranslationRepository) DeleteByID(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTranslationRepository) DeleteByWordID(ctx context.Context, wordID int) error {
	args := m.Called(ctx, wordID)
	return args.Error(0)
}

// MockTx is a mock for Tx. Words and Translations return the embedded repositories.
type MockTx struct {
	mock.Mock
	WordRepo        *MockWordRepository
	TranslationRepo *MockTranslationRepository
}

func (m *MockTx) Words() repository.WordRepository {
	return m.WordRepo
}

func (m *MockTx) Translations() repository.TranslationRepository {
	return m.TranslationRepo
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockStore is a mock for Store
type MockStore struct {
	mock.Mock
	WordRepo        *MockWordRepository
	TranslationRepo *MockTranslationRepository
}

// NewMockStore creates a store mock whose repositories are also mocks
func NewMockStore() *MockStore {
	return &MockStore{
		WordRepo:        new(MockWordRepository),
		TranslationRepo: new(MockTranslationRepository),
	}
}

func (m *MockStore) Words() repository.WordRepository {
	return m.WordRepo
}

func (m *MockStore) Translations() repository.TranslationRepository {
	return m.TranslationRepo
}

func (m *MockStore) Begin(ctx context.Context) (repository.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.Tx), args.Error(1)
}

// MockWordAdder is a mock for remote.WordAdder
type MockWordAdder struct {
	mock.Mock
}

func (m *MockWordAdder) AddWord(ctx context.Context, name string, translations []string) (bool, error) {
	args := m.Called(ctx, name, translations)
	return args.Bool(0), args.Error(1)
}
