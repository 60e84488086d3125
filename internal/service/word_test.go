package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dictionary/internal/domain"
	"dictionary/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testProgressStep = 5

func newMemoryWordService(store *testutil.MemoryStore) *WordService {
	return NewWordService(
		store,
		NewTranslationService(store.Translations()),
		testProgressStep,
		testutil.NewTestLogger(),
	)
}

func TestWordService_AddWord_NewWord(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	added, err := service.AddWord(ctx, "cat", []string{"кот"})
	require.NoError(t, err)
	assert.True(t, added)

	word, err := service.FindByName(ctx, "cat")
	require.NoError(t, err)
	require.NotNil(t, word)
	assert.Equal(t, 0, word.Progress)
	assert.False(t, word.RegistrationDate.IsZero())
	require.Len(t, word.Translations, 1)
	assert.Equal(t, "кот", word.Translations[0].Name)
	assert.Equal(t, word.ID, word.Translations[0].WordID)
	assert.False(t, word.Translations[0].RegistrationDate.IsZero())
	assert.Equal(t, 1, store.Commits)
}

func TestWordService_AddWord_Duplicate(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	added, err := service.AddWord(ctx, "cat", []string{"кот"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = service.AddWord(ctx, "cat", []string{"кошка"})
	require.NoError(t, err)
	assert.False(t, added)

	names, err := service.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, names)
	assert.Equal(t, 1, store.TranslationCount())
}

func TestWordService_AddWord_TranslationFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	store.FailTranslationSave = fmt.Errorf("disk full")
	service := newMemoryWordService(store)

	added, err := service.AddWord(ctx, "cat", []string{"кот"})

	assert.Error(t, err)
	assert.False(t, added)
	assert.Equal(t, 0, store.WordCount())
	assert.Equal(t, 0, store.Commits)
	assert.Equal(t, 1, store.Rollbacks)
}

func TestWordService_AddWord_ConcurrentSameName(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	const callers = 8
	results := make([]bool, callers)
	errs := make([]error, callers)

	var start, wg sync.WaitGroup
	start.Add(1)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start.Wait()
			results[i], errs[i] = service.AddWord(ctx, "dog", []string{"пёс", "собака"})
		}(i)
	}
	start.Done()
	wg.Wait()

	added := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		if results[i] {
			added++
		}
	}

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, store.WordCount())
	assert.Equal(t, 2, store.TranslationCount())

	dog, err := service.FindByName(ctx, "dog")
	require.NoError(t, err)
	require.NotNil(t, dog)
	assert.Equal(t, []string{"пёс", "собака"}, dog.TranslationNames())
}

func TestWordService_AddWord_LockError(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMockStore()
	tx := &testutil.MockTx{
		WordRepo:        new(testutil.MockWordRepository),
		TranslationRepo: new(testutil.MockTranslationRepository),
	}

	store.On("Begin", ctx).Return(tx, nil)
	tx.WordRepo.On("LockName", ctx, "cat").Return(fmt.Errorf("lock timeout"))
	tx.On("Rollback").Return(nil)

	service := NewWordService(store, NewTranslationService(store.TranslationRepo), testProgressStep, testutil.NewTestLogger())

	added, err := service.AddWord(ctx, "cat", nil)

	assert.Error(t, err)
	assert.False(t, added)
	tx.WordRepo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "Commit")
	tx.AssertExpectations(t)
}

func TestWordService_AddWord_LookupError(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMockStore()
	tx := &testutil.MockTx{
		WordRepo:        new(testutil.MockWordRepository),
		TranslationRepo: new(testutil.MockTranslationRepository),
	}

	store.On("Begin", ctx).Return(tx, nil)
	tx.WordRepo.On("LockName", ctx, "cat").Return(nil)
	tx.WordRepo.On("FindByName", ctx, "cat").Return(nil, fmt.Errorf("db error"))
	tx.On("Rollback").Return(nil)

	service := NewWordService(store, NewTranslationService(store.TranslationRepo), testProgressStep, testutil.NewTestLogger())

	added, err := service.AddWord(ctx, "cat", []string{"кот"})

	assert.Error(t, err)
	assert.False(t, added)
	tx.AssertNotCalled(t, "Commit")
	tx.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestWordService_AddWord_CommitError(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMockStore()
	tx := &testutil.MockTx{
		WordRepo:        new(testutil.MockWordRepository),
		TranslationRepo: new(testutil.MockTranslationRepository),
	}

	store.On("Begin", ctx).Return(tx, nil)
	tx.WordRepo.On("LockName", ctx, "cat").Return(nil)
	tx.WordRepo.On("FindByName", ctx, "cat").Return(nil, nil)
	tx.WordRepo.On("Save", ctx, mock.AnythingOfType("*domain.Word")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Word).ID = 1
	}).Return(nil).Twice()
	tx.TranslationRepo.On("Save", ctx, mock.AnythingOfType("*domain.Translation")).Return(nil).Once()
	tx.On("Commit").Return(fmt.Errorf("serialization failure"))
	tx.On("Rollback").Return(nil)

	service := NewWordService(store, NewTranslationService(store.TranslationRepo), testProgressStep, testutil.NewTestLogger())

	added, err := service.AddWord(ctx, "cat", []string{"кот"})

	assert.Error(t, err)
	assert.False(t, added)
	tx.AssertExpectations(t)
	tx.WordRepo.AssertExpectations(t)
	tx.TranslationRepo.AssertExpectations(t)
	// writes went through the transaction, never through the store directly
	store.TranslationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestWordService_FindByID(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	_, err := service.AddWord(ctx, "dog", []string{"пёс", "собака"})
	require.NoError(t, err)

	tests := []struct {
		name         string
		id           int
		expectedNil  bool
		translations []string
	}{
		{
			name:         "existing word",
			id:           1,
			expectedNil:  false,
			translations: []string{"пёс", "собака"},
		},
		{
			name:        "missing word",
			id:          99,
			expectedNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, err := service.FindByID(ctx, tt.id)
			assert.NoError(t, err)
			if tt.expectedNil {
				assert.Nil(t, word)
				return
			}
			require.NotNil(t, word)
			assert.Equal(t, tt.translations, word.TranslationNames())

			alias, err := service.GetWordByID(ctx, tt.id)
			assert.NoError(t, err)
			assert.Equal(t, word.ID, alias.ID)
		})
	}
}

func TestWordService_FindByID_RepositoryError(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMockStore()
	store.WordRepo.On("FindByID", ctx, 1).Return(nil, fmt.Errorf("db error"))

	service := NewWordService(store, NewTranslationService(store.TranslationRepo), testProgressStep, testutil.NewTestLogger())

	word, err := service.FindByID(ctx, 1)

	assert.Error(t, err)
	assert.Nil(t, word)
	store.TranslationRepo.AssertNotCalled(t, "FindByWordID", mock.Anything, mock.Anything)
}

func TestWordService_FindAllAndListNames(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	for _, name := range []string{"cat", "dog", "bird"} {
		_, err := service.AddWord(ctx, name, []string{name + "-ru"})
		require.NoError(t, err)
	}

	words, err := service.FindAll(ctx)
	require.NoError(t, err)
	names, err := service.ListNames(ctx)
	require.NoError(t, err)

	require.Len(t, words, len(names))
	for i, w := range words {
		assert.Equal(t, w.Name, names[i])
		assert.Equal(t, []string{w.Name + "-ru"}, w.TranslationNames())
	}
	assert.Equal(t, []string{"cat", "dog", "bird"}, names)
}

func TestWordService_ListNames_Empty(t *testing.T) {
	service := newMemoryWordService(testutil.NewMemoryStore())

	names, err := service.ListNames(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestWordService_ContainsName(t *testing.T) {
	ctx := context.Background()
	service := newMemoryWordService(testutil.NewMemoryStore())

	_, err := service.AddWord(ctx, "cat", nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "exact match", input: "cat", expected: true},
		{name: "different case", input: "Cat", expected: false},
		{name: "prefix only", input: "ca", expected: false},
		{name: "unknown", input: "dog", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contains, err := service.ContainsName(ctx, tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, contains)
		})
	}
}

func TestWordService_Save(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	word := &domain.Word{ID: 17, Name: "sun"}
	require.NoError(t, service.Save(ctx, word))

	found, err := service.FindByID(ctx, 17)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, fixed, found.RegistrationDate)

	// an existing timestamp is kept
	earlier := fixed.Add(-time.Hour)
	word = &domain.Word{Name: "moon", RegistrationDate: earlier}
	require.NoError(t, service.Save(ctx, word))
	assert.Equal(t, earlier, word.RegistrationDate)
	assert.NotZero(t, word.ID)
}

func TestWordService_Save_CommitErrorKeepsWord(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMockStore()
	tx := &testutil.MockTx{
		WordRepo:        new(testutil.MockWordRepository),
		TranslationRepo: new(testutil.MockTranslationRepository),
	}

	store.On("Begin", ctx).Return(tx, nil)
	tx.WordRepo.On("Save", ctx, mock.AnythingOfType("*domain.Word")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Word).ID = 42
	}).Return(nil)
	tx.On("Commit").Return(fmt.Errorf("connection reset"))
	tx.On("Rollback").Return(nil)

	service := NewWordService(store, NewTranslationService(store.TranslationRepo), testProgressStep, testutil.NewTestLogger())

	word := &domain.Word{Name: "sun"}
	err := service.Save(ctx, word)

	assert.Error(t, err)
	assert.Zero(t, word.ID)
	assert.True(t, word.RegistrationDate.IsZero())
	tx.AssertExpectations(t)
}

func TestWordService_Edit(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	_, err := service.AddWord(ctx, "colour", nil)
	require.NoError(t, err)
	original, err := service.FindByName(ctx, "colour")
	require.NoError(t, err)

	replacement := &domain.Word{Name: "color", Progress: 3, RegistrationDate: original.RegistrationDate}
	require.NoError(t, service.Edit(ctx, replacement, original.ID))

	found, err := service.FindByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "color", found.Name)
	assert.Equal(t, 3, found.Progress)
	assert.Equal(t, 1, store.WordCount())
}

func TestWordService_ChangeName(t *testing.T) {
	ctx := context.Background()
	service := newMemoryWordService(testutil.NewMemoryStore())

	_, err := service.AddWord(ctx, "teh", []string{"the"})
	require.NoError(t, err)
	word, err := service.FindByName(ctx, "teh")
	require.NoError(t, err)

	require.NoError(t, service.ChangeName(ctx, "the", word))
	assert.Equal(t, "the", word.Name)

	contains, err := service.ContainsName(ctx, "teh")
	require.NoError(t, err)
	assert.False(t, contains)

	renamed, err := service.FindByName(ctx, "the")
	require.NoError(t, err)
	assert.Equal(t, word.ID, renamed.ID)
	assert.Equal(t, []string{"the"}, renamed.TranslationNames())
}

func TestWordService_DeleteWord_CascadesTranslations(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	_, err := service.AddWord(ctx, "dog", []string{"пёс", "собака"})
	require.NoError(t, err)
	_, err = service.AddWord(ctx, "cat", []string{"кот"})
	require.NoError(t, err)

	dog, err := service.FindByName(ctx, "dog")
	require.NoError(t, err)

	require.NoError(t, service.DeleteWord(ctx, dog.ID))

	found, err := service.FindByID(ctx, dog.ID)
	assert.NoError(t, err)
	assert.Nil(t, found)
	assert.Equal(t, 1, store.WordCount())
	assert.Equal(t, 1, store.TranslationCount())

	// deleting a missing word is not an error
	assert.NoError(t, service.DeleteWord(ctx, 404))
}

func TestWordService_DeleteOneTranslation(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	_, err := service.AddWord(ctx, "dog", []string{"пёс", "собака"})
	require.NoError(t, err)
	dog, err := service.FindByName(ctx, "dog")
	require.NoError(t, err)

	tests := []struct {
		name        string
		wordID      int
		translation string
		expectedErr error
		remaining   []string
	}{
		{
			name:        "missing word",
			wordID:      999,
			translation: "пёс",
			expectedErr: domain.ErrWordNotFound,
			remaining:   []string{"пёс", "собака"},
		},
		{
			name:        "missing translation",
			wordID:      dog.ID,
			translation: "кот",
			expectedErr: domain.ErrTranslationNotFound,
			remaining:   []string{"пёс", "собака"},
		},
		{
			name:        "existing translation",
			wordID:      dog.ID,
			translation: "пёс",
			expectedErr: nil,
			remaining:   []string{"собака"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.DeleteOneTranslation(ctx, tt.wordID, tt.translation)
			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr), "unexpected error: %v", err)
			} else {
				assert.NoError(t, err)
			}

			word, err := service.FindByID(ctx, dog.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.remaining, word.TranslationNames())
		})
	}
}

func TestWordService_AddOneTranslation(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	service := newMemoryWordService(store)

	_, err := service.AddWord(ctx, "cat", []string{"кот"})
	require.NoError(t, err)

	require.NoError(t, service.AddOneTranslation(ctx, "cat", "кошка"))

	word, err := service.FindByName(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"кот", "кошка"}, word.TranslationNames())

	err = service.AddOneTranslation(ctx, "mouse", "мышь")
	assert.True(t, errors.Is(err, domain.ErrWordNotFound))
	assert.Equal(t, 2, store.TranslationCount())
}

func TestWordService_Progress(t *testing.T) {
	ctx := context.Background()
	service := newMemoryWordService(testutil.NewMemoryStore())

	_, err := service.AddWord(ctx, "cat", nil)
	require.NoError(t, err)
	word, err := service.FindByName(ctx, "cat")
	require.NoError(t, err)

	require.NoError(t, service.IncreaseProgress(ctx, word))
	assert.Equal(t, testProgressStep, word.Progress)

	require.NoError(t, service.DecreaseProgress(ctx, word))
	assert.Equal(t, 0, word.Progress)

	// no floor
	require.NoError(t, service.DecreaseProgress(ctx, word))
	assert.Equal(t, -testProgressStep, word.Progress)

	stored, err := service.FindByID(ctx, word.ID)
	require.NoError(t, err)
	assert.Equal(t, -testProgressStep, stored.Progress)
}

func TestWordService_Progress_SaveErrorKeepsWord(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMockStore()
	tx := &testutil.MockTx{
		WordRepo:        new(testutil.MockWordRepository),
		TranslationRepo: new(testutil.MockTranslationRepository),
	}

	store.On("Begin", ctx).Return(tx, nil)
	tx.WordRepo.On("Save", ctx, mock.AnythingOfType("*domain.Word")).Return(fmt.Errorf("db error"))
	tx.On("Rollback").Return(nil)

	service := NewWordService(store, NewTranslationService(store.TranslationRepo), testProgressStep, testutil.NewTestLogger())

	word := testutil.NewTestWord(1, "cat")
	word.Progress = 10

	err := service.IncreaseProgress(ctx, word)

	assert.Error(t, err)
	assert.Equal(t, 10, word.Progress)
	tx.AssertExpectations(t)
}

func TestWordService_BeginError(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMockStore()
	store.On("Begin", ctx).Return(nil, fmt.Errorf("pool exhausted"))

	service := NewWordService(store, NewTranslationService(store.TranslationRepo), testProgressStep, testutil.NewTestLogger())

	err := service.DeleteWord(ctx, 1)

	assert.Error(t, err)
	store.AssertExpectations(t)
}
