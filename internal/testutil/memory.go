package testutil

import (
	"context"
	"sort"
	"sync"

	"dictionary/internal/domain"
	"dictionary/internal/repository"
)

// MemoryStore is an in-memory repository.Store. Transactions work on a copy
// of the data that replaces the committed state on Commit. LockName must be
// called before the transaction writes: it refreshes the copy once the lock
// is held, the way a new statement sees committed rows in PostgreSQL.
type MemoryStore struct {
	mu        sync.Mutex
	data      *memData
	nameLocks map[string]*sync.Mutex

	// FailTranslationSave, when set, is returned by every translation save
	FailTranslationSave error

	Commits   int
	Rollbacks int
}

type memData struct {
	words             map[int]domain.Word
	translations      map[int]domain.Translation
	nextWordID        int
	nextTranslationID int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: &memData{
			words:             make(map[int]domain.Word),
			translations:      make(map[int]domain.Translation),
			nextWordID:        1,
			nextTranslationID: 1,
		},
		nameLocks: make(map[string]*sync.Mutex),
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		words:             make(map[int]domain.Word, len(d.words)),
		translations:      make(map[int]domain.Translation, len(d.translations)),
		nextWordID:        d.nextWordID,
		nextTranslationID: d.nextTranslationID,
	}
	for id, w := range d.words {
		c.words[id] = w
	}
	for id, t := range d.translations {
		c.translations[id] = t
	}
	return c
}

func (s *MemoryStore) Words() repository.WordRepository {
	return &memWords{data: s.committed}
}

func (s *MemoryStore) nameLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.nameLocks[name]
	if !ok {
		l = &sync.Mutex{}
		s.nameLocks[name] = l
	}
	return l
}

func (s *MemoryStore) Translations() repository.TranslationRepository {
	return &memTranslations{data: s.committed, store: s}
}

func (s *MemoryStore) committed() *memData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *MemoryStore) Begin(ctx context.Context) (repository.Tx, error) {
	return &memTx{store: s, data: s.committed().clone()}, nil
}

// WordCount returns the number of committed words
func (s *MemoryStore) WordCount() int {
	return len(s.committed().words)
}

// TranslationCount returns the number of committed translations
func (s *MemoryStore) TranslationCount() int {
	return len(s.committed().translations)
}

type memTx struct {
	store  *MemoryStore
	data   *memData
	locked []*sync.Mutex
	done   bool
}

func (t *memTx) Words() repository.WordRepository {
	return &memWords{data: t.working, tx: t}
}

func (t *memTx) Translations() repository.TranslationRepository {
	return &memTranslations{data: t.working, store: t.store}
}

func (t *memTx) working() *memData {
	return t.data
}

func (t *memTx) lockName(name string) {
	l := t.store.nameLock(name)
	l.Lock()
	t.locked = append(t.locked, l)
	t.data = t.store.committed().clone()
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true

	t.store.mu.Lock()
	t.store.data = t.data
	t.store.Commits++
	t.store.mu.Unlock()

	t.unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true

	t.store.mu.Lock()
	t.store.Rollbacks++
	t.store.mu.Unlock()

	t.unlock()
	return nil
}

func (t *memTx) unlock() {
	for _, l := range t.locked {
		l.Unlock()
	}
	t.locked = nil
}

type memWords struct {
	data func() *memData
	tx   *memTx
}

func (r *memWords) FindByID(ctx context.Context, id int) (*domain.Word, error) {
	w, ok := r.data().words[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *memWords) FindByName(ctx context.Context, name string) (*domain.Word, error) {
	for _, id := range r.sortedIDs() {
		if w := r.data().words[id]; w.Name == name {
			return &w, nil
		}
	}
	return nil, nil
}

func (r *memWords) FindAll(ctx context.Context) ([]domain.Word, error) {
	var words []domain.Word
	for _, id := range r.sortedIDs() {
		words = append(words, r.data().words[id])
	}
	return words, nil
}

func (r *memWords) Save(ctx context.Context, word *domain.Word) error {
	if word.ID == 0 {
		word.ID = r.data().nextWordID
	}
	if word.ID >= r.data().nextWordID {
		r.data().nextWordID = word.ID + 1
	}
	stored := *word
	stored.Translations = nil
	r.data().words[word.ID] = stored
	return nil
}

func (r *memWords) DeleteByID(ctx context.Context, id int) error {
	delete(r.data().words, id)
	return nil
}

func (r *memWords) LockName(ctx context.Context, name string) error {
	if r.tx != nil {
		r.tx.lockName(name)
	}
	return nil
}

func (r *memWords) sortedIDs() []int {
	ids := make([]int, 0, len(r.data().words))
	for id := range r.data().words {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

type memTranslations struct {
	data  func() *memData
	store *MemoryStore
}

func (r *memTranslations) Save(ctx context.Context, t *domain.Translation) error {
	if r.store.FailTranslationSave != nil {
		return r.store.FailTranslationSave
	}
	if t.ID == 0 {
		t.ID = r.data().nextTranslationID
	}
	if t.ID >= r.data().nextTranslationID {
		r.data().nextTranslationID = t.ID + 1
	}
	r.data().translations[t.ID] = *t
	return nil
}

func (r *memTranslations) FindByWordID(ctx context.Context, wordID int) ([]domain.Translation, error) {
	var list []domain.Translation
	for _, t := range r.sorted() {
		if t.WordID == wordID {
			list = append(list, t)
		}
	}
	return list, nil
}

func (r *memTranslations) FindByWordIDs(ctx context.Context, wordIDs []int) (map[int][]domain.Translation, error) {
	wanted := make(map[int]bool, len(wordIDs))
	for _, id := range wordIDs {
		wanted[id] = true
	}
	result := make(map[int][]domain.Translation)
	for _, t := range r.sorted() {
		if wanted[t.WordID] {
			result[t.WordID] = append(result[t.WordID], t)
		}
	}
	return result, nil
}

func (r *memTranslations) DeleteByID(ctx context.Context, id int) error {
	delete(r.data().translations, id)
	return nil
}

func (r *memTranslations) DeleteByWordID(ctx context.Context, wordID int) error {
	for id, t := range r.data().translations {
		if t.WordID == wordID {
			delete(r.data().translations, id)
		}
	}
	return nil
}

func (r *memTranslations) sorted() []domain.Translation {
	list := make([]domain.Translation, 0, len(r.data().translations))
	for _, t := range r.data().translations {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
