package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prefeitura-rio/app-matriculas/internal/models"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakePersonStore is an in-memory PersonStore that enforces the same
// CPF uniqueness as the partial unique index.
type fakePersonStore struct {
	mu     sync.Mutex
	people map[primitive.ObjectID]models.Person

	err error
	// hideNextLookup makes the next FindByCPF miss, as if another writer
	// inserted between the check and the write
	hideNextLookup bool

	findCalls   int
	insertCalls int
	getCalls    int
	getDelay    time.Duration

	// beforeGet and afterGet run outside the lock around each Get
	beforeGet func()
	afterGet  func()
}

func newFakePersonStore() *fakePersonStore {
	return &fakePersonStore{people: make(map[primitive.ObjectID]models.Person)}
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: matriculas.people index: cpf_unique",
		}},
	}
}

func (f *fakePersonStore) seed(name, tenantID string, cpf *string) models.Person {
	f.mu.Lock()
	defer f.mu.Unlock()
	person := models.Person{
		ID:       primitive.NewObjectID(),
		TenantID: tenantID,
		Name:     name,
		Kind:     models.PersonKindGuardian,
		CPF:      cpf,
	}
	person.BeforeCreate()
	f.people[person.ID] = person
	return person
}

func (f *fakePersonStore) cpfTaken(cpf *string, self primitive.ObjectID) bool {
	if cpf == nil {
		return false
	}
	for id, other := range f.people {
		if id != self && other.CPF != nil && *other.CPF == *cpf {
			return true
		}
	}
	return false
}

func (f *fakePersonStore) Insert(ctx context.Context, person *models.Person) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.err != nil {
		return f.err
	}
	if person.ID.IsZero() {
		person.ID = primitive.NewObjectID()
	}
	if f.cpfTaken(person.CPF, person.ID) {
		return duplicateKeyError()
	}
	f.people[person.ID] = *person
	return nil
}

func (f *fakePersonStore) Update(ctx context.Context, person *models.Person) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.people[person.ID]; !ok {
		return models.ErrPersonNotFound
	}
	if f.cpfTaken(person.CPF, person.ID) {
		return duplicateKeyError()
	}
	f.people[person.ID] = *person
	return nil
}

func (f *fakePersonStore) FindByCPF(ctx context.Context, cpf string, excludeID primitive.ObjectID) (*models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.hideNextLookup {
		f.hideNextLookup = false
		return nil, nil
	}
	for id, person := range f.people {
		if id == excludeID {
			continue
		}
		if person.CPF != nil && *person.CPF == cpf {
			found := person
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakePersonStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Person, error) {
	if f.beforeGet != nil {
		f.beforeGet()
	}
	if f.getDelay > 0 {
		time.Sleep(f.getDelay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.getCalls++
	if f.err != nil {
		f.mu.Unlock()
		return nil, f.err
	}
	person, ok := f.people[id]
	f.mu.Unlock()

	if !ok {
		return nil, models.ErrPersonNotFound
	}
	if f.afterGet != nil {
		f.afterGet()
	}
	return &person, nil
}

func (f *fakePersonStore) List(ctx context.Context, tenantID string, page, perPage int) ([]models.Person, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	var matched []models.Person
	for _, person := range f.people {
		if person.TenantID == tenantID {
			matched = append(matched, person)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.Timestamp().After(matched[j].ID.Timestamp()) ||
			(matched[i].ID.Timestamp().Equal(matched[j].ID.Timestamp()) && matched[i].ID.Hex() > matched[j].ID.Hex())
	})
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

func (f *fakePersonStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.people[id]; !ok {
		return models.ErrPersonNotFound
	}
	delete(f.people, id)
	return nil
}

func (f *fakePersonStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.people)
}

// fakeCache is a map-backed CacheClient
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return redis.NewStringResult("", c.err)
	}
	value, ok := c.entries[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return redis.NewStatusResult("", c.err)
	}
	switch v := value.(type) {
	case []byte:
		c.entries[key] = string(v)
	case string:
		c.entries[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	var deleted int64
	for _, key := range keys {
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, c.err)
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
