package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gendata/gendata-api/internal/models"
	"github.com/gendata/gendata-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory UserStore. failLogins makes writes for those logins fail.
type memStore struct {
	mu         sync.Mutex
	nextID     uint
	byID       map[uint]models.User
	failLogins map[string]error
	lookupErr  error
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[uint]models.User), failLogins: make(map[string]error)}
}

func (m *memStore) GetByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) GetByLogin(_ context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	for _, u := range m.byID {
		if u.Login == login {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) List(_ context.Context, offset, limit int) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uint, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.User, 0)
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.byID[ids[i]])
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failLogins[u.Login]; err != nil {
		return err
	}
	for _, existing := range m.byID {
		if existing.Login == u.Login {
			return store.ErrDuplicateLogin
		}
	}
	if err := u.BeforeSave(nil); err != nil {
		return err
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = *u
	return nil
}

func (m *memStore) Save(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failLogins[u.Login]; err != nil {
		return err
	}
	if _, ok := m.byID[u.ID]; !ok {
		return store.ErrNotFound
	}
	if err := u.BeforeSave(nil); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = *u
	return nil
}

func (m *memStore) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memStore) mustGet(login string) models.User {
	u, err := m.GetByLogin(context.Background(), login)
	if err != nil {
		panic(err)
	}
	return *u
}

func testHasher() *BcryptHasher {
	return &BcryptHasher{Cost: bcrypt.MinCost}
}
