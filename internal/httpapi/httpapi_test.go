package httpapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shopauth.org/internal/auth"
	"shopauth.org/internal/credential"
	"shopauth.org/internal/identity"
	"shopauth.org/internal/token"
)

// memStore is an in-memory credential.Store for handler tests.
type memStore struct {
	mu    sync.Mutex
	byKey map[string]*credential.Credential
}

func newMemStore() *memStore {
	return &memStore{byKey: make(map[string]*credential.Credential)}
}

func (m *memStore) Create(_ context.Context, c *credential.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byKey[c.Email]; ok {
		return credential.ErrAlreadyExists
	}
	cp := *c
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	m.byKey[c.Email] = &cp
	return nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*credential.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byKey[email]
	if !ok {
		return nil, credential.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdatePassword(_ context.Context, email, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byKey[email]
	if !ok {
		return credential.ErrNotFound
	}
	c.PasswordHash = hash
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStore) Deactivate(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byKey[email]
	if !ok {
		return credential.ErrNotFound
	}
	c.Active = false
	return nil
}

// fakeResolver is an in-memory identity.Resolver.
type fakeResolver struct {
	mu      sync.Mutex
	byEmail map[string]*identity.Identity
	nextID  int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{byEmail: make(map[string]*identity.Identity)}
}

func (f *fakeResolver) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeResolver) GetByEmail(_ context.Context, email string) (*identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return nil, identity.ErrNotFound
	}
	cp := *id
	return &cp, nil
}

func (f *fakeResolver) GetByID(_ context.Context, id string) (*identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.byEmail {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, identity.ErrNotFound
}

func (f *fakeResolver) Create(_ context.Context, in identity.NewIdentity) (*identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[in.Email]; ok {
		return nil, identity.ErrConflict
	}
	f.nextID++
	id := &identity.Identity{
		ID:        fmt.Sprintf("user-%d", f.nextID),
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Active:    true,
		Roles:     []string{"user"},
	}
	f.byEmail[in.Email] = id
	cp := *id
	return &cp, nil
}

func (f *fakeResolver) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, v := range f.byEmail {
		if v.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return identity.ErrNotFound
}

func newTestAPI() *API {
	codec, err := token.NewCodec("test-secret", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		panic(err)
	}
	svc := auth.NewService(codec, credential.NewService(newMemStore()), newFakeResolver())
	return New(svc, ReadyProbeFunc(func(context.Context) error { return nil }), "test")
}

var errProbeDown = errors.New("database unreachable")
