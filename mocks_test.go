package kermesse_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	kermesse "github.com/kermesse/go-kermesse"
	"github.com/stretchr/testify/mock"
)

var mockAnything = mock.Anything

// MockGateway implements kermesse.IdentityGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Exchange(ctx context.Context, actorType kermesse.ActorType, creds kermesse.Credentials) (*kermesse.ExchangeResult, error) {
	args := m.Called(ctx, actorType, creds)
	result, _ := args.Get(0).(*kermesse.ExchangeResult)
	return result, args.Error(1)
}

func (m *MockGateway) FindActor(ctx context.Context, actorType kermesse.ActorType, id uuid.UUID) (*kermesse.ActorSnapshot, error) {
	args := m.Called(ctx, actorType, id)
	actor, _ := args.Get(0).(*kermesse.ActorSnapshot)
	return actor, args.Error(1)
}

// MockLoginPayload implements kermesse.Credentials
type MockLoginPayload struct {
	Identifier string
	Password   string
}

func (m MockLoginPayload) GetIdentifier() string {
	return m.Identifier
}

func (m MockLoginPayload) GetPassword() string {
	return m.Password
}

// failingStorage wraps a real Storage and fails selected operations.
type failingStorage struct {
	inner     kermesse.Storage
	failGet   bool
	failSet   bool
	failOnKey string
	err       error
}

func (s *failingStorage) Get(key string) (string, bool, error) {
	if s.failGet {
		return "", false, s.err
	}
	return s.inner.Get(key)
}

func (s *failingStorage) Set(key, value string) error {
	if s.failSet && (s.failOnKey == "" || s.failOnKey == key) {
		return s.err
	}
	return s.inner.Set(key, value)
}

func (s *failingStorage) Delete(keys ...string) error {
	return s.inner.Delete(keys...)
}

// countingLoader is a LoadFunc that records calls and blocks while gated.
type countingLoader[D any] struct {
	mu    sync.Mutex
	calls int
	data  D
	err   error

	gate    chan struct{}
	started chan struct{}
}

func newCountingLoader[D any](data D) *countingLoader[D] {
	return &countingLoader[D]{data: data}
}

func (l *countingLoader[D]) load(ctx context.Context) (D, error) {
	l.mu.Lock()
	l.calls++
	gate := l.gate
	started := l.started
	data, err := l.data, l.err
	l.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
		// the dataset may have been swapped while we were gated
		l.mu.Lock()
		data, err = l.data, l.err
		l.mu.Unlock()
	}
	return data, err
}

func (l *countingLoader[D]) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *countingLoader[D]) Swap(data D, err error) {
	l.mu.Lock()
	l.data = data
	l.err = err
	l.mu.Unlock()
}

// testActor builds a valid snapshot for the given actor type.
func testActor(actorType kermesse.ActorType, role kermesse.AgentRole) *kermesse.ActorSnapshot {
	eventID := uuid.New()
	return &kermesse.ActorSnapshot{
		ID:      uuid.New(),
		Type:    actorType,
		Name:    "Test Actor",
		Email:   "actor@example.com",
		Role:    role,
		EventID: &eventID,
	}
}
