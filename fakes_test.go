package kermesse_test

import (
	"context"
	"database/sql"
	"sync"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	kermesse "github.com/kermesse/go-kermesse"
	"github.com/uptrace/bun"
)

// The fakes embed the repository interfaces so only the methods a test
// exercises need real bodies; anything else panics loudly.

type fakeRepo struct {
	kermesse.RepositoryManager

	admins       *fakeAdmins
	agents       *fakeAgents
	participants *fakeParticipants
	products     *fakeProducts
	orders       *fakeOrders
	recharges    *fakeRecharges
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		admins:       &fakeAdmins{byEmail: map[string]*kermesse.Admin{}, byID: map[string]*kermesse.Admin{}},
		agents:       &fakeAgents{byEmail: map[string]*kermesse.Agent{}, byID: map[string]*kermesse.Agent{}},
		participants: &fakeParticipants{byBadge: map[string]*kermesse.Participant{}, byID: map[string]*kermesse.Participant{}},
		products:     &fakeProducts{},
		orders:       &fakeOrders{},
		recharges:    &fakeRecharges{},
	}
}

func (f *fakeRepo) Admins() repository.Repository[*kermesse.Admin] { return f.admins }
func (f *fakeRepo) Agents() kermesse.Agents                        { return f.agents }
func (f *fakeRepo) Participants() kermesse.Participants            { return f.participants }
func (f *fakeRepo) Products() kermesse.Products                    { return f.products }
func (f *fakeRepo) Orders() kermesse.Orders                        { return f.orders }
func (f *fakeRepo) Recharges() kermesse.Recharges                  { return f.recharges }

func (f *fakeRepo) RunInTx(ctx context.Context, _ *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

type fakeAdmins struct {
	repository.Repository[*kermesse.Admin]
	byEmail map[string]*kermesse.Admin
	byID    map[string]*kermesse.Admin
}

func (f *fakeAdmins) add(record *kermesse.Admin) {
	f.byEmail[record.Email] = record
	f.byID[record.ID.String()] = record
}

func (f *fakeAdmins) GetByIdentifier(_ context.Context, identifier string, _ ...repository.SelectCriteria) (*kermesse.Admin, error) {
	if record, ok := f.byEmail[identifier]; ok {
		return record, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeAdmins) GetByID(_ context.Context, id string, _ ...repository.SelectCriteria) (*kermesse.Admin, error) {
	if record, ok := f.byID[id]; ok {
		return record, nil
	}
	return nil, repository.NewRecordNotFound()
}

type fakeAgents struct {
	kermesse.Agents
	mu      sync.Mutex
	byEmail map[string]*kermesse.Agent
	byID    map[string]*kermesse.Agent

	attempts  int
	successes int
	rotated   []string
	getErr    error
}

func (f *fakeAgents) add(record *kermesse.Agent) {
	f.byEmail[record.Email] = record
	f.byID[record.ID.String()] = record
}

func (f *fakeAgents) GetByIdentifier(_ context.Context, identifier string, _ ...repository.SelectCriteria) (*kermesse.Agent, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if record, ok := f.byEmail[identifier]; ok {
		return record, nil
	}
	return nil, kermesse.ErrActorNotFound
}

func (f *fakeAgents) GetByID(_ context.Context, id string, _ ...repository.SelectCriteria) (*kermesse.Agent, error) {
	if record, ok := f.byID[id]; ok {
		return record, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeAgents) CreateTx(_ context.Context, _ bun.IDB, record *kermesse.Agent, _ ...repository.InsertCriteria) (*kermesse.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.byEmail[record.Email] = record
	f.byID[record.ID.String()] = record
	return record, nil
}

func (f *fakeAgents) TrackAttemptedLogin(_ context.Context, agent *kermesse.Agent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	agent.LoginAttempts++
	return nil
}

func (f *fakeAgents) TrackSuccessfulLogin(_ context.Context, agent *kermesse.Agent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes++
	agent.LoginAttempts = 0
	return nil
}

func (f *fakeAgents) RotatePasswordTx(_ context.Context, _ bun.IDB, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotated = append(f.rotated, id.String())
	if record, ok := f.byID[id.String()]; ok {
		record.PasswordHash = passwordHash
		record.MustChangePassword = false
	}
	return nil
}

type fakeParticipants struct {
	kermesse.Participants
	byBadge map[string]*kermesse.Participant
	byID    map[string]*kermesse.Participant
}

func (f *fakeParticipants) add(record *kermesse.Participant) {
	f.byBadge[record.BadgeCode] = record
	f.byID[record.ID.String()] = record
}

func (f *fakeParticipants) GetByBadge(_ context.Context, badgeCode string) (*kermesse.Participant, error) {
	if record, ok := f.byBadge[badgeCode]; ok {
		return record, nil
	}
	return nil, kermesse.ErrActorNotFound
}

func (f *fakeParticipants) GetByID(_ context.Context, id string, _ ...repository.SelectCriteria) (*kermesse.Participant, error) {
	if record, ok := f.byID[id]; ok {
		return record, nil
	}
	return nil, repository.NewRecordNotFound()
}

type fakeProducts struct {
	kermesse.Products
	mu      sync.Mutex
	records []*kermesse.Product
	listErr error
}

func (f *fakeProducts) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*kermesse.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*kermesse.Product, 0, len(f.records))
	for _, record := range f.records {
		if record.EventID == eventID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, record *kermesse.Product) (*kermesse.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, record *kermesse.Product) (*kermesse.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.records {
		if existing.ID == record.ID {
			f.records[i] = record
			return record, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeProducts) SoftDeleteProduct(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.records {
		if existing.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return repository.NewRecordNotFound()
}

type fakeOrders struct {
	kermesse.Orders
	mu      sync.Mutex
	records []*kermesse.Order
	listErr error
}

func (f *fakeOrders) ListByAgent(_ context.Context, agentID uuid.UUID) ([]*kermesse.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*kermesse.Order, 0, len(f.records))
	for _, record := range f.records {
		if record.AgentID == agentID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByParticipant(_ context.Context, participantID uuid.UUID) ([]*kermesse.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*kermesse.Order, 0, len(f.records))
	for _, record := range f.records {
		if record.ParticipantID == participantID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeOrders) CreateOrder(_ context.Context, record *kermesse.Order) (*kermesse.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.records = append(f.records, record)
	return record, nil
}

type fakeRecharges struct {
	kermesse.Recharges
	mu      sync.Mutex
	records []*kermesse.Recharge
	listErr error
}

func (f *fakeRecharges) ListByAgent(_ context.Context, agentID uuid.UUID) ([]*kermesse.Recharge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*kermesse.Recharge, 0, len(f.records))
	for _, record := range f.records {
		if record.AgentID == agentID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeRecharges) ListByParticipant(_ context.Context, participantID uuid.UUID) ([]*kermesse.Recharge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*kermesse.Recharge, 0, len(f.records))
	for _, record := range f.records {
		if record.ParticipantID == participantID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeRecharges) CreateRecharge(_ context.Context, record *kermesse.Recharge) (*kermesse.Recharge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.records = append(f.records, record)
	return record, nil
}
