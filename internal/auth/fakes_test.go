package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

type memoryStore struct {
	mu         sync.Mutex
	candidates map[string]*domain.Candidate
	hrs        map[string]*domain.HRAccount
	inserts    int

	// lookupFailures makes the next n candidate lookups fail as unavailable
	lookupFailures int
	lookups        int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		candidates: map[string]*domain.Candidate{},
		hrs:        map[string]*domain.HRAccount{},
	}
}

func (m *memoryStore) GetCandidateByEmail(_ context.Context, email string) (*domain.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups++
	if m.lookupFailures > 0 {
		m.lookupFailures--
		return nil, fmt.Errorf("%w: connection reset", domain.ErrStorageUnavailable)
	}

	c, ok := m.candidates[email]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryStore) GetHRByEmail(_ context.Context, email string) (*domain.HRAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hrs[email]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *memoryStore) CreateCandidate(_ context.Context, c *domain.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.candidates[c.Email]; ok {
		return fmt.Errorf("%w: candidates_email_key", domain.ErrEmailTaken)
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	cp := *c
	m.candidates[c.Email] = &cp
	m.inserts++
	return nil
}

func (m *memoryStore) CreateHR(_ context.Context, h *domain.HRAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.hrs[h.Email]; ok {
		return fmt.Errorf("%w: hr_accounts_email_key", domain.ErrEmailTaken)
	}
	h.ID = uuid.NewString()
	h.CreatedAt = time.Now()
	cp := *h
	m.hrs[h.Email] = &cp
	m.inserts++
	return nil
}

func (m *memoryStore) addCandidate(email, first, last string) *domain.Candidate {
	c := &domain.Candidate{Email: email, FirstName: first, LastName: last}
	_ = m.CreateCandidate(context.Background(), c)
	return c
}

func (m *memoryStore) addHR(email string, scope domain.Scope) *domain.HRAccount {
	h := &domain.HRAccount{Email: email, FirstName: "Asha", LastName: "Rao", Scope: scope, Designation: "Recruiter"}
	_ = m.CreateHR(context.Background(), h)
	return h
}

type memoryLedger struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{seen: map[string]bool{}}
}

func (l *memoryLedger) Consume(_ context.Context, nonce string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return false, l.err
	}
	if l.seen[nonce] {
		return false, nil
	}
	l.seen[nonce] = true
	return true, nil
}
