package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/otp"
	"github.com/jobportal-dev/job-portal/backend/internal/storage"
)

type memoryStore struct {
	mu           sync.Mutex
	candidates   map[string]*domain.Candidate
	hrs          map[string]*domain.HRAccount
	jobs         map[int64]*domain.Job
	applications map[string]*domain.Application
	saved        []*domain.SavedJob
	nextJobID    int64
	nextSavedID  int64

	// failCascadeAt makes the next cascade delete abort at the named step.
	failCascadeAt string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		candidates:   map[string]*domain.Candidate{},
		hrs:          map[string]*domain.HRAccount{},
		jobs:         map[int64]*domain.Job{},
		applications: map[string]*domain.Application{},
	}
}

func (s *memoryStore) GetCandidateByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.candidates {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (s *memoryStore) GetCandidateByID(ctx context.Context, id string) (*domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) CreateCandidate(ctx context.Context, c *domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.candidates {
		if existing.Email == c.Email {
			return fmt.Errorf("%w: candidates_email_key", domain.ErrEmailTaken)
		}
	}
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	c.Version = 1
	cp := *c
	s.candidates[c.ID] = &cp
	return nil
}

func (s *memoryStore) UpdateCandidate(ctx context.Context, c *domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.candidates[c.ID]
	if !ok || stored.Version != c.Version {
		return domain.ErrEditConflict
	}
	c.Version++
	c.UpdatedAt = time.Now()
	cp := *c
	s.candidates[c.ID] = &cp
	return nil
}

func (s *memoryStore) DeleteCandidateCascade(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cascadeFailure(); err != nil {
		return err
	}
	for aid, a := range s.applications {
		if a.CandidateID == id {
			delete(s.applications, aid)
		}
	}
	s.saved = filterSaved(s.saved, func(sj *domain.SavedJob) bool { return sj.CandidateID != id })
	delete(s.candidates, id)
	return nil
}

func (s *memoryStore) EmailRegistered(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.candidates {
		if c.Email == email {
			return true, nil
		}
	}
	for _, h := range s.hrs {
		if h.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) GetHRByEmail(ctx context.Context, email string) (*domain.HRAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.hrs {
		if h.Email == email {
			cp := *h
			return &cp, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (s *memoryStore) GetHRByID(ctx context.Context, id string) (*domain.HRAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hrs[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *h
	return &cp, nil
}

func (s *memoryStore) GetAllHR(ctx context.Context) ([]*domain.HRAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.HRAccount{}
	for _, h := range s.hrs {
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *memoryStore) CreateHR(ctx context.Context, h *domain.HRAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.hrs {
		if existing.Email == h.Email {
			return fmt.Errorf("%w: hr_accounts_email_key", domain.ErrEmailTaken)
		}
	}
	h.ID = uuid.NewString()
	h.CreatedAt, h.UpdatedAt = time.Now(), time.Now()
	h.Version = 1
	cp := *h
	s.hrs[h.ID] = &cp
	return nil
}

func (s *memoryStore) UpdateHR(ctx context.Context, h *domain.HRAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.hrs[h.ID]
	if !ok || stored.Version != h.Version {
		return domain.ErrEditConflict
	}
	h.Version++
	h.UpdatedAt = time.Now()
	cp := *h
	s.hrs[h.ID] = &cp
	return nil
}

func (s *memoryStore) DeleteHRCascade(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cascadeFailure(); err != nil {
		return err
	}
	for jid, j := range s.jobs {
		if j.HRID == id {
			s.deleteJobLocked(jid)
		}
	}
	delete(s.hrs, id)
	return nil
}

func (s *memoryStore) CreateJob(ctx context.Context, j *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextJobID++
	j.ID = s.nextJobID
	j.PostedOn = time.Now()
	j.Version = 1
	cp := *j
	s.jobs[j.ID] = &cp
	return nil
}

func (s *memoryStore) GetJobByID(ctx context.Context, id int64) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *memoryStore) GetJobs(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error) {
	return s.listJobs(func(j *domain.Job) bool { return status == "" || j.Status == status }), nil
}

func (s *memoryStore) GetJobsByHR(ctx context.Context, hrID string) ([]*domain.Job, error) {
	return s.listJobs(func(j *domain.Job) bool { return j.HRID == hrID }), nil
}

func (s *memoryStore) listJobs(keep func(*domain.Job) bool) []*domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Job{}
	for _, j := range s.jobs {
		if keep(j) {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

func (s *memoryStore) UpdateJob(ctx context.Context, j *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[j.ID]
	if !ok || stored.Version != j.Version {
		return domain.ErrEditConflict
	}
	j.Version++
	cp := *j
	s.jobs[j.ID] = &cp
	return nil
}

func (s *memoryStore) DeleteJobCascade(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cascadeFailure(); err != nil {
		return err
	}
	s.deleteJobLocked(id)
	return nil
}

func (s *memoryStore) deleteJobLocked(id int64) {
	for aid, a := range s.applications {
		if a.JobID == id {
			delete(s.applications, aid)
		}
	}
	s.saved = filterSaved(s.saved, func(sj *domain.SavedJob) bool { return sj.JobID != id })
	delete(s.jobs, id)
}

func (s *memoryStore) CreateApplication(ctx context.Context, a *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.applications {
		if existing.JobID == a.JobID && existing.CandidateID == a.CandidateID {
			return fmt.Errorf("%w: applications_job_candidate_key", domain.ErrAlreadyApplied)
		}
	}
	a.ID = uuid.NewString()
	a.Status = domain.ApplicationReviewing
	a.AppliedOn = time.Now()
	cp := *a
	s.applications[a.ID] = &cp
	return nil
}

func (s *memoryStore) GetApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memoryStore) GetApplicationsByJob(ctx context.Context, jobID int64) ([]*domain.Application, error) {
	return s.listApplications(func(a *domain.Application) bool { return a.JobID == jobID }), nil
}

func (s *memoryStore) GetApplicationsByCandidate(ctx context.Context, candidateID string) ([]*domain.Application, error) {
	return s.listApplications(func(a *domain.Application) bool { return a.CandidateID == candidateID }), nil
}

func (s *memoryStore) listApplications(keep func(*domain.Application) bool) []*domain.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Application{}
	for _, a := range s.applications {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

func (s *memoryStore) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	a.Status = status
	return nil
}

func (s *memoryStore) SaveJob(ctx context.Context, sj *domain.SavedJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.saved {
		if existing.CandidateID == sj.CandidateID && existing.JobID == sj.JobID {
			return fmt.Errorf("%w: saved_jobs_candidate_job_key", domain.ErrAlreadySaved)
		}
	}
	s.nextSavedID++
	sj.ID = s.nextSavedID
	sj.SavedAt = time.Now()
	cp := *sj
	s.saved = append(s.saved, &cp)
	return nil
}

func (s *memoryStore) CountSavedJobs(ctx context.Context, candidateID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sj := range s.saved {
		if sj.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) GetSavedJobs(ctx context.Context, candidateID string) ([]*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Job{}
	for _, sj := range s.saved {
		if j, ok := s.jobs[sj.JobID]; ok && sj.CandidateID == candidateID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memoryStore) DeleteSavedJob(ctx context.Context, candidateID string, jobID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.saved)
	s.saved = filterSaved(s.saved, func(sj *domain.SavedJob) bool {
		return sj.CandidateID != candidateID || sj.JobID != jobID
	})
	if len(s.saved) == before {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (s *memoryStore) cascadeFailure() error {
	if s.failCascadeAt == "" {
		return nil
	}
	step := s.failCascadeAt
	s.failCascadeAt = ""
	return &domain.CascadeError{Step: step, Err: errors.New("connection reset")}
}

func filterSaved(in []*domain.SavedJob, keep func(*domain.SavedJob) bool) []*domain.SavedJob {
	out := in[:0]
	for _, sj := range in {
		if keep(sj) {
			out = append(out, sj)
		}
	}
	return out
}

type memoryOTP struct {
	mu       sync.Mutex
	codes    map[string]string
	verified map[string]bool
}

func newMemoryOTP() *memoryOTP {
	return &memoryOTP{codes: map[string]string{}, verified: map[string]bool{}}
}

func (o *memoryOTP) Issue(ctx context.Context, email, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes[email] = code
	delete(o.verified, email)
	return nil
}

func (o *memoryOTP) Verify(ctx context.Context, email, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if stored, ok := o.codes[email]; !ok || stored != code {
		return otp.ErrMismatch
	}
	delete(o.codes, email)
	o.verified[email] = true
	return nil
}

func (o *memoryOTP) IsVerified(ctx context.Context, email string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.verified[email], nil
}

func (o *memoryOTP) Consume(ctx context.Context, email string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.codes, email)
	delete(o.verified, email)
	return nil
}

type memoryMail struct {
	mu   sync.Mutex
	sent []domain.MailMessage
}

func (m *memoryMail) Publish(ctx context.Context, msg domain.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *memoryMail) last() domain.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memoryBlobs) Put(ctx context.Context, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[name] = data
	return nil
}

func (b *memoryBlobs) Get(ctx context.Context, name string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[name]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (b *memoryBlobs) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, name)
	return nil
}

type memoryLedger struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (l *memoryLedger) Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[nonce] {
		return false, nil
	}
	l.seen[nonce] = true
	return true, nil
}
