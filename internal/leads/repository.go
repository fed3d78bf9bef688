package leads

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	// List returns every lead, most recent first.
	List(ctx context.Context) ([]*Lead, error)
	// UpdateStatus applies status to id unconditionally. A missing id is not an error.
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// InMemoryRepository is a Repository backed by a slice, used for local
// development and tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	leads  []*Lead
	now    func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create creates a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead := req.toLead(r.nextID, r.now())
	r.nextID++
	r.leads = append(r.leads, lead)

	cp := *lead
	return &cp, nil
}

// List returns copies of all leads ordered newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Lead, error) {
	r.mu.RLock()
	out := make([]*Lead, 0, len(r.leads))
	for _, l := range r.leads {
		cp := *l
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

// UpdateStatus sets the status of the lead with the given id, if any.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.leads {
		if l.ID == id {
			l.Status = status
			break
		}
	}
	return nil
}

func sortNewestFirst(leads []*Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		if leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].ID > leads[j].ID
		}
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
}
