package settings

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrRecordNotFound indicates nothing has been saved for a group yet.
var ErrRecordNotFound = errors.New("settings: record not found")

// Record is the persisted payload of one group. Secret leaves hold
// ciphertext.
type Record struct {
	bun.BaseModel `bun:"table:settings,alias:s"`

	Group     Group          `bun:"group_key,pk" json:"group"`
	Payload   map[string]any `bun:"payload,type:jsonb" json:"payload"`
	UpdatedBy uuid.UUID      `bun:"updated_by,type:uuid" json:"updated_by"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Repository persists settings records keyed by group.
type Repository interface {
	Get(ctx context.Context, group Group) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Upsert(ctx context.Context, record *Record) (*Record, error)
}

// MemoryRepository stores records in-memory for tests and the demo CLI.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[Group]*Record
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[Group]*Record)}
}

func (r *MemoryRepository) Get(_ context.Context, group Group) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[group]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneRecord(record), nil
}

func (r *MemoryRepository) List(context.Context) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, cloneRecord(record))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Group < out[j].Group
	})
	return out, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, record *Record) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneRecord(record)
	if existing, ok := r.records[record.Group]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	r.records[stored.Group] = stored
	return cloneRecord(stored), nil
}

func cloneRecord(record *Record) *Record {
	if record == nil {
		return nil
	}
	cloned := *record
	cloned.Payload = cloneMap(record.Payload)
	return &cloned
}
