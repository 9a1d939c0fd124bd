package activity

import (
	"context"
	"errors"

	"github.com/goliatone/go-accounts/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed activity repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*LogEntry]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type activityStore interface {
	repository.Repository[*LogEntry]
}

// Repository persists activity logs and exposes query helpers. It implements
// both ActivitySink and ActivityRepository.
type Repository struct {
	activityStore
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the activity repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("activity: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*LogEntry]{
			NewRecord: func() *LogEntry { return &LogEntry{} },
			GetID: func(entry *LogEntry) uuid.UUID {
				if entry == nil {
					return uuid.Nil
				}
				return entry.ID
			},
			SetID: func(entry *LogEntry, id uuid.UUID) {
				if entry != nil {
					entry.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		activityStore: repo,
		clock:         clock,
		idGen:         idGen,
	}, nil
}

var (
	_ repository.Repository[*LogEntry] = (*Repository)(nil)
	_ types.ActivitySink               = (*Repository)(nil)
	_ types.ActivityRepository         = (*Repository)(nil)
)

// Log persists an activity record. Credential material is masked before the
// row is written.
func (r *Repository) Log(ctx context.Context, record types.ActivityRecord) error {
	entry := toLogEntry(SanitizeRecord(nil, record))
	if entry.ID == uuid.Nil {
		entry.ID = r.idGen.UUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.clock.Now()
	}
	_, err := r.Create(ctx, entry)
	return err
}

// ListActivity returns a paginated feed filtered by the supplied criteria.
func (r *Repository) ListActivity(ctx context.Context, filter types.ActivityFilter) (types.ActivityPage, error) {
	pagination := normalizePagination(filter.Pagination, 50, 200)
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.OrderExpr("created_at DESC").
				Limit(pagination.Limit).
				Offset(pagination.Offset)
			return applyActivityFilter(q, filter)
		},
	}

	rows, total, err := r.List(ctx, criteria...)
	if err != nil {
		return types.ActivityPage{}, err
	}
	records := make([]types.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, toActivityRecord(row))
	}
	return types.ActivityPage{
		Records:    records,
		Total:      total,
		NextOffset: pagination.Offset + pagination.Limit,
		HasMore:    pagination.Offset+pagination.Limit < total,
	}, nil
}

func applyActivityFilter(q *bun.SelectQuery, filter types.ActivityFilter) *bun.SelectQuery {
	if filter.Scope.RealmID != uuid.Nil {
		q = q.Where("realm_id = ?", filter.Scope.RealmID)
	}
	if filter.AccountID != uuid.Nil {
		q = q.Where("account_id = ?", filter.AccountID)
	}
	if filter.ActorID != uuid.Nil {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if len(filter.Verbs) > 0 {
		q = q.Where("verb IN (?)", bun.In(filter.Verbs))
	}
	if filter.Channel != "" {
		q = q.Where("channel = ?", filter.Channel)
	}
	if filter.Since != nil {
		q = q.Where("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		q = q.Where("created_at < ?", *filter.Until)
	}
	return q
}

func normalizePagination(p types.Pagination, def, max int) types.Pagination {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
