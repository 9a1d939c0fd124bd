package query

import (
	"context"

	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/goliatone/go-accounts/scope"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// ActivityFeedQuery renders paginated provisioning activity feeds.
type ActivityFeedQuery struct {
	repo  types.ActivityRepository
	guard scope.Guard
}

// NewActivityFeedQuery constructs the feed query helper.
func NewActivityFeedQuery(repo types.ActivityRepository, guard scope.Guard) *ActivityFeedQuery {
	return &ActivityFeedQuery{
		repo:  repo,
		guard: safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[types.ActivityFilter, types.ActivityPage] = (*ActivityFeedQuery)(nil)

// Query fetches a page of activity logs via the injected repository.
func (q *ActivityFeedQuery) Query(ctx context.Context, filter types.ActivityFilter) (types.ActivityPage, error) {
	if q.repo == nil {
		return types.ActivityPage{}, types.ErrMissingActivityRepository
	}
	if err := filter.Validate(); err != nil {
		return types.ActivityPage{}, err
	}
	scope, err := q.guard.Enforce(ctx, filter.Actor, filter.Scope, types.PolicyActionActivityRead, uuid.Nil)
	if err != nil {
		return types.ActivityPage{}, err
	}
	filter.Scope = scope
	return q.repo.ListActivity(ctx, filter)
}
