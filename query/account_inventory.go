package query

import (
	"context"

	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/goliatone/go-accounts/scope"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

const (
	defaultInventoryLimit = 50
	maxInventoryLimit     = 200
)

// AccountInventoryQuery wraps ListAccounts repositories and normalizes
// filters for admin dashboards.
type AccountInventoryQuery struct {
	repo   types.AccountRepository
	logger types.Logger
	guard  scope.Guard
}

// NewAccountInventoryQuery constructs the query helper.
func NewAccountInventoryQuery(repo types.AccountRepository, logger types.Logger, guard scope.Guard) *AccountInventoryQuery {
	return &AccountInventoryQuery{
		repo:   repo,
		logger: logger,
		guard:  safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[types.AccountInventoryFilter, types.AccountInventoryPage] = (*AccountInventoryQuery)(nil)

// Query delegates to the configured repository after normalizing filters.
func (q *AccountInventoryQuery) Query(ctx context.Context, filter types.AccountInventoryFilter) (types.AccountInventoryPage, error) {
	if q.repo == nil {
		return types.AccountInventoryPage{}, types.ErrMissingAccountRepository
	}
	if err := filter.Validate(); err != nil {
		return types.AccountInventoryPage{}, err
	}
	scope, err := q.guard.Enforce(ctx, filter.Actor, filter.Scope, types.PolicyActionAccountsRead, uuid.Nil)
	if err != nil {
		return types.AccountInventoryPage{}, err
	}
	filter.Scope = scope
	normalized := normalizeInventoryFilter(filter)
	return q.repo.ListAccounts(ctx, normalized)
}

func normalizeInventoryFilter(filter types.AccountInventoryFilter) types.AccountInventoryFilter {
	out := filter
	if out.Pagination.Limit <= 0 {
		out.Pagination.Limit = defaultInventoryLimit
	}
	if out.Pagination.Limit > maxInventoryLimit {
		out.Pagination.Limit = maxInventoryLimit
	}
	if out.Pagination.Offset < 0 {
		out.Pagination.Offset = 0
	}
	return out
}

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}
