package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/goliatone/go-accounts/scope"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// AccountDetailInput scopes single account lookups. Either AccountID or Email
// must be supplied; Email lookups resolve against the enforced realm scope.
type AccountDetailInput struct {
	AccountID uuid.UUID
	Email     string
	Scope     types.ScopeFilter
	Actor     types.ActorRef
}

// AccountDetailQuery fetches a single account record.
type AccountDetailQuery struct {
	repo  types.AccountRepository
	guard scope.Guard
}

// NewAccountDetailQuery constructs the detail query helper.
func NewAccountDetailQuery(repo types.AccountRepository, guard scope.Guard) *AccountDetailQuery {
	return &AccountDetailQuery{
		repo:  repo,
		guard: safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[AccountDetailInput, *types.Account] = (*AccountDetailQuery)(nil)

// Query returns the account for the supplied identifiers, or nil when no
// account matches.
func (q *AccountDetailQuery) Query(ctx context.Context, input AccountDetailInput) (*types.Account, error) {
	if q.repo == nil {
		return nil, types.ErrMissingAccountRepository
	}
	if input.Actor.ID == uuid.Nil {
		return nil, types.ErrActorRequired
	}
	email := strings.TrimSpace(input.Email)
	if input.AccountID == uuid.Nil && email == "" {
		return nil, types.ErrAccountIDRequired
	}
	scope, err := q.guard.Enforce(ctx, input.Actor, input.Scope, types.PolicyActionAccountsRead, input.AccountID)
	if err != nil {
		return nil, err
	}
	if input.AccountID != uuid.Nil {
		return q.repo.GetByID(ctx, input.AccountID)
	}
	return q.repo.GetByEmail(ctx, scope.RealmID, email)
}
