package scope

import (
	"context"

	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/google/uuid"
)

// Guard enforces resolved realm scopes and authorization policies for
// commands and queries. It is intentionally small so callers can swap custom
// guards in tests if needed.
type Guard interface {
	Enforce(ctx context.Context, actor types.ActorRef, requested types.ScopeFilter, action types.PolicyAction, target uuid.UUID) (types.ScopeFilter, error)
}

type guard struct {
	resolver  types.ScopeResolver
	policy    types.AuthorizationPolicy
	selfReads bool
}

// GuardOption customizes guard behavior.
type GuardOption func(*guard)

// WithSelfServiceReads lets an actor pass read checks whose target is their
// own account without consulting the policy. Detail lookups pass the account
// identifier as the enforcement target, so hosts that route end users through
// the same policy as admins can keep "read yourself" open.
func WithSelfServiceReads() GuardOption {
	return func(g *guard) {
		g.selfReads = true
	}
}

// NewGuard builds a Guard from the supplied resolver and policy. Nil
// dependencies are treated as no-ops.
func NewGuard(resolver types.ScopeResolver, policy types.AuthorizationPolicy, opts ...GuardOption) Guard {
	g := guard{
		resolver: resolver,
		policy:   policy,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&g)
		}
	}
	return g
}

// Ensure returns a non-nil guard so command/query constructors can accept nil
// guards when tests instantiate them directly.
func Ensure(g Guard) Guard {
	if g == nil {
		return guard{}
	}
	return g
}

// NopGuard returns a guard that leaves scopes unchanged and never blocks.
func NopGuard() Guard {
	return guard{}
}

// Enforce resolves the requested realm scope, then authorizes the action
// against it. With self-service reads enabled, a read action targeting the
// actor's own account skips the policy check after scope resolution.
func (g guard) Enforce(ctx context.Context, actor types.ActorRef, requested types.ScopeFilter, action types.PolicyAction, target uuid.UUID) (types.ScopeFilter, error) {
	scope := requested
	if g.resolver != nil {
		resolved, err := g.resolver.ResolveScope(ctx, actor, requested)
		if err != nil {
			return types.ScopeFilter{}, err
		}
		scope = resolved
	}
	if g.selfReads && isReadAction(action) && target != uuid.Nil && target == actor.ID {
		return scope, nil
	}
	if g.policy != nil && action != "" {
		check := types.PolicyCheck{
			Actor:    actor,
			Scope:    scope,
			Action:   action,
			TargetID: target,
		}
		if err := g.policy.Authorize(ctx, check); err != nil {
			return types.ScopeFilter{}, err
		}
	}
	return scope, nil
}

func isReadAction(action types.PolicyAction) bool {
	switch action {
	case types.PolicyActionAccountsRead, types.PolicyActionActivityRead:
		return true
	default:
		return false
	}
}
