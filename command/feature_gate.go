package command

import (
	"context"

	"github.com/goliatone/go-accounts/pkg/types"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

const (
	featureAccountsBots = "accounts.bots"
)

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, scope types.ScopeFilter, accountID uuid.UUID) (bool, error) {
	if gate == nil {
		return true, nil
	}
	scopeSet := featureScopeSet(scope, accountID)
	if scopeSet == nil {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeSet(*scopeSet))
}

func featureScopeSet(scope types.ScopeFilter, accountID uuid.UUID) *featuregate.ScopeSet {
	realmID := ""
	if scope.RealmID != uuid.Nil {
		realmID = scope.RealmID.String()
	}
	user := ""
	if accountID != uuid.Nil {
		user = accountID.String()
	}
	if realmID == "" && user == "" {
		return nil
	}
	return &featuregate.ScopeSet{
		System:   true,
		TenantID: realmID,
		UserID:   user,
	}
}
