package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-accounts/command"
	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/goliatone/go-accounts/query"
	"github.com/goliatone/go-accounts/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestService_MultiRealmIsolation(t *testing.T) {
	ctx := context.Background()
	realmA := &types.Realm{ID: uuid.New(), Name: "Realm A", DefaultLanguage: "en"}
	realmB := &types.Realm{ID: uuid.New(), Name: "Realm B", DefaultLanguage: "de"}

	accountRepo := newMemoryAccountRepo()
	activityStore := newMemoryActivityStore()

	actorA := types.ActorRef{ID: uuid.New(), Type: "realm-admin"}
	actorB := types.ActorRef{ID: uuid.New(), Type: "realm-admin"}

	resolver := staticScopeResolver{
		scopes: map[uuid.UUID]types.ScopeFilter{
			actorA.ID: {RealmID: realmA.ID},
			actorB.ID: {RealmID: realmB.ID},
		},
	}
	policy := realmPolicy{
		allowed: map[uuid.UUID]uuid.UUID{
			actorA.ID: realmA.ID,
			actorB.ID: realmB.ID,
		},
	}

	svc := service.New(service.Config{
		AccountRepository:   accountRepo,
		ActivitySink:        activityStore,
		ActivityRepository:  activityStore,
		Hooks:               types.Hooks{},
		Logger:              types.NopLogger{},
		ScopeResolver:       resolver,
		AuthorizationPolicy: policy,
	})
	require.True(t, svc.Ready())
	require.NoError(t, svc.HealthCheck(ctx))

	scopeRealmA := types.ScopeFilter{RealmID: realmA.ID}

	// Realm A actor can provision into their realm.
	result := &types.Account{}
	err := svc.Commands().AccountCreate.Execute(ctx, command.AccountCreateInput{
		Realm:    realmA,
		Email:    "person@realm-a.example.com",
		FullName: "Person A",
		Actor:    actorA,
		Scope:    scopeRealmA,
		Result:   result,
	})
	require.NoError(t, err)
	require.Equal(t, realmA.ID, result.RealmID)
	require.Equal(t, "en", result.DefaultLanguage)

	// Realm B actor targeting realm A scope is rejected.
	err = svc.Commands().AccountCreate.Execute(ctx, command.AccountCreateInput{
		Realm: realmA,
		Email: "intruder@realm-a.example.com",
		Actor: actorB,
		Scope: scopeRealmA,
	})
	require.ErrorIs(t, err, types.ErrUnauthorizedScope)

	// Provision one account into realm B through the bulk path.
	var bulkResults []command.BulkAccountProvisionResult
	err = svc.Commands().BulkAccountProvision.Execute(ctx, command.BulkAccountProvisionInput{
		Realm: realmB,
		Specs: []command.BulkAccountSpec{
			{Email: "person@realm-b.example.com", FullName: "Person B"},
		},
		Actor:   actorB,
		Scope:   types.ScopeFilter{RealmID: realmB.ID},
		Results: &bulkResults,
	})
	require.NoError(t, err)
	require.Len(t, bulkResults, 1)

	// Inventory queries only surface the actor's realm.
	pageA, err := svc.Queries().AccountInventory.Query(ctx, types.AccountInventoryFilter{
		Actor: actorA,
		Scope: scopeRealmA,
	})
	require.NoError(t, err)
	require.Len(t, pageA.Accounts, 1)
	require.Equal(t, "person@realm-a.example.com", pageA.Accounts[0].Email)

	// Activity feeds are realm-scoped as well.
	feedB, err := svc.Queries().ActivityFeed.Query(ctx, types.ActivityFilter{
		Actor: actorB,
		Scope: types.ScopeFilter{RealmID: realmB.ID},
	})
	require.NoError(t, err)
	require.Len(t, feedB.Records, 1)
	require.Equal(t, realmB.ID, feedB.Records[0].RealmID)

	// Detail lookups resolve by email within the enforced realm.
	detail, err := svc.Queries().AccountDetail.Query(ctx, query.AccountDetailInput{
		Email: "person@realm-a.example.com",
		Scope: scopeRealmA,
		Actor: actorA,
	})
	require.NoError(t, err)
	require.NotNil(t, detail)
}

func TestService_HealthCheckReportsMissingDependencies(t *testing.T) {
	svc := service.New(service.Config{})
	require.False(t, svc.Ready())
	require.ErrorIs(t, svc.HealthCheck(context.Background()), types.ErrServiceNotReady)
}

// --- Test fakes ---

type staticScopeResolver struct {
	scopes map[uuid.UUID]types.ScopeFilter
}

func (r staticScopeResolver) ResolveScope(_ context.Context, actor types.ActorRef, requested types.ScopeFilter) (types.ScopeFilter, error) {
	if requested.RealmID != uuid.Nil {
		return requested, nil
	}
	if resolved, ok := r.scopes[actor.ID]; ok {
		return resolved, nil
	}
	return requested, nil
}

type realmPolicy struct {
	allowed map[uuid.UUID]uuid.UUID
}

func (p realmPolicy) Authorize(_ context.Context, check types.PolicyCheck) error {
	realmID, ok := p.allowed[check.Actor.ID]
	if !ok || realmID != check.Scope.RealmID {
		return types.ErrUnauthorizedScope
	}
	return nil
}

type memoryAccountRepo struct {
	accounts map[uuid.UUID]*types.Account
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{accounts: make(map[uuid.UUID]*types.Account)}
}

func (m *memoryAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*types.Account, error) {
	return m.accounts[id], nil
}

func (m *memoryAccountRepo) GetByEmail(_ context.Context, realmID uuid.UUID, email string) (*types.Account, error) {
	for _, acct := range m.accounts {
		if acct.RealmID == realmID && strings.EqualFold(acct.Email, email) {
			return acct, nil
		}
	}
	return nil, nil
}

func (m *memoryAccountRepo) Create(_ context.Context, acct *types.Account) (*types.Account, error) {
	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}
	m.accounts[acct.ID] = acct
	return acct, nil
}

func (m *memoryAccountRepo) CreateBatch(ctx context.Context, accounts []*types.Account) ([]*types.Account, error) {
	for _, acct := range accounts {
		if _, err := m.Create(ctx, acct); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (m *memoryAccountRepo) Update(_ context.Context, acct *types.Account) (*types.Account, error) {
	m.accounts[acct.ID] = acct
	return acct, nil
}

func (m *memoryAccountRepo) ListAccounts(_ context.Context, filter types.AccountInventoryFilter) (types.AccountInventoryPage, error) {
	page := types.AccountInventoryPage{}
	for _, acct := range m.accounts {
		if filter.Scope.RealmID != uuid.Nil && acct.RealmID != filter.Scope.RealmID {
			continue
		}
		page.Accounts = append(page.Accounts, *acct)
	}
	page.Total = len(page.Accounts)
	return page, nil
}

type memoryActivityStore struct {
	records []types.ActivityRecord
}

func newMemoryActivityStore() *memoryActivityStore {
	return &memoryActivityStore{}
}

func (m *memoryActivityStore) Log(_ context.Context, record types.ActivityRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memoryActivityStore) ListActivity(_ context.Context, filter types.ActivityFilter) (types.ActivityPage, error) {
	page := types.ActivityPage{}
	for _, record := range m.records {
		if filter.Scope.RealmID != uuid.Nil && record.RealmID != filter.Scope.RealmID {
			continue
		}
		page.Records = append(page.Records, record)
	}
	page.Total = len(page.Records)
	return page, nil
}
