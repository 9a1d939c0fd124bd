package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-accounts/pkg/apikey"
	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/goliatone/go-accounts/scope"
	goerrors "github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAccountCreateCommand_ProvisionsAndLogsActivity(t *testing.T) {
	repo := newFakeAccountRepo()
	realm := testRealm()
	actor := types.ActorRef{ID: uuid.New(), Type: "admin"}
	fixedTime := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	order := make([]string, 0, 3)
	var recorded types.ActivityRecord
	sink := &recordingActivitySink{
		onLog: func(r types.ActivityRecord) {
			recorded = r
			order = append(order, "sink")
		},
	}
	var createEvent types.AccountEvent
	hooks := types.Hooks{
		AfterActivity: func(context.Context, types.ActivityRecord) {
			order = append(order, "activity-hook")
		},
		AfterAccountCreate: func(_ context.Context, event types.AccountEvent) {
			createEvent = event
			order = append(order, "create-hook")
		},
	}

	cmd := NewAccountCreateCommand(AccountCreateCommandConfig{
		Repository: repo,
		Clock:      fixedClock{t: fixedTime},
		Activity:   sink,
		Hooks:      hooks,
	})

	result := &types.Account{}
	err := cmd.Execute(context.Background(), AccountCreateInput{
		Realm:    realm,
		Email:    "New.Person@ACME.Example.COM",
		FullName: "New Person",
		Actor:    actor,
		Result:   result,
	})

	require.NoError(t, err)
	require.NotNil(t, repo.lastCreated)
	require.Equal(t, "New.Person@acme.example.com", result.Email)
	require.Equal(t, realm.ID, result.RealmID)
	require.True(t, result.IsActive)
	require.False(t, result.IsBot)
	require.True(t, apikey.Valid(result.APIKey))
	require.Equal(t, fixedTime, result.DateJoined)

	require.Equal(t, []string{"sink", "activity-hook", "create-hook"}, order,
		"activity sink must run before hooks")
	require.Equal(t, "account.created", recorded.Verb)
	require.Equal(t, result.ID, recorded.AccountID)
	require.Equal(t, actor.ID, recorded.ActorID)
	require.Equal(t, realm.ID, recorded.RealmID)
	require.Equal(t, result.Email, recorded.Data["email"])
	require.Equal(t, result.ID, createEvent.AccountID)
	require.Equal(t, result.Email, createEvent.Email)
}

func TestAccountCreateCommand_Validation(t *testing.T) {
	cmd := NewAccountCreateCommand(AccountCreateCommandConfig{
		Repository: newFakeAccountRepo(),
	})
	realm := testRealm()
	actor := types.ActorRef{ID: uuid.New()}

	tests := []struct {
		name    string
		input   AccountCreateInput
		wantErr error
	}{
		{
			name:    "missing realm",
			input:   AccountCreateInput{Email: "a@b.c", Actor: actor},
			wantErr: ErrRealmRequired,
		},
		{
			name:    "missing email",
			input:   AccountCreateInput{Realm: realm, Email: "   ", Actor: actor},
			wantErr: ErrEmailRequired,
		},
		{
			name:    "missing actor",
			input:   AccountCreateInput{Realm: realm, Email: "a@b.c"},
			wantErr: ErrActorRequired,
		},
		{
			name: "source profile realm mismatch",
			input: AccountCreateInput{
				Realm: realm,
				Email: "a@b.c",
				Actor: actor,
				SourceProfile: &types.Account{
					RealmID: uuid.New(),
				},
			},
			wantErr: ErrSourceProfileRealmMismatch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := cmd.Execute(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAccountCreateCommand_ScopeGuardDenies(t *testing.T) {
	repo := newFakeAccountRepo()
	guard := scope.NewGuard(nil, types.AuthorizationPolicyFunc(func(context.Context, types.PolicyCheck) error {
		return types.ErrUnauthorizedScope
	}))
	cmd := NewAccountCreateCommand(AccountCreateCommandConfig{
		Repository: repo,
		ScopeGuard: guard,
	})

	err := cmd.Execute(context.Background(), AccountCreateInput{
		Realm: testRealm(),
		Email: "a@b.c",
		Actor: types.ActorRef{ID: uuid.New()},
	})

	require.ErrorIs(t, err, types.ErrUnauthorizedScope)
	require.Nil(t, repo.lastCreated, "repo should not receive Create when scope is denied")
}

func TestAccountCreateCommand_FeatureGateBlocksBots(t *testing.T) {
	repo := newFakeAccountRepo()
	gate := &stubFeatureGate{enabled: false}
	cmd := NewAccountCreateCommand(AccountCreateCommandConfig{
		Repository:  repo,
		FeatureGate: gate,
	})

	botType := types.BotTypeDefault
	err := cmd.Execute(context.Background(), AccountCreateInput{
		Realm:   testRealm(),
		Email:   "bot@acme.example.com",
		BotType: &botType,
		Actor:   types.ActorRef{ID: uuid.New()},
	})

	require.ErrorIs(t, err, ErrBotsDisabled)
	require.Equal(t, []string{featureAccountsBots}, gate.keys)
	require.Nil(t, repo.lastCreated)
}

func TestAccountCreateCommand_SourceProfileOverridesSettings(t *testing.T) {
	repo := newFakeAccountRepo()
	realm := testRealm()
	cmd := NewAccountCreateCommand(AccountCreateCommandConfig{Repository: repo})

	source := &types.Account{
		RealmID:            realm.ID,
		FullName:           "Template Person",
		Timezone:           "Europe/Madrid",
		DefaultLanguage:    "es",
		EmojiSet:           "twitter",
		EnterSends:         true,
		EnableStreamSounds: true,
	}

	result := &types.Account{}
	err := cmd.Execute(context.Background(), AccountCreateInput{
		Realm:         realm,
		Email:         "clone@acme.example.com",
		FullName:      "Caller Name",
		Timezone:      "UTC",
		SourceProfile: source,
		Actor:         types.ActorRef{ID: uuid.New()},
		Result:        result,
	})

	require.NoError(t, err)
	require.Equal(t, "Template Person", result.FullName, "source profile overrides caller-supplied fields")
	require.Equal(t, "Europe/Madrid", result.Timezone)
	require.Equal(t, "es", result.DefaultLanguage)
	require.Equal(t, "twitter", result.EmojiSet)
	require.True(t, result.EnterSends)
	require.True(t, result.EnableStreamSounds)
	require.Equal(t, "clone@acme.example.com", result.Email, "identity fields are never copied")
}

func TestBulkAccountProvisionCommand_CreatesBatch(t *testing.T) {
	repo := newFakeAccountRepo()
	realm := testRealm()
	sink := &recordingActivitySink{}
	cmd := NewBulkAccountProvisionCommand(BulkAccountProvisionCommandConfig{
		Repository: repo,
		Activity:   sink,
	})

	var results []BulkAccountProvisionResult
	err := cmd.Execute(context.Background(), BulkAccountProvisionInput{
		Realm: realm,
		Specs: []BulkAccountSpec{
			{Email: "one@acme.example.com", FullName: "One"},
			{Email: "Two@ACME.Example.COM", FullName: "Two"},
			{Email: "three@acme.example.com", FullName: "Three"},
		},
		Actor:   types.ActorRef{ID: uuid.New()},
		Results: &results,
	})

	require.NoError(t, err)
	require.Equal(t, 1, repo.batchCalls)
	require.Len(t, results, 3)
	for _, result := range results {
		require.NoError(t, result.Err)
		require.NotEqual(t, uuid.Nil, result.AccountID)
	}
	require.Equal(t, "Two@acme.example.com", results[1].Email)

	require.Len(t, sink.records, 3)
	for _, record := range sink.records {
		require.Equal(t, "account.created", record.Verb)
		require.Equal(t, true, record.Data["bulk"])
	}
}

func TestBulkAccountProvisionCommand_ContinueOnError(t *testing.T) {
	repo := newFakeAccountRepo()
	cmd := NewBulkAccountProvisionCommand(BulkAccountProvisionCommandConfig{
		Repository: repo,
	})

	var results []BulkAccountProvisionResult
	err := cmd.Execute(context.Background(), BulkAccountProvisionInput{
		Realm: testRealm(),
		Specs: []BulkAccountSpec{
			{Email: "ok@acme.example.com"},
			{Email: "   "},
			{Email: "also.ok@acme.example.com"},
		},
		Actor:           types.ActorRef{ID: uuid.New()},
		ContinueOnError: true,
		Results:         &results,
	})

	require.Error(t, err)
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.NoError(t, results[2].Err)
	require.Equal(t, 1, repo.batchCalls, "valid records are still persisted")
	require.NotEqual(t, uuid.Nil, results[0].AccountID)
	require.NotEqual(t, uuid.Nil, results[2].AccountID)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(results[1].Err, &richErr))
	require.Equal(t, 1, richErr.Metadata["index"])
}

func TestBulkAccountProvisionCommand_StopsOnFirstErrorByDefault(t *testing.T) {
	repo := newFakeAccountRepo()
	cmd := NewBulkAccountProvisionCommand(BulkAccountProvisionCommandConfig{
		Repository: repo,
	})

	var results []BulkAccountProvisionResult
	err := cmd.Execute(context.Background(), BulkAccountProvisionInput{
		Realm: testRealm(),
		Specs: []BulkAccountSpec{
			{Email: ""},
			{Email: "never@acme.example.com"},
		},
		Actor:   types.ActorRef{ID: uuid.New()},
		Results: &results,
	})

	require.Error(t, err)
	require.Len(t, results, 1)
	require.Zero(t, repo.batchCalls, "nothing is written when the batch aborts")
}

func TestBulkAccountProvisionCommand_DryRun(t *testing.T) {
	repo := newFakeAccountRepo()
	sink := &recordingActivitySink{}
	cmd := NewBulkAccountProvisionCommand(BulkAccountProvisionCommandConfig{
		Repository: repo,
		Activity:   sink,
	})

	var results []BulkAccountProvisionResult
	err := cmd.Execute(context.Background(), BulkAccountProvisionInput{
		Realm: testRealm(),
		Specs: []BulkAccountSpec{
			{Email: "preview@acme.example.com"},
		},
		Actor:   types.ActorRef{ID: uuid.New()},
		DryRun:  true,
		Results: &results,
	})

	require.NoError(t, err)
	require.Zero(t, repo.batchCalls)
	require.Empty(t, sink.records)
	require.Len(t, results, 1)
	require.Equal(t, uuid.Nil, results[0].AccountID)
	require.Equal(t, "preview@acme.example.com", results[0].Email)
}

func TestBulkAccountProvisionCommand_Validation(t *testing.T) {
	cmd := NewBulkAccountProvisionCommand(BulkAccountProvisionCommandConfig{
		Repository: newFakeAccountRepo(),
	})

	err := cmd.Execute(context.Background(), BulkAccountProvisionInput{
		Realm: testRealm(),
		Actor: types.ActorRef{ID: uuid.New()},
	})
	require.ErrorIs(t, err, ErrAccountsRequired)

	err = cmd.Execute(context.Background(), BulkAccountProvisionInput{
		Realm: testRealm(),
		Specs: []BulkAccountSpec{{Email: "a@b.c"}},
	})
	require.ErrorIs(t, err, ErrActorRequired)
}

// --- Test helpers ---

func testRealm() *types.Realm {
	return &types.Realm{
		ID:              uuid.New(),
		Name:            "Acme",
		Domain:          "acme.example.com",
		DefaultLanguage: "en",
	}
}

type fakeAccountRepo struct {
	accounts    map[uuid.UUID]*types.Account
	lastCreated *types.Account
	lastUpdated *types.Account
	batchCalls  int
	createErr   error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[uuid.UUID]*types.Account),
	}
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*types.Account, error) {
	acct, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	return acct, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, realmID uuid.UUID, email string) (*types.Account, error) {
	for _, acct := range f.accounts {
		if acct.RealmID == realmID && strings.EqualFold(acct.Email, email) {
			return acct, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) Create(_ context.Context, acct *types.Account) (*types.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}
	f.lastCreated = acct
	f.accounts[acct.ID] = acct
	return acct, nil
}

func (f *fakeAccountRepo) CreateBatch(ctx context.Context, accounts []*types.Account) ([]*types.Account, error) {
	f.batchCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, acct := range accounts {
		if _, err := f.Create(ctx, acct); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (f *fakeAccountRepo) Update(_ context.Context, acct *types.Account) (*types.Account, error) {
	f.lastUpdated = acct
	f.accounts[acct.ID] = acct
	return acct, nil
}

func (f *fakeAccountRepo) ListAccounts(_ context.Context, filter types.AccountInventoryFilter) (types.AccountInventoryPage, error) {
	page := types.AccountInventoryPage{}
	for _, acct := range f.accounts {
		if filter.Scope.RealmID != uuid.Nil && acct.RealmID != filter.Scope.RealmID {
			continue
		}
		page.Accounts = append(page.Accounts, *acct)
	}
	page.Total = len(page.Accounts)
	return page, nil
}

type recordingActivitySink struct {
	onLog   func(types.ActivityRecord)
	records []types.ActivityRecord
}

func (r *recordingActivitySink) Log(_ context.Context, record types.ActivityRecord) error {
	r.records = append(r.records, record)
	if r.onLog != nil {
		r.onLog(record)
	}
	return nil
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time {
	return f.t
}

type stubFeatureGate struct {
	enabled bool
	err     error
	keys    []string
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return false, s.err
	}
	return s.enabled, nil
}
