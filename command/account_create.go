package command

import (
	"context"
	"strings"

	"github.com/goliatone/go-accounts/account"
	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/goliatone/go-accounts/scope"
	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

// AccountCreateInput captures the payload for account provisioning. Active
// defaults to true when nil, matching the usual invitation-less signup path.
type AccountCreateInput struct {
	Realm     *types.Realm
	Email     string
	Password  *string
	FullName  string
	ShortName string

	Active       *bool
	IsRealmAdmin bool
	BotType      *types.BotType
	BotOwnerID   *uuid.UUID
	TosVersion   *string
	Timezone     string

	AvatarSource  types.AvatarSource
	IsMirrorDummy bool

	DefaultSendingStreamID        *uuid.UUID
	DefaultEventsRegisterStreamID *uuid.UUID
	DefaultAllPublicStreams       *bool

	// SourceProfile, when set, overlays its settings onto the new account
	// after every other field has been applied. This deliberately overrides
	// prior arguments: the source profile usually has a better value for
	// defaults like timezone than the caller's guess.
	SourceProfile *types.Account

	Actor  types.ActorRef
	Scope  types.ScopeFilter
	Result *types.Account
}

// Type implements gocommand.Message.
func (AccountCreateInput) Type() string {
	return "command.account.create"
}

// Validate implements gocommand.Message.
func (input AccountCreateInput) Validate() error {
	switch {
	case input.Realm == nil:
		return ErrRealmRequired
	case strings.TrimSpace(input.Email) == "":
		return ErrEmailRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	case input.SourceProfile != nil && input.SourceProfile.RealmID != input.Realm.ID:
		return ErrSourceProfileRealmMismatch
	default:
		return nil
	}
}

// AccountCreateCommand provisions accounts along with their personal
// recipient and self-subscription.
type AccountCreateCommand struct {
	repo        types.AccountRepository
	builder     *account.Builder
	clock       types.Clock
	sink        types.ActivitySink
	hooks       types.Hooks
	logger      types.Logger
	guard       scope.Guard
	featureGate featuregate.FeatureGate
}

// AccountCreateCommandConfig wires dependencies for the create command.
type AccountCreateCommandConfig struct {
	Repository  types.AccountRepository
	Builder     *account.Builder
	Clock       types.Clock
	Activity    types.ActivitySink
	Hooks       types.Hooks
	Logger      types.Logger
	ScopeGuard  scope.Guard
	FeatureGate featuregate.FeatureGate
}

// NewAccountCreateCommand constructs the create handler.
func NewAccountCreateCommand(cfg AccountCreateCommandConfig) *AccountCreateCommand {
	builder := cfg.Builder
	if builder == nil {
		builder = account.NewBuilder(account.BuilderConfig{Clock: cfg.Clock})
	}
	return &AccountCreateCommand{
		repo:        cfg.Repository,
		builder:     builder,
		clock:       safeClock(cfg.Clock),
		sink:        safeActivitySink(cfg.Activity),
		hooks:       safeHooks(cfg.Hooks),
		logger:      safeLogger(cfg.Logger),
		guard:       safeScopeGuard(cfg.ScopeGuard),
		featureGate: cfg.FeatureGate,
	}
}

var _ gocommand.Commander[AccountCreateInput] = (*AccountCreateCommand)(nil)

// Execute builds, persists, and announces the new account.
func (c *AccountCreateCommand) Execute(ctx context.Context, input AccountCreateInput) error {
	if c.repo == nil {
		return types.ErrMissingAccountRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	requested := input.Scope
	if requested.RealmID == uuid.Nil {
		requested.RealmID = input.Realm.ID
	}
	scopeFilter, err := c.guard.Enforce(ctx, input.Actor, requested, types.PolicyActionAccountsWrite, uuid.Nil)
	if err != nil {
		return err
	}

	if input.BotType != nil {
		enabled, err := featureEnabled(ctx, c.featureGate, featureAccountsBots, scopeFilter, uuid.Nil)
		if err != nil {
			return err
		}
		if !enabled {
			return ErrBotsDisabled
		}
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	acct, err := c.builder.Build(account.ProfileParams{
		Realm:         input.Realm,
		Email:         input.Email,
		Password:      input.Password,
		Active:        active,
		BotType:       input.BotType,
		FullName:      input.FullName,
		ShortName:     input.ShortName,
		BotOwnerID:    input.BotOwnerID,
		IsMirrorDummy: input.IsMirrorDummy,
		TosVersion:    input.TosVersion,
		Timezone:      input.Timezone,
	})
	if err != nil {
		return err
	}

	acct.IsRealmAdmin = input.IsRealmAdmin
	if input.AvatarSource != "" {
		acct.AvatarSource = input.AvatarSource
	}
	acct.DefaultSendingStreamID = input.DefaultSendingStreamID
	acct.DefaultEventsRegisterStreamID = input.DefaultEventsRegisterStreamID
	if input.DefaultAllPublicStreams != nil {
		value := *input.DefaultAllPublicStreams
		acct.DefaultAllPublicStreams = &value
	}

	if input.SourceProfile != nil {
		account.CopySettings(input.SourceProfile, acct)
	}

	created, err := c.repo.Create(ctx, acct)
	if err != nil {
		return err
	}

	occurred := now(c.clock)
	record := types.ActivityRecord{
		AccountID:  created.ID,
		ActorID:    input.Actor.ID,
		RealmID:    scopeFilter.RealmID,
		Verb:       "account.created",
		ObjectType: "account",
		ObjectID:   created.ID.String(),
		Channel:    "accounts",
		Data: map[string]any{
			"email":  created.Email,
			"is_bot": created.IsBot,
		},
		OccurredAt: occurred,
	}
	logActivity(ctx, c.sink, record)
	emitActivityHook(ctx, c.hooks, record)
	emitAccountCreateHook(ctx, c.hooks, types.AccountEvent{
		AccountID:  created.ID,
		RealmID:    created.RealmID,
		ActorID:    input.Actor.ID,
		Email:      created.Email,
		IsBot:      created.IsBot,
		OccurredAt: occurred,
	})

	if input.Result != nil && created != nil {
		*input.Result = *created
	}
	return nil
}
