package command

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-accounts/account"
	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/goliatone/go-accounts/scope"
	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

// BulkAccountSpec describes one account in a bulk provisioning request.
type BulkAccountSpec struct {
	Email         string
	Password      *string
	FullName      string
	ShortName     string
	Active        *bool
	BotType       *types.BotType
	BotOwnerID    *uuid.UUID
	IsMirrorDummy bool
	TosVersion    *string
	Timezone      string
}

// BulkAccountProvisionInput applies account creation in bulk. Profiles are
// built unsaved and inserted through a single batch write, so a storage
// failure provisions none of them.
type BulkAccountProvisionInput struct {
	Realm           *types.Realm
	Specs           []BulkAccountSpec
	Actor           types.ActorRef
	Scope           types.ScopeFilter
	ContinueOnError bool
	DryRun          bool
	Results         *[]BulkAccountProvisionResult
}

// Type implements gocommand.Message.
func (BulkAccountProvisionInput) Type() string {
	return "command.account.provision.bulk"
}

// Validate implements gocommand.Message.
func (input BulkAccountProvisionInput) Validate() error {
	switch {
	case input.Realm == nil:
		return ErrRealmRequired
	case len(input.Specs) == 0:
		return ErrAccountsRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	default:
		return nil
	}
}

// BulkAccountProvisionResult captures the outcome for a single record.
type BulkAccountProvisionResult struct {
	Index     int
	AccountID uuid.UUID
	Email     string
	Err       error
}

// BulkAccountProvisionCommand provisions accounts in bulk.
type BulkAccountProvisionCommand struct {
	repo        types.AccountRepository
	builder     *account.Builder
	clock       types.Clock
	sink        types.ActivitySink
	hooks       types.Hooks
	logger      types.Logger
	guard       scope.Guard
	featureGate featuregate.FeatureGate
}

// BulkAccountProvisionCommandConfig wires the bulk handler.
type BulkAccountProvisionCommandConfig struct {
	Repository  types.AccountRepository
	Builder     *account.Builder
	Clock       types.Clock
	Activity    types.ActivitySink
	Hooks       types.Hooks
	Logger      types.Logger
	ScopeGuard  scope.Guard
	FeatureGate featuregate.FeatureGate
}

// NewBulkAccountProvisionCommand constructs the bulk provisioning handler.
func NewBulkAccountProvisionCommand(cfg BulkAccountProvisionCommandConfig) *BulkAccountProvisionCommand {
	builder := cfg.Builder
	if builder == nil {
		builder = account.NewBuilder(account.BuilderConfig{Clock: cfg.Clock})
	}
	return &BulkAccountProvisionCommand{
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

var _ gocommand.Commander[BulkAccountProvisionInput] = (*BulkAccountProvisionCommand)(nil)

// Execute builds every profile unsaved, then persists the valid ones in one
// batch. Per-record build failures are reported through Results; the batch
// write is all-or-nothing.
func (c *BulkAccountProvisionCommand) Execute(ctx context.Context, input BulkAccountProvisionInput) error {
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

	results := make([]BulkAccountProvisionResult, 0, len(input.Specs))
	var errs []error
	built := make([]*types.Account, 0, len(input.Specs))
	builtIndexes := make([]int, 0, len(input.Specs))

	for idx, spec := range input.Specs {
		result := BulkAccountProvisionResult{
			Index: idx,
			Email: account.NormalizeEmail(spec.Email),
		}

		acct, buildErr := c.buildSpec(ctx, input.Realm, spec, scopeFilter)
		if buildErr != nil {
			buildErr = bulkProvisionError(buildErr, bulkProvisionMetadata(idx, result.Email))
			result.Err = buildErr
			results = append(results, result)
			errs = append(errs, buildErr)
			if !input.ContinueOnError {
				break
			}
			continue
		}

		built = append(built, acct)
		builtIndexes = append(builtIndexes, len(results))
		results = append(results, result)
	}

	aborted := len(errs) > 0 && !input.ContinueOnError

	if !input.DryRun && !aborted && len(built) > 0 {
		created, createErr := c.repo.CreateBatch(ctx, built)
		if createErr != nil {
			createErr = bulkProvisionError(createErr, map[string]any{"count": len(built)})
			errs = append(errs, createErr)
			for _, pos := range builtIndexes {
				results[pos].Err = createErr
			}
		} else {
			occurred := now(c.clock)
			for i, acct := range created {
				results[builtIndexes[i]].AccountID = acct.ID
				record := types.ActivityRecord{
					AccountID:  acct.ID,
					ActorID:    input.Actor.ID,
					RealmID:    scopeFilter.RealmID,
					Verb:       "account.created",
					ObjectType: "account",
					ObjectID:   acct.ID.String(),
					Channel:    "accounts",
					Data: map[string]any{
						"email":  acct.Email,
						"is_bot": acct.IsBot,
						"bulk":   true,
					},
					OccurredAt: occurred,
				}
				logActivity(ctx, c.sink, record)
				emitActivityHook(ctx, c.hooks, record)
				emitAccountCreateHook(ctx, c.hooks, types.AccountEvent{
					AccountID:  acct.ID,
					RealmID:    acct.RealmID,
					ActorID:    input.Actor.ID,
					Email:      acct.Email,
					IsBot:      acct.IsBot,
					OccurredAt: occurred,
				})
			}
		}
	}

	if input.Results != nil {
		*input.Results = append((*input.Results)[:0], results...)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (c *BulkAccountProvisionCommand) buildSpec(ctx context.Context, realm *types.Realm, spec BulkAccountSpec, scopeFilter types.ScopeFilter) (*types.Account, error) {
	if strings.TrimSpace(spec.Email) == "" {
		return nil, ErrEmailRequired
	}
	if spec.BotType != nil {
		enabled, err := featureEnabled(ctx, c.featureGate, featureAccountsBots, scopeFilter, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if !enabled {
			return nil, ErrBotsDisabled
		}
	}
	active := true
	if spec.Active != nil {
		active = *spec.Active
	}
	return c.builder.Build(account.ProfileParams{
		Realm:         realm,
		Email:         spec.Email,
		Password:      spec.Password,
		Active:        active,
		BotType:       spec.BotType,
		FullName:      spec.FullName,
		ShortName:     spec.ShortName,
		BotOwnerID:    spec.BotOwnerID,
		IsMirrorDummy: spec.IsMirrorDummy,
		TosVersion:    spec.TosVersion,
		Timezone:      spec.Timezone,
	})
}

func bulkProvisionMetadata(index int, email string) map[string]any {
	metadata := map[string]any{
		"index": index,
	}
	if email != "" {
		metadata["email"] = email
	}
	return metadata
}

func bulkProvisionError(err error, metadata map[string]any) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.WithMetadata(metadata)
	}

	category := goerrors.CategoryInternal
	code := goerrors.CodeInternal
	switch {
	case errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrAccountsRequired),
		errors.Is(err, ErrRealmRequired),
		errors.Is(err, ErrActorRequired):
		category = goerrors.CategoryValidation
		code = goerrors.CodeBadRequest
	case errors.Is(err, types.ErrUnauthorizedScope):
		category = goerrors.CategoryAuthz
		code = goerrors.CodeForbidden
	}

	return goerrors.Wrap(err, category, "go-accounts: bulk provisioning failed").
		WithCode(code).
		WithMetadata(metadata)
}
