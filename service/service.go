package service

import (
	"context"

	"github.com/goliatone/go-accounts/account"
	"github.com/goliatone/go-accounts/command"
	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/goliatone/go-accounts/query"
	"github.com/goliatone/go-accounts/scope"
	featuregate "github.com/goliatone/go-featuregate/gate"
)

// Service is the entry point for go-accounts. It wires repositories, hooks,
// and command/query facades supplied by the host application.
type Service struct {
	cfg          Config
	commands     Commands
	queries      Queries
	activityRepo types.ActivityRepository
	scopeGuard   scope.Guard
}

// Commands exposes the service command handlers.
type Commands struct {
	AccountCreate        *command.AccountCreateCommand
	BulkAccountProvision *command.BulkAccountProvisionCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	AccountInventory *query.AccountInventoryQuery
	AccountDetail    *query.AccountDetailQuery
	ActivityFeed     *query.ActivityFeedQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun.DB, cached repositories, hooks, etc.).
type Config struct {
	AccountRepository   types.AccountRepository
	ActivityRepository  types.ActivityRepository
	ActivitySink        types.ActivitySink
	Builder             *account.Builder
	Hooks               types.Hooks
	Clock               types.Clock
	IDGenerator         types.IDGenerator
	Logger              types.Logger
	FeatureGate         featuregate.FeatureGate
	ScopeResolver       types.ScopeResolver
	AuthorizationPolicy types.AuthorizationPolicy
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	actRepo := norm.ActivityRepository
	if actRepo == nil {
		if sinkRepo, ok := norm.ActivitySink.(types.ActivityRepository); ok {
			actRepo = sinkRepo
		}
	}

	scopeGuard := scope.Ensure(scope.NewGuard(norm.ScopeResolver, norm.AuthorizationPolicy))

	s := &Service{
		cfg:          norm,
		activityRepo: actRepo,
		scopeGuard:   scopeGuard,
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Builder == nil {
		cfg.Builder = account.NewBuilder(account.BuilderConfig{
			Clock: cfg.Clock,
			IDGen: cfg.IDGenerator,
		})
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.AccountRepository != nil &&
		s.activityRepo != nil
}

// HealthCheck surfaces missing configuration so upstream transports can fail
// fast before accepting traffic.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if s.cfg.AccountRepository == nil {
		return types.ErrMissingAccountRepository
	}
	if s.activityRepo == nil {
		return types.ErrMissingActivityRepository
	}
	return nil
}

// ScopeGuard exposes the guard instance used internally so transports can
// reuse the same resolver/policy combination.
func (s *Service) ScopeGuard() scope.Guard {
	if s == nil {
		return scope.NopGuard()
	}
	return scope.Ensure(s.scopeGuard)
}

// ActivitySink returns the configured sink so transports can emit activity
// records for auxiliary workflows.
func (s *Service) ActivitySink() types.ActivitySink {
	if s == nil {
		return nil
	}
	return s.cfg.ActivitySink
}

func (s *Service) buildCommands() Commands {
	return Commands{
		AccountCreate: command.NewAccountCreateCommand(command.AccountCreateCommandConfig{
			Repository:  s.cfg.AccountRepository,
			Builder:     s.cfg.Builder,
			Clock:       s.cfg.Clock,
			Activity:    s.cfg.ActivitySink,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
			ScopeGuard:  s.scopeGuard,
			FeatureGate: s.cfg.FeatureGate,
		}),
		BulkAccountProvision: command.NewBulkAccountProvisionCommand(command.BulkAccountProvisionCommandConfig{
			Repository:  s.cfg.AccountRepository,
			Builder:     s.cfg.Builder,
			Clock:       s.cfg.Clock,
			Activity:    s.cfg.ActivitySink,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
			ScopeGuard:  s.scopeGuard,
			FeatureGate: s.cfg.FeatureGate,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		AccountInventory: query.NewAccountInventoryQuery(s.cfg.AccountRepository, s.cfg.Logger, s.scopeGuard),
		AccountDetail:    query.NewAccountDetailQuery(s.cfg.AccountRepository, s.scopeGuard),
		ActivityFeed:     query.NewActivityFeedQuery(s.activityRepo, s.scopeGuard),
	}
}
