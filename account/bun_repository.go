package account

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-accounts/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed account repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type accountStore interface {
	repository.Repository[*Record]
}

// Repository implements types.AccountRepository using Bun. Provisioning
// writes (Create/CreateBatch) run the account, personal recipient, and
// self-subscription inserts in a single transaction.
type Repository struct {
	accountStore
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the default account repository.
func NewRepository(cfg RepositoryConfig, opts ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("account: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}

	options := applyRepositoryOptions(opts)
	if options.CacheEnabled {
		if _, ok := repo.(*repositorycache.CachedRepository[*Record]); !ok {
			cacheCfg := cache.DefaultConfig()
			if options.CacheConfig != nil {
				cacheCfg = *options.CacheConfig
			}
			cacheService, err := cache.NewCacheService(cacheCfg)
			if err != nil {
				return nil, err
			}
			repo = repositorycache.New(repo, cacheService, cache.NewDefaultKeySerializer())
		}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		accountStore: repo,
		db:           cfg.DB,
		clock:        clock,
		idGen:        idGen,
	}, nil
}

// The domain-shaped Create/Update/GetByID methods shadow the embedded store's
// generic signatures, so only the domain contract is asserted here.
var _ types.AccountRepository = (*Repository)(nil)

// GetByID loads an account by identifier.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*types.Account, error) {
	if id == uuid.Nil {
		return nil, types.ErrAccountIDRequired
	}
	rec, err := r.Get(ctx, repository.SelectBy("id", "=", id.String()))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// GetByEmail loads an account by normalized email within the realm.
func (r *Repository) GetByEmail(ctx context.Context, realmID uuid.UUID, email string) (*types.Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, types.ErrEmailRequired
	}
	rec, err := r.Get(ctx,
		emailCriteria(email),
		realmCriteria(realmID),
	)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// Create persists the account along with its personal recipient and
// self-subscription in one transaction.
func (r *Repository) Create(ctx context.Context, account *types.Account) (*types.Account, error) {
	if account == nil {
		return nil, errors.New("account: account required")
	}
	if r.db == nil {
		return nil, errors.New("account: create requires bun DB")
	}

	rec := fromDomain(account)
	r.prepareRecord(rec)

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
			return err
		}
		return r.insertPersonalObjects(ctx, tx, rec)
	})
	if err != nil {
		return nil, err
	}
	return toDomain(rec), nil
}

// CreateBatch bulk-inserts unsaved accounts plus their personal recipients
// and subscriptions in one transaction. Accounts come from the profile
// builder, so they already carry identity, credential, and workflow fields.
func (r *Repository) CreateBatch(ctx context.Context, accounts []*types.Account) ([]*types.Account, error) {
	if len(accounts) == 0 {
		return nil, nil
	}
	if r.db == nil {
		return nil, errors.New("account: create requires bun DB")
	}

	recs := make([]*Record, 0, len(accounts))
	for _, account := range accounts {
		if account == nil {
			return nil, errors.New("account: account required")
		}
		rec := fromDomain(account)
		r.prepareRecord(rec)
		recs = append(recs, rec)
	}

	recipients := make([]*RecipientRecord, 0, len(recs))
	subscriptions := make([]*SubscriptionRecord, 0, len(recs))
	now := r.clock.Now()
	for _, rec := range recs {
		recipient := &RecipientRecord{
			ID:     r.idGen.UUID(),
			Type:   int(types.RecipientPersonal),
			TypeID: rec.ID,
		}
		recipients = append(recipients, recipient)
		subscriptions = append(subscriptions, &SubscriptionRecord{
			ID:            r.idGen.UUID(),
			UserProfileID: rec.ID,
			RecipientID:   recipient.ID,
			Active:        true,
			CreatedAt:     now,
		})
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&recs).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&recipients).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&subscriptions).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]*types.Account, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDomain(rec))
	}
	return out, nil
}

// Update persists field changes on an existing account. It does not touch
// recipient or subscription rows.
func (r *Repository) Update(ctx context.Context, account *types.Account) (*types.Account, error) {
	if account == nil || account.ID == uuid.Nil {
		return nil, types.ErrAccountIDRequired
	}
	updated, err := r.accountStore.Update(ctx, fromDomain(account))
	if err != nil {
		return nil, err
	}
	return toDomain(updated), nil
}

// ListAccounts returns a paginated, realm-scoped account listing.
func (r *Repository) ListAccounts(ctx context.Context, filter types.AccountInventoryFilter) (types.AccountInventoryPage, error) {
	pagination := filter.Pagination
	if pagination.Limit <= 0 {
		pagination.Limit = 50
	}
	if pagination.Offset < 0 {
		pagination.Offset = 0
	}

	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.OrderExpr("date_joined ASC").
				Limit(pagination.Limit).
				Offset(pagination.Offset)
			return applyInventoryFilter(q, filter)
		},
	}

	rows, total, err := r.List(ctx, criteria...)
	if err != nil {
		return types.AccountInventoryPage{}, err
	}
	accounts := make([]types.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, *toDomain(row))
	}
	return types.AccountInventoryPage{
		Accounts:   accounts,
		Total:      total,
		NextOffset: pagination.Offset + pagination.Limit,
		HasMore:    pagination.Offset+pagination.Limit < total,
	}, nil
}

// PersonalObjects counts the personal recipient and subscription rows tied to
// the account. Provisioning leaves exactly one of each.
func (r *Repository) PersonalObjects(ctx context.Context, accountID uuid.UUID) (recipients, subscriptions int, err error) {
	if r.db == nil {
		return 0, 0, errors.New("account: counts require bun DB")
	}
	recipients, err = r.db.NewSelect().
		Model((*RecipientRecord)(nil)).
		Where("type = ?", int(types.RecipientPersonal)).
		Where("type_id = ?", accountID).
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	subscriptions, err = r.db.NewSelect().
		Model((*SubscriptionRecord)(nil)).
		Where("user_profile_id = ?", accountID).
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	return recipients, subscriptions, nil
}

func (r *Repository) prepareRecord(rec *Record) {
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	now := r.clock.Now()
	if rec.DateJoined.IsZero() {
		rec.DateJoined = now
	}
	if rec.LastLogin.IsZero() {
		rec.LastLogin = now
	}
}

func (r *Repository) insertPersonalObjects(ctx context.Context, tx bun.Tx, rec *Record) error {
	recipient := &RecipientRecord{
		ID:     r.idGen.UUID(),
		Type:   int(types.RecipientPersonal),
		TypeID: rec.ID,
	}
	if _, err := tx.NewInsert().Model(recipient).Exec(ctx); err != nil {
		return err
	}
	subscription := &SubscriptionRecord{
		ID:            r.idGen.UUID(),
		UserProfileID: rec.ID,
		RecipientID:   recipient.ID,
		Active:        true,
		CreatedAt:     r.clock.Now(),
	}
	_, err := tx.NewInsert().Model(subscription).Exec(ctx)
	return err
}

// emailCriteria matches case-insensitively: stored emails keep their
// local-part casing, so lookups must not depend on it.
func emailCriteria(email string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("lower(email) = lower(?)", email)
	}
}

func realmCriteria(realmID uuid.UUID) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if realmID != uuid.Nil {
			q = q.Where("realm_id = ?", realmID)
		}
		return q
	}
}

func applyInventoryFilter(q *bun.SelectQuery, filter types.AccountInventoryFilter) *bun.SelectQuery {
	if filter.Scope.RealmID != uuid.Nil {
		q = q.Where("realm_id = ?", filter.Scope.RealmID)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsBot != nil {
		q = q.Where("is_bot = ?", *filter.IsBot)
	}
	if len(filter.AccountIDs) > 0 {
		ids := make([]string, 0, len(filter.AccountIDs))
		for _, id := range filter.AccountIDs {
			ids = append(ids, id.String())
		}
		q = q.Where("id IN (?)", bun.In(ids))
	}
	if keyword := strings.ToLower(strings.TrimSpace(filter.Keyword)); keyword != "" {
		pattern := "%" + keyword + "%"
		q = q.Where("(lower(email) LIKE ? OR lower(full_name) LIKE ?)", pattern, pattern)
	}
	return q
}
