package types

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RecipientType enumerates the addressable message target kinds.
type RecipientType int

const (
	RecipientPersonal RecipientType = 1
	RecipientStream   RecipientType = 2
	RecipientHuddle   RecipientType = 3
)

// BotType classifies bot accounts. A nil *BotType means the account is human.
type BotType int

const (
	BotTypeDefault         BotType = 1
	BotTypeIncomingWebhook BotType = 2
	BotTypeOutgoingWebhook BotType = 3
	BotTypeEmbedded        BotType = 4
)

// AvatarSource tells the host application where to resolve an avatar from.
type AvatarSource string

const (
	AvatarFromGravatar AvatarSource = "G"
	AvatarFromUser     AvatarSource = "U"
)

// TutorialStatus tracks onboarding tutorial progress.
type TutorialStatus string

const (
	TutorialWaiting  TutorialStatus = "W"
	TutorialStarted  TutorialStatus = "S"
	TutorialFinished TutorialStatus = "F"
)

// Realm is the tenant/organization scoping accounts and streams. New accounts
// inherit the realm-level defaults at build time.
type Realm struct {
	ID                        uuid.UUID
	Name                      string
	Domain                    string
	DefaultLanguage           string
	DefaultTwentyFourHourTime bool
}

// Account is the storage-agnostic representation of a user account. It carries
// identity, credential, bot, preference, notification, and workflow fields.
type Account struct {
	ID      uuid.UUID
	RealmID uuid.UUID

	Email     string
	FullName  string
	ShortName string

	PasswordHash string
	APIKey       string

	IsActive      bool
	IsRealmAdmin  bool
	IsBot         bool
	BotType       *BotType
	BotOwnerID    *uuid.UUID
	IsMirrorDummy bool
	TosVersion    *string

	AvatarSource AvatarSource

	// Realm-scoped preference fields. CopySettings transfers exactly this
	// set (plus the notification fields and FullName) between accounts.
	DefaultLanguage    string
	Timezone           string
	TwentyFourHourTime bool
	LeftSideUserlist   bool
	EmojiSet           string
	HighContrastMode   bool
	NightMode          bool
	TranslateEmoticons bool
	EnterSends         bool

	EnableStreamDesktopNotifications bool
	EnableStreamSounds               bool
	EnableDesktopNotifications       bool
	EnableSounds                     bool
	EnableOfflineEmailNotifications  bool
	EnableOfflinePushNotifications   bool
	EnableOnlinePushNotifications    bool
	EnableDigestEmails               bool

	TutorialStatus  TutorialStatus
	OnboardingSteps string
	Pointer         int

	DefaultSendingStreamID        *uuid.UUID
	DefaultEventsRegisterStreamID *uuid.UUID
	DefaultAllPublicStreams       *bool

	DateJoined time.Time
	LastLogin  time.Time
}

// UnusablePasswordPrefix marks hashes that can never verify. Bot and inactive
// accounts always carry it.
const UnusablePasswordPrefix = "!"

// HasUsablePassword reports whether the stored hash can ever verify a
// password attempt.
func (a *Account) HasUsablePassword() bool {
	if a == nil || a.PasswordHash == "" {
		return false
	}
	return a.PasswordHash[:1] != UnusablePasswordPrefix
}

// Recipient is an addressable message target. Personal recipients point back
// at the owning account through TypeID.
type Recipient struct {
	ID     uuid.UUID
	Type   RecipientType
	TypeID uuid.UUID
}

// Subscription links an account to a recipient it receives messages from.
type Subscription struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	RecipientID uuid.UUID
	Active      bool
	CreatedAt   time.Time
}

// Stream references a named message stream within a realm. Streams are managed
// elsewhere; accounts only hold default-stream references.
type Stream struct {
	ID      uuid.UUID
	RealmID uuid.UUID
	Name    string
}

// ScopeFilter carries the realm scoping applied to commands and queries.
type ScopeFilter struct {
	RealmID uuid.UUID
}

// Pagination supports inventory query pagination.
type Pagination struct {
	Limit  int
	Offset int
}

// ActorRef identifies who or what initiated an operation.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

// AccountEvent is emitted after an account has been provisioned.
type AccountEvent struct {
	AccountID  uuid.UUID
	RealmID    uuid.UUID
	ActorID    uuid.UUID
	Email      string
	IsBot      bool
	OccurredAt time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterAccountCreate func(context.Context, AccountEvent)
	AfterActivity      func(context.Context, ActivityRecord)
}

// ActivityRecord describes sink inputs and is shared across sink and query
// layers.
type ActivityRecord struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	ActorID    uuid.UUID
	RealmID    uuid.UUID
	Verb       string
	ObjectType string
	ObjectID   string
	Channel    string
	Data       map[string]any
	OccurredAt time.Time
}

// ActivitySink is the minimal DI contract for emitting activity. Keep it
// stable and limited to Log so hosts can swap sinks without breaking changes.
type ActivitySink interface {
	Log(context.Context, ActivityRecord) error
}

// ActivityFilter narrows activity feed queries.
type ActivityFilter struct {
	Actor      ActorRef
	Scope      ScopeFilter
	AccountID  uuid.UUID
	ActorID    uuid.UUID
	Verbs      []string
	Channel    string
	Since      *time.Time
	Until      *time.Time
	Pagination Pagination
}

// Type implements gocommand.Message for query inputs.
func (ActivityFilter) Type() string {
	return "query.activity.feed"
}

// Validate implements gocommand.Message.
func (filter ActivityFilter) Validate() error {
	if filter.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// ActivityPage represents a paginated feed response.
type ActivityPage struct {
	Records    []ActivityRecord
	Total      int
	NextOffset int
	HasMore    bool
}

// ActivityRepository exposes read-side access to activity logs.
type ActivityRepository interface {
	ListActivity(ctx context.Context, filter ActivityFilter) (ActivityPage, error)
}

// AccountRepository abstracts the persistence layer accounts are provisioned
// through. Create and CreateBatch must also create the personal Recipient and
// Subscription rows in the same transaction as the account row.
type AccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, realmID uuid.UUID, email string) (*Account, error)
	Create(ctx context.Context, account *Account) (*Account, error)
	CreateBatch(ctx context.Context, accounts []*Account) ([]*Account, error)
	Update(ctx context.Context, account *Account) (*Account, error)
	ListAccounts(ctx context.Context, filter AccountInventoryFilter) (AccountInventoryPage, error)
}

// AccountInventoryFilter collects filters accepted by inventory queries.
type AccountInventoryFilter struct {
	Actor      ActorRef
	Scope      ScopeFilter
	Keyword    string
	IsActive   *bool
	IsBot      *bool
	Pagination Pagination
	AccountIDs []uuid.UUID
}

// Type implements gocommand.Message for query inputs.
func (AccountInventoryFilter) Type() string {
	return "query.account.inventory"
}

// Validate implements gocommand.Message.
func (filter AccountInventoryFilter) Validate() error {
	if filter.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// AccountInventoryPage represents a paginated list of accounts.
type AccountInventoryPage struct {
	Accounts   []Account
	Total      int
	NextOffset int
	HasMore    bool
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = errors.New("go-accounts: actor reference required")
	// ErrAccountIDRequired indicates an account identifier was omitted.
	ErrAccountIDRequired = errors.New("go-accounts: account id required")
	// ErrRealmRequired indicates the realm reference was not supplied.
	ErrRealmRequired = errors.New("go-accounts: realm required")
	// ErrEmailRequired indicates the account email address was missing.
	ErrEmailRequired = errors.New("go-accounts: email required")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-accounts: service not ready")
	// ErrMissingAccountRepository occurs when no account repository was supplied.
	ErrMissingAccountRepository = errors.New("go-accounts: missing account repository")
	// ErrMissingActivityRepository occurs when no activity repository was supplied.
	ErrMissingActivityRepository = errors.New("go-accounts: missing activity repository")
)
