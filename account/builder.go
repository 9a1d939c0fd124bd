package account

import (
	"crypto/rand"
	"encoding/json"
	"strings"

	"github.com/goliatone/go-accounts/pkg/apikey"
	"github.com/goliatone/go-accounts/pkg/types"
	auth "github.com/goliatone/go-auth"
	"github.com/google/uuid"
)

const defaultEmojiSet = "google"

// ProfileParams captures the inputs for constructing an unsaved account. The
// zero TutorialStatus defaults to waiting.
type ProfileParams struct {
	Realm          *types.Realm
	Email          string
	Password       *string
	Active         bool
	BotType        *types.BotType
	FullName       string
	ShortName      string
	BotOwnerID     *uuid.UUID
	IsMirrorDummy  bool
	TosVersion     *string
	Timezone       string
	TutorialStatus types.TutorialStatus
	EnterSends     bool
}

// BuilderConfig wires the deterministic dependencies of the profile builder.
type BuilderConfig struct {
	Clock types.Clock
	IDGen types.IDGenerator
}

// Builder constructs unsaved accounts so callers can apply further fields and
// bulk-insert without touching the database per record.
type Builder struct {
	clock types.Clock
	idGen types.IDGenerator
}

// NewBuilder constructs the builder, defaulting missing dependencies.
func NewBuilder(cfg BuilderConfig) *Builder {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	return &Builder{
		clock: clock,
		idGen: idGen,
	}
}

// Build returns an unsaved account: email normalized, join/login timestamps
// stamped, realm defaults inherited, an empty onboarding-steps list
// serialized, and a fresh API key attached. Bot and inactive accounts are
// forced onto an unusable password regardless of the supplied one.
func (b *Builder) Build(params ProfileParams) (*types.Account, error) {
	if params.Realm == nil {
		return nil, types.ErrRealmRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, types.ErrEmailRequired
	}

	now := b.clock.Now()
	tutorial := params.TutorialStatus
	if tutorial == "" {
		tutorial = types.TutorialWaiting
	}

	onboarding, err := json.Marshal([]string{})
	if err != nil {
		return nil, err
	}

	acct := &types.Account{
		ID:      b.idGen.UUID(),
		RealmID: params.Realm.ID,

		Email:     email,
		FullName:  params.FullName,
		ShortName: params.ShortName,

		IsActive:      params.Active,
		IsBot:         params.BotType != nil,
		BotOwnerID:    params.BotOwnerID,
		IsMirrorDummy: params.IsMirrorDummy,
		TosVersion:    params.TosVersion,

		AvatarSource: types.AvatarFromGravatar,

		DefaultLanguage:    params.Realm.DefaultLanguage,
		Timezone:           params.Timezone,
		TwentyFourHourTime: params.Realm.DefaultTwentyFourHourTime,
		EmojiSet:           defaultEmojiSet,
		EnterSends:         params.EnterSends,

		TutorialStatus:  tutorial,
		OnboardingSteps: string(onboarding),
		Pointer:         -1,

		DateJoined: now,
		LastLogin:  now,
	}
	if params.BotType != nil {
		bt := *params.BotType
		acct.BotType = &bt
	}

	password := params.Password
	if acct.IsBot || !params.Active {
		password = nil
	}
	if err := setPassword(acct, password); err != nil {
		return nil, err
	}

	acct.APIKey = apikey.New()
	return acct, nil
}

// NormalizeEmail trims surrounding whitespace and lowercases the domain part,
// leaving the local part untouched.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// setPassword hashes the supplied password, or marks the account unusable
// when none is supplied.
func setPassword(acct *types.Account, password *string) error {
	if password == nil {
		acct.PasswordHash = unusablePassword()
		return nil
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}
	acct.PasswordHash = hash
	return nil
}

const unusableFillerLength = 40

// unusablePassword returns a hash-shaped marker that can never verify. The
// random filler keeps markers distinct so they never compare equal across
// accounts.
func unusablePassword() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	buf := make([]byte, unusableFillerLength)
	if _, err := rand.Read(buf); err != nil {
		panic("account: csprng unavailable: " + err.Error())
	}
	for i := range buf {
		buf[i] = charset[int(buf[i])%len(charset)]
	}
	return types.UnusablePasswordPrefix + string(buf)
}
