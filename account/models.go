package account

import (
	"time"

	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the user_profiles row.
type Record struct {
	bun.BaseModel `bun:"table:user_profiles"`

	ID      uuid.UUID `bun:",pk,type:uuid"`
	RealmID uuid.UUID `bun:"realm_id,type:uuid,notnull"`

	Email     string `bun:"email,notnull"`
	FullName  string `bun:"full_name"`
	ShortName string `bun:"short_name"`

	PasswordHash string `bun:"password_hash"`
	APIKey       string `bun:"api_key"`

	IsActive      bool       `bun:"is_active,notnull"`
	IsRealmAdmin  bool       `bun:"is_realm_admin,notnull"`
	IsBot         bool       `bun:"is_bot,notnull"`
	BotType       *int       `bun:"bot_type"`
	BotOwnerID    *uuid.UUID `bun:"bot_owner_id,type:uuid"`
	IsMirrorDummy bool       `bun:"is_mirror_dummy,notnull"`
	TosVersion    *string    `bun:"tos_version"`

	AvatarSource string `bun:"avatar_source"`

	DefaultLanguage    string `bun:"default_language"`
	Timezone           string `bun:"timezone"`
	TwentyFourHourTime bool   `bun:"twenty_four_hour_time"`
	LeftSideUserlist   bool   `bun:"left_side_userlist"`
	EmojiSet           string `bun:"emojiset"`
	HighContrastMode   bool   `bun:"high_contrast_mode"`
	NightMode          bool   `bun:"night_mode"`
	TranslateEmoticons bool   `bun:"translate_emoticons"`
	EnterSends         bool   `bun:"enter_sends"`

	EnableStreamDesktopNotifications bool `bun:"enable_stream_desktop_notifications"`
	EnableStreamSounds               bool `bun:"enable_stream_sounds"`
	EnableDesktopNotifications       bool `bun:"enable_desktop_notifications"`
	EnableSounds                     bool `bun:"enable_sounds"`
	EnableOfflineEmailNotifications  bool `bun:"enable_offline_email_notifications"`
	EnableOfflinePushNotifications   bool `bun:"enable_offline_push_notifications"`
	EnableOnlinePushNotifications    bool `bun:"enable_online_push_notifications"`
	EnableDigestEmails               bool `bun:"enable_digest_emails"`

	TutorialStatus  string `bun:"tutorial_status"`
	OnboardingSteps string `bun:"onboarding_steps"`
	Pointer         int    `bun:"pointer,notnull"`

	DefaultSendingStreamID        *uuid.UUID `bun:"default_sending_stream_id,type:uuid"`
	DefaultEventsRegisterStreamID *uuid.UUID `bun:"default_events_register_stream_id,type:uuid"`
	DefaultAllPublicStreams       *bool      `bun:"default_all_public_streams"`

	DateJoined time.Time `bun:"date_joined,notnull"`
	LastLogin  time.Time `bun:"last_login,notnull"`
}

// RecipientRecord models the recipients row. Personal recipients point back at
// the owning user profile through TypeID.
type RecipientRecord struct {
	bun.BaseModel `bun:"table:recipients"`

	ID     uuid.UUID `bun:",pk,type:uuid"`
	Type   int       `bun:"type,notnull"`
	TypeID uuid.UUID `bun:"type_id,type:uuid,notnull"`
}

// SubscriptionRecord models the subscriptions row.
type SubscriptionRecord struct {
	bun.BaseModel `bun:"table:subscriptions"`

	ID            uuid.UUID `bun:",pk,type:uuid"`
	UserProfileID uuid.UUID `bun:"user_profile_id,type:uuid,notnull"`
	RecipientID   uuid.UUID `bun:"recipient_id,type:uuid,notnull"`
	Active        bool      `bun:"active,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

// RealmRecord models the realms row.
type RealmRecord struct {
	bun.BaseModel `bun:"table:realms"`

	ID                        uuid.UUID `bun:",pk,type:uuid"`
	Name                      string    `bun:"name"`
	Domain                    string    `bun:"domain"`
	DefaultLanguage           string    `bun:"default_language"`
	DefaultTwentyFourHourTime bool      `bun:"default_twenty_four_hour_time"`
}

// StreamRecord models the streams row. Streams are managed by the host
// application; the table exists here so stream default references resolve.
type StreamRecord struct {
	bun.BaseModel `bun:"table:streams"`

	ID      uuid.UUID `bun:",pk,type:uuid"`
	RealmID uuid.UUID `bun:"realm_id,type:uuid,notnull"`
	Name    string    `bun:"name,notnull"`
}

func fromDomain(a *types.Account) *Record {
	if a == nil {
		return nil
	}
	rec := &Record{
		ID:            a.ID,
		RealmID:       a.RealmID,
		Email:         a.Email,
		FullName:      a.FullName,
		ShortName:     a.ShortName,
		PasswordHash:  a.PasswordHash,
		APIKey:        a.APIKey,
		IsActive:      a.IsActive,
		IsRealmAdmin:  a.IsRealmAdmin,
		IsBot:         a.IsBot,
		BotOwnerID:    copyUUIDPtr(a.BotOwnerID),
		IsMirrorDummy: a.IsMirrorDummy,
		TosVersion:    copyStringPtr(a.TosVersion),
		AvatarSource:  string(a.AvatarSource),

		DefaultLanguage:    a.DefaultLanguage,
		Timezone:           a.Timezone,
		TwentyFourHourTime: a.TwentyFourHourTime,
		LeftSideUserlist:   a.LeftSideUserlist,
		EmojiSet:           a.EmojiSet,
		HighContrastMode:   a.HighContrastMode,
		NightMode:          a.NightMode,
		TranslateEmoticons: a.TranslateEmoticons,
		EnterSends:         a.EnterSends,

		EnableStreamDesktopNotifications: a.EnableStreamDesktopNotifications,
		EnableStreamSounds:               a.EnableStreamSounds,
		EnableDesktopNotifications:       a.EnableDesktopNotifications,
		EnableSounds:                     a.EnableSounds,
		EnableOfflineEmailNotifications:  a.EnableOfflineEmailNotifications,
		EnableOfflinePushNotifications:   a.EnableOfflinePushNotifications,
		EnableOnlinePushNotifications:    a.EnableOnlinePushNotifications,
		EnableDigestEmails:               a.EnableDigestEmails,

		TutorialStatus:  string(a.TutorialStatus),
		OnboardingSteps: a.OnboardingSteps,
		Pointer:         a.Pointer,

		DefaultSendingStreamID:        copyUUIDPtr(a.DefaultSendingStreamID),
		DefaultEventsRegisterStreamID: copyUUIDPtr(a.DefaultEventsRegisterStreamID),
		DefaultAllPublicStreams:       copyBoolPtr(a.DefaultAllPublicStreams),

		DateJoined: a.DateJoined,
		LastLogin:  a.LastLogin,
	}
	if a.BotType != nil {
		bt := int(*a.BotType)
		rec.BotType = &bt
	}
	return rec
}

func toDomain(rec *Record) *types.Account {
	if rec == nil {
		return nil
	}
	a := &types.Account{
		ID:            rec.ID,
		RealmID:       rec.RealmID,
		Email:         rec.Email,
		FullName:      rec.FullName,
		ShortName:     rec.ShortName,
		PasswordHash:  rec.PasswordHash,
		APIKey:        rec.APIKey,
		IsActive:      rec.IsActive,
		IsRealmAdmin:  rec.IsRealmAdmin,
		IsBot:         rec.IsBot,
		BotOwnerID:    copyUUIDPtr(rec.BotOwnerID),
		IsMirrorDummy: rec.IsMirrorDummy,
		TosVersion:    copyStringPtr(rec.TosVersion),
		AvatarSource:  types.AvatarSource(rec.AvatarSource),

		DefaultLanguage:    rec.DefaultLanguage,
		Timezone:           rec.Timezone,
		TwentyFourHourTime: rec.TwentyFourHourTime,
		LeftSideUserlist:   rec.LeftSideUserlist,
		EmojiSet:           rec.EmojiSet,
		HighContrastMode:   rec.HighContrastMode,
		NightMode:          rec.NightMode,
		TranslateEmoticons: rec.TranslateEmoticons,
		EnterSends:         rec.EnterSends,

		EnableStreamDesktopNotifications: rec.EnableStreamDesktopNotifications,
		EnableStreamSounds:               rec.EnableStreamSounds,
		EnableDesktopNotifications:       rec.EnableDesktopNotifications,
		EnableSounds:                     rec.EnableSounds,
		EnableOfflineEmailNotifications:  rec.EnableOfflineEmailNotifications,
		EnableOfflinePushNotifications:   rec.EnableOfflinePushNotifications,
		EnableOnlinePushNotifications:    rec.EnableOnlinePushNotifications,
		EnableDigestEmails:               rec.EnableDigestEmails,

		TutorialStatus:  types.TutorialStatus(rec.TutorialStatus),
		OnboardingSteps: rec.OnboardingSteps,
		Pointer:         rec.Pointer,

		DefaultSendingStreamID:        copyUUIDPtr(rec.DefaultSendingStreamID),
		DefaultEventsRegisterStreamID: copyUUIDPtr(rec.DefaultEventsRegisterStreamID),
		DefaultAllPublicStreams:       copyBoolPtr(rec.DefaultAllPublicStreams),

		DateJoined: rec.DateJoined,
		LastLogin:  rec.LastLogin,
	}
	if rec.BotType != nil {
		bt := types.BotType(*rec.BotType)
		a.BotType = &bt
	}
	return a
}

func copyUUIDPtr(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	out := *src
	return &out
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	out := *src
	return &out
}

func copyBoolPtr(src *bool) *bool {
	if src == nil {
		return nil
	}
	out := *src
	return &out
}
