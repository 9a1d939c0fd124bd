package account

import "github.com/goliatone/go-accounts/pkg/types"

// CopySettings transfers the enumerated preference and notification fields
// plus FullName from source to target. It does not save, to avoid extra
// database queries when callers batch their writes; identity, credential, and
// workflow fields are left untouched.
func CopySettings(source, target *types.Account) {
	if source == nil || target == nil {
		return
	}

	target.DefaultLanguage = source.DefaultLanguage
	target.Timezone = source.Timezone
	target.TwentyFourHourTime = source.TwentyFourHourTime
	target.LeftSideUserlist = source.LeftSideUserlist
	target.EmojiSet = source.EmojiSet
	target.HighContrastMode = source.HighContrastMode
	target.NightMode = source.NightMode
	target.TranslateEmoticons = source.TranslateEmoticons
	target.EnterSends = source.EnterSends

	target.EnableStreamDesktopNotifications = source.EnableStreamDesktopNotifications
	target.EnableStreamSounds = source.EnableStreamSounds
	target.EnableDesktopNotifications = source.EnableDesktopNotifications
	target.EnableSounds = source.EnableSounds
	target.EnableOfflineEmailNotifications = source.EnableOfflineEmailNotifications
	target.EnableOfflinePushNotifications = source.EnableOfflinePushNotifications
	target.EnableOnlinePushNotifications = source.EnableOnlinePushNotifications
	target.EnableDigestEmails = source.EnableDigestEmails

	target.FullName = source.FullName
}
