package command

import (
	"errors"

	"github.com/goliatone/go-accounts/pkg/types"
)

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrRealmRequired indicates the realm reference was not supplied.
	ErrRealmRequired = types.ErrRealmRequired
	// ErrEmailRequired indicates the account email address was missing.
	ErrEmailRequired = types.ErrEmailRequired
	// ErrAccountNotFound indicates the requested account was not found.
	ErrAccountNotFound = errors.New("go-accounts: account not found")
	// ErrAccountsRequired occurs when bulk provisioning is invoked without accounts.
	ErrAccountsRequired = errors.New("go-accounts: accounts required")
	// ErrBotsDisabled indicates bot provisioning is disabled via feature gate.
	ErrBotsDisabled = errors.New("go-accounts: bot provisioning disabled")
	// ErrSourceProfileRealmMismatch occurs when settings are copied across realms.
	ErrSourceProfileRealmMismatch = errors.New("go-accounts: source profile belongs to another realm")
)
