// Package command exposes go-command compatible command handlers implementing
// go-accounts business logic (account provisioning, bulk provisioning, etc.).
// Commands are wired by the service layer and can be invoked by any transport.
package command
