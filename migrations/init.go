package migrations

import (
	"io/fs"

	accounts "github.com/goliatone/go-accounts"
)

func init() {
	coreFS, err := fs.Sub(accounts.GetCoreMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(coreFS)
}
