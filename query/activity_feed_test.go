package query

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/goliatone/go-accounts/activity"
	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestActivityFeedQuery_ScopesByRealm(t *testing.T) {
	ctx := context.Background()
	db := newActivityQueryDB(t)
	applyActivityQueryDDL(t, db)
	store, err := activity.NewRepository(activity.RepositoryConfig{DB: db})
	require.NoError(t, err)

	realmA := uuid.New()
	realmB := uuid.New()
	actorID := uuid.New()

	require.NoError(t, store.Log(ctx, types.ActivityRecord{
		AccountID: uuid.New(),
		ActorID:   actorID,
		RealmID:   realmA,
		Verb:      "account.created",
	}))
	require.NoError(t, store.Log(ctx, types.ActivityRecord{
		AccountID: uuid.New(),
		ActorID:   actorID,
		RealmID:   realmB,
		Verb:      "account.created",
	}))

	feedQuery := NewActivityFeedQuery(store, nil)
	page, err := feedQuery.Query(ctx, types.ActivityFilter{
		Actor:      types.ActorRef{ID: actorID},
		Scope:      types.ScopeFilter{RealmID: realmA},
		Pagination: types.Pagination{Limit: 10},
	})

	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	require.Equal(t, realmA, page.Records[0].RealmID)
}

func TestActivityFeedQuery_RequiresActor(t *testing.T) {
	db := newActivityQueryDB(t)
	applyActivityQueryDDL(t, db)
	store, err := activity.NewRepository(activity.RepositoryConfig{DB: db})
	require.NoError(t, err)

	feedQuery := NewActivityFeedQuery(store, nil)
	_, err = feedQuery.Query(context.Background(), types.ActivityFilter{})

	require.ErrorIs(t, err, types.ErrActorRequired)
}

func newActivityQueryDB(t *testing.T) *bun.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqlDB.Close()
	})
	return db
}

func applyActivityQueryDDL(t *testing.T, db *bun.DB) {
	content, err := os.ReadFile("../data/sql/migrations/sqlite/00002_account_activity.up.sql")
	require.NoError(t, err)
	for _, stmt := range splitActivityStatements(string(content)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func splitActivityStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(strings.TrimSuffix(builder.String(), ";"))
			statements = append(statements, stmt)
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, strings.TrimSpace(builder.String()))
	}
	return statements
}
