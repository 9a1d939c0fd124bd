package activity

import (
	"time"

	"github.com/goliatone/go-accounts/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LogEntry models the persisted row in account_activity.
type LogEntry struct {
	bun.BaseModel `bun:"table:account_activity"`

	ID         uuid.UUID      `bun:",pk,type:uuid"`
	AccountID  uuid.UUID      `bun:"account_id,type:uuid"`
	ActorID    uuid.UUID      `bun:"actor_id,type:uuid"`
	RealmID    uuid.UUID      `bun:"realm_id,type:uuid"`
	Verb       string         `bun:"verb"`
	ObjectType string         `bun:"object_type"`
	ObjectID   string         `bun:"object_id"`
	Channel    string         `bun:"channel"`
	Data       map[string]any `bun:"data,type:jsonb"`
	CreatedAt  time.Time      `bun:"created_at"`
}

func toLogEntry(record types.ActivityRecord) *LogEntry {
	return &LogEntry{
		ID:         record.ID,
		AccountID:  record.AccountID,
		ActorID:    record.ActorID,
		RealmID:    record.RealmID,
		Verb:       record.Verb,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		Channel:    record.Channel,
		Data:       record.Data,
		CreatedAt:  record.OccurredAt,
	}
}

func toActivityRecord(entry *LogEntry) types.ActivityRecord {
	if entry == nil {
		return types.ActivityRecord{}
	}
	return types.ActivityRecord{
		ID:         entry.ID,
		AccountID:  entry.AccountID,
		ActorID:    entry.ActorID,
		RealmID:    entry.RealmID,
		Verb:       entry.Verb,
		ObjectType: entry.ObjectType,
		ObjectID:   entry.ObjectID,
		Channel:    entry.Channel,
		Data:       entry.Data,
		OccurredAt: entry.CreatedAt,
	}
}
