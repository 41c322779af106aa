package formstate

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"taskboard/internal/model"
)

// ErrNotFound is returned by a Store when the key has no value.
var ErrNotFound = errors.New("draft not found")

// Store is a durable key-value store for serialized drafts.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// TaskDraftKey is the store key of a user's task draft.
func TaskDraftKey(userID string) string {
	return "task_draft:" + userID
}

// Persist writes the draft to the store.
func Persist(ctx context.Context, store Store, key string, d TaskDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, data)
}

// Restore reads a draft back. Missing, unreadable or corrupt state yields the
// default draft; failures other than a missing key are only logged.
func Restore(ctx context.Context, store Store, key string) TaskDraft {
	data, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return NewTaskDraft()
	}
	if err != nil {
		log.Printf("⚠️  Failed to read draft %s: %v", key, err)
		return NewTaskDraft()
	}
	return decode(data, key)
}

func decode(data []byte, key string) TaskDraft {
	d := NewTaskDraft()
	if err := json.Unmarshal(data, &d); err != nil {
		log.Printf("⚠️  Discarding corrupt draft %s: %v", key, err)
		return NewTaskDraft()
	}
	if !d.Priority.Valid() {
		d.Priority = model.DefaultPriority
	}
	if st, ok := model.ParseStatus(string(d.Status)); ok {
		d.Status = st
	} else {
		d.Status = model.DefaultStatus
	}
	if d.AssigneeIDs == nil {
		d.AssigneeIDs = []string{}
	}
	return d
}

// Clear removes a persisted draft. A missing draft is not an error.
func Clear(ctx context.Context, store Store, key string) error {
	err := store.Delete(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
