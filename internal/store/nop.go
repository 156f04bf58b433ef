package store

import (
	"context"
	"time"

	"github.com/amishk599/jobrank/internal/model"
)

// NopSeenStore is a no-op seen-set used in dry-run mode. It never marks jobs
// as seen, so every job appears new on each run.
type NopSeenStore struct{}

func NewNopSeenStore() *NopSeenStore { return &NopSeenStore{} }

func (NopSeenStore) IsSeen(context.Context, string) (bool, error)           { return false, nil }
func (NopSeenStore) MarkSeen(context.Context, string, model.SeenMeta) error { return nil }
func (NopSeenStore) Reset(context.Context) error                            { return nil }
func (NopSeenStore) Cleanup(context.Context, time.Duration) error           { return nil }

// NopGateway discards writes and answers reads with nothing. Used by dry runs.
type NopGateway struct{}

func NewNopGateway() *NopGateway { return &NopGateway{} }

func (NopGateway) Upsert(context.Context, []model.Job) error { return nil }
func (NopGateway) Get(context.Context, string) (model.Job, error) {
	return model.Job{}, model.ErrNotFound
}
func (NopGateway) List(context.Context, model.Query) ([]model.Job, error) { return nil, nil }
func (NopGateway) SetStatus(context.Context, string, model.Status) error  { return model.ErrNotFound }
func (NopGateway) UpdateScores(context.Context, []model.Job) error        { return nil }
func (NopGateway) Clear(context.Context) error                            { return nil }
func (NopGateway) RecordRun(context.Context, model.RunRecord) error       { return nil }
