package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amishk599/jobrank/internal/model"
)

// IsSeen returns true if the given identity has already been recorded.
func (s *SQLStore) IsSeen(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowxContext(ctx, s.db.Rebind("SELECT 1 FROM seen_jobs WHERE job_id = ?"), id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", id, err)
	}
	return true, nil
}

// MarkSeen records an identity as seen. If it already exists the call is a no-op.
func (s *SQLStore) MarkSeen(ctx context.Context, id string, meta model.SeenMeta) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO seen_jobs (job_id, title, link, source, first_seen)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT (job_id) DO NOTHING`),
		id, meta.Title, meta.Link, meta.Source, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("marking job %s as seen: %w", id, err)
	}
	return nil
}

// Reset forgets every seen identity.
func (s *SQLStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM seen_jobs"); err != nil {
		return fmt.Errorf("resetting seen jobs: %w", err)
	}
	return nil
}

// Cleanup deletes seen entries older than the given duration.
func (s *SQLStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	_, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM seen_jobs WHERE first_seen < ?"), cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up seen jobs older than %v: %w", olderThan, err)
	}
	return nil
}

// SeenCount returns the number of recorded identities.
func (s *SQLStore) SeenCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM seen_jobs"); err != nil {
		return 0, fmt.Errorf("counting seen jobs: %w", err)
	}
	return count, nil
}
