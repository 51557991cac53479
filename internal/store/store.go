package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/community-publishing-engine/internal/database"
	"github.com/community-publishing-engine/internal/migration"
	"github.com/community-publishing-engine/internal/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is the process-wide entity store. It owns the in-memory snapshot,
// guards it with a single lock, and hands every mutated state to the writer.
// A mutation is visible to subsequent reads immediately; durability trails
// behind on the writer's flush queue.
type Store struct {
	mu     sync.RWMutex
	state  *models.Snapshot
	file   *database.SnapshotFile
	writer *database.Writer
	log    zerolog.Logger
}

// Open loads the backing file, migrates it to the current schema, seeds
// default categories if the set is still empty, starts the flush loop and
// persists the sanitized state once.
//
// An absent file initializes fresh state; an unreadable or unparseable file
// also falls back to fresh state. That trades prior data for availability,
// so it is logged loudly rather than failed.
func Open(file *database.SnapshotFile, writer *database.Writer, log zerolog.Logger) (*Store, error) {
	log = log.With().Str("component", "store").Logger()

	snap := load(file, log)
	seedCategories(snap, log)

	s := &Store{
		state:  snap,
		file:   file,
		writer: writer,
		log:    log,
	}

	writer.Start(context.Background())

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	if err := writer.Flush(data); err != nil {
		return nil, errors.Wrap(err, "persist migrated snapshot")
	}

	log.Info().
		Int("users", len(snap.Users)).
		Int("posts", len(snap.Posts)).
		Int("comments", len(snap.Comments)).
		Int("schema_version", snap.SchemaVersion).
		Msg("Store opened")

	return s, nil
}

func load(file *database.SnapshotFile, log zerolog.Logger) *models.Snapshot {
	data, err := file.Read()
	if err != nil {
		log.Warn().Err(err).Msg("Backing file unreadable, starting with empty state")
		return models.NewSnapshot()
	}
	if data == nil {
		log.Info().Str("path", file.Path()).Msg("No backing file, initializing empty state")
		return models.NewSnapshot()
	}

	snap, err := migration.Run(data, log)
	if err != nil {
		log.Warn().Err(err).Msg("Backing file unparseable, starting with empty state")
		return models.NewSnapshot()
	}
	return snap
}

// View runs fn with shared read access to the current state. fn must not
// retain or mutate the snapshot.
func (s *Store) View(fn func(*models.Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Update runs fn with exclusive access. If fn reports a change, the whole
// mutated snapshot is serialized under the lock and enqueued for flushing,
// which keeps the queued write order identical to the mutation order. If fn
// returns false the state is taken to be untouched and nothing is persisted.
func (s *Store) Update(fn func(*models.Snapshot) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn(s.state) {
		return
	}

	data, err := json.Marshal(s.state)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode snapshot, mutation not persisted")
		return
	}
	s.writer.Enqueue(data)
}

// Close stops the flush loop (draining anything still queued) and writes the
// final state synchronously.
func (s *Store) Close() error {
	s.writer.Stop()

	s.mu.RLock()
	data, err := json.Marshal(s.state)
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "encode final snapshot")
	}
	if err := s.writer.Flush(data); err != nil {
		return errors.Wrap(err, "final flush")
	}

	s.log.Info().Msg("Store closed")
	return nil
}
