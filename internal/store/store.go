package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdxmph/tasks-tui/internal/api"
	"github.com/pdxmph/tasks-tui/internal/tasks"
)

var (
	// ErrNotFound is returned by FetchOne when the remote has no such task
	ErrNotFound = api.ErrNotFound

	// ErrStale is returned by Load when a newer load or a removal happened
	// while the request was in flight; the response is dropped
	ErrStale = errors.New("stale response discarded")
)

// Store caches the most recently fetched tasks for the session.
//
// The remote backend owns durable state. Store keeps a copy that is replaced
// wholesale by Load and patched locally only by Remove. Every Load takes a
// generation token when it starts; Remove and newer Loads advance the
// generation, so a response that arrives late can never overwrite newer state.
type Store struct {
	backend tasks.Backend
	logger  zerolog.Logger

	mu    sync.RWMutex
	tasks []tasks.Task
	gen   uint64
}

// New creates an empty store backed by the given remote
func New(backend tasks.Backend, logger zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.With().Str("component", "store").Logger(),
	}
}

// Tasks returns a copy of the cached collection
func (s *Store) Tasks() []tasks.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Len returns the number of cached tasks
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Load replaces the cached collection with the remote list. On failure the
// previous collection is kept.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	token := s.gen
	s.mu.Unlock()

	list, err := s.backend.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("loading tasks")
		return fmt.Errorf("loading tasks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.gen {
		s.logger.Debug().Uint64("token", token).Uint64("current", s.gen).Msg("dropping stale task list")
		return ErrStale
	}
	s.tasks = slices.Clone(list)
	s.logger.Debug().Int("count", len(list)).Msg("loaded tasks")
	return nil
}

// Create submits a new task. The local collection is not touched; callers
// reload once they are back on the list.
func (s *Store) Create(ctx context.Context, draft tasks.Draft) (tasks.Task, error) {
	created, err := s.backend.Create(ctx, draft)
	if err != nil {
		s.logger.Error().Err(err).Str("title", draft.Title).Msg("creating task")
		return tasks.Task{}, fmt.Errorf("creating task: %w", err)
	}
	s.logger.Info().Int64("id", created.ID).Msg("created task")
	return created, nil
}

// FetchOne retrieves a single task for editing
func (s *Store) FetchOne(ctx context.Context, id int64) (tasks.Task, error) {
	t, err := s.backend.Get(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("fetching task")
		return tasks.Task{}, fmt.Errorf("fetching task %d: %w", id, err)
	}
	return t, nil
}

// Update replaces a task's fields remotely
func (s *Store) Update(ctx context.Context, id int64, task tasks.Task) error {
	if err := s.backend.Update(ctx, id, task); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("updating task")
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Msg("updated task")
	return nil
}

// Remove deletes a task remotely and, only if that succeeds, drops it from
// the cached collection
func (s *Store) Remove(ctx context.Context, id int64) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("deleting task")
		return fmt.Errorf("deleting task %d: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.tasks = slices.DeleteFunc(slices.Clone(s.tasks), func(t tasks.Task) bool {
		return t.ID == id
	})
	s.logger.Info().Int64("id", id).Msg("deleted task")
	return nil
}
