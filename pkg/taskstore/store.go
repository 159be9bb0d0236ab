// Package taskstore implements the State Manager: an in-memory task map
// backed by one JSON file per task for crash recovery, following a
// write-through discipline (persist before the caller emits the
// corresponding event) so recovery never observes an event for a state not
// yet on disk.
package taskstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// Store holds task records in memory with a durable file-per-task mirror.
// Per spec §4.3 the core assumes a single orchestration loop per task id;
// Store only guarantees serialization of its own map/file operations, not
// of concurrent updates to the *same* task from multiple callers.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task

	dir string
	log *slog.Logger
}

// New constructs a Store persisting one JSON file per task under dir.
func New(dir string) *Store {
	return &Store{
		tasks: make(map[string]*models.Task),
		dir:   dir,
		log:   slog.With("component", "taskstore"),
	}
}

// CreateTask registers a new task and persists it immediately.
func (s *Store) CreateTask(t *models.Task) error {
	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
	return s.Persist(t.ID)
}

// Update is a top-level-field patch applied to a task. Nil fields are left
// untouched ("deep-merge by top-level field" per spec §4.3).
type Update struct {
	Status          *models.TaskStatus
	Phases          map[models.PhaseName]*models.Phase
	Plan            *models.Plan
	GeneratedBundle *models.Bundle
	BundleID        *string
	Error           *models.TaskError
	Metrics         *models.Metrics
}

// UpdateTask applies patch to the task, bumps UpdatedAt, and persists it.
func (s *Store) UpdateTask(taskID string, patch Update) error {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	if patch.Status != nil {
		t.Status = *patch.Status
	}
	for name, phase := range patch.Phases {
		t.Phases[name] = phase
	}
	if patch.Plan != nil {
		t.Plan = patch.Plan
	}
	if patch.GeneratedBundle != nil {
		t.GeneratedBundle = patch.GeneratedBundle
	}
	if patch.BundleID != nil {
		t.BundleID = *patch.BundleID
	}
	if patch.Error != nil {
		t.Error = patch.Error
	}
	if patch.Metrics != nil {
		t.Metrics = *patch.Metrics
	}
	t.UpdatedAt = time.Now().UTC()
	s.mu.Unlock()

	return s.Persist(taskID)
}

// GetTask returns a copy-free pointer to the live task record. Callers
// must not mutate it directly; go through UpdateTask.
func (s *Store) GetTask(taskID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return t, nil
}

// ListTasks returns up to limit tasks, newest-first by UpdatedAt. limit <= 0
// means unbounded.
func (s *Store) ListTasks(limit int) []*models.Task {
	s.mu.RLock()
	out := make([]*models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DeleteTask removes a task from memory and disk.
func (s *Store) DeleteTask(taskID string) error {
	s.mu.Lock()
	_, ok := s.tasks[taskID]
	if ok {
		delete(s.tasks, taskID)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if s.dir == "" {
		return nil
	}
	err := os.Remove(s.taskPath(taskID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Cleanup removes tasks whose UpdatedAt is older than maxAge, returning how
// many were removed.
func (s *Store) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)
	s.mu.RLock()
	var stale []string
	for id, t := range s.tasks {
		if t.UpdatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		if err := s.DeleteTask(id); err != nil {
			s.log.Warn("cleanup: failed to delete stale task", "task_id", id, "error", err)
		}
	}
	return len(stale)
}

// Stats is a point-in-time summary of store contents.
type Stats struct {
	TotalTasks int                          `json:"totalTasks"`
	ByStatus   map[models.TaskStatus]int    `json:"byStatus"`
}

// GetStats summarizes the in-memory task set by status.
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byStatus := make(map[models.TaskStatus]int)
	for _, t := range s.tasks {
		byStatus[t.Status]++
	}
	return Stats{TotalTasks: len(s.tasks), ByStatus: byStatus}
}

// Persist writes the current in-memory record for taskID to disk. Must be
// called (and complete) before the corresponding status-change event is
// emitted on the Event Bus — the write-through discipline in spec §4.3.
func (s *Store) Persist(taskID string) error {
	if s.dir == "" {
		return nil
	}
	s.mu.RLock()
	t, ok := s.tasks[taskID]
	var snapshot models.Task
	if ok {
		snapshot = *t
	}
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", taskID, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create task store dir: %w", err)
	}

	path := s.taskPath(taskID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write task %s: %w", taskID, err)
	}
	return os.Rename(tmp, path)
}

// Recover loads a task back into memory from its on-disk record. Used
// after a crash to rebuild the in-memory map without replaying events.
func (s *Store) Recover(taskID string) (*models.Task, error) {
	if s.dir == "" {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	data, err := os.ReadFile(s.taskPath(taskID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		}
		return nil, err
	}
	var t models.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal task %s: %w", taskID, err)
	}
	s.mu.Lock()
	s.tasks[t.ID] = &t
	s.mu.Unlock()
	return &t, nil
}

// RecoverAll scans dir for task files and loads all of them into memory.
// Returns the number of tasks recovered.
func (s *Store) RecoverAll() (int, error) {
	if s.dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		taskID := e.Name()[:len(e.Name())-len(".json")]
		if _, err := s.Recover(taskID); err != nil {
			s.log.Warn("recover: skipping unreadable task file", "file", e.Name(), "error", err)
			continue
		}
		count++
	}
	return count, nil
}

func (s *Store) taskPath(taskID string) string {
	return filepath.Join(s.dir, taskID+".json")
}
