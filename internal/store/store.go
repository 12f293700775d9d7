// Package store owns the in-memory task list. Every view reads through a
// Store and every mutation goes through Update, so no two consumers can
// disagree on task state.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	appLog "taskcal/internal/log"
	"taskcal/internal/model"
)

var ErrDuplicateID = errors.New("duplicate task id")

// Snapshot is handed to subscribers after every collection replacement.
type Snapshot struct {
	Version uint64
	Tasks   []model.Task
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Store is the single owner of the task collection.
//
// The backing slice is never modified in place: each mutation builds a new
// slice, replacing exactly one element and carrying the rest over unchanged.
type Store struct {
	mu      sync.RWMutex
	tasks   []model.Task
	index   map[string]int
	version uint64

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

// New builds a store seeded with tasks in the given order.
func New(seed []model.Task) (*Store, error) {
	s := &Store{index: make(map[string]int, len(seed))}
	tasks := make([]model.Task, 0, len(seed))
	for _, t := range seed {
		t = t.Clone()
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, dup := s.index[t.ID]; dup {
			return nil, fmt.Errorf("seed task %q: %w", t.ID, ErrDuplicateID)
		}
		if err := validateTask(t); err != nil {
			return nil, err
		}
		s.index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	s.tasks = tasks
	taskCount.Set(float64(len(tasks)))
	return s, nil
}

// GetAll returns the current tasks in insertion order. The result is a deep
// copy.
func (s *Store) GetAll() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.tasks)
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Version increments on every collection replacement.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len reports the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Add appends a validated task. An empty ID is replaced by a fresh uuid.
func (s *Store) Add(t model.Task) (model.Task, error) {
	t = t.Clone()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := validateTask(t); err != nil {
		mutationCount.WithLabelValues("add", "invalid").Inc()
		return model.Task{}, err
	}

	s.mu.Lock()
	if _, dup := s.index[t.ID]; dup {
		s.mu.Unlock()
		mutationCount.WithLabelValues("add", "duplicate").Inc()
		return model.Task{}, fmt.Errorf("add task %q: %w", t.ID, ErrDuplicateID)
	}
	next := make([]model.Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	next = append(next, t)
	s.index[t.ID] = len(next) - 1
	snap := s.replaceLocked(next)
	s.mu.Unlock()

	mutationCount.WithLabelValues("add", "ok").Inc()
	appLog.Debug("task added", "id", t.ID, "title", t.Title)
	s.notify(snap)
	return t.Clone(), nil
}

// Update merges the non-nil fields of p into the task with id.
//
// An unknown id is a silent no-op and returns nil. A patch that would leave
// the task invalid is rejected with *ValidationError and nothing changes.
func (s *Store) Update(id string, p Patch) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		mutationCount.WithLabelValues("update", "not_found").Inc()
		appLog.Debug("update ignored; unknown task", "id", id)
		return nil
	}

	merged := p.apply(s.tasks[i])
	if err := validateTask(merged); err != nil {
		s.mu.Unlock()
		mutationCount.WithLabelValues("update", "invalid").Inc()
		return err
	}

	next := make([]model.Task, len(s.tasks))
	copy(next, s.tasks)
	next[i] = merged
	snap := s.replaceLocked(next)
	s.mu.Unlock()

	mutationCount.WithLabelValues("update", "ok").Inc()
	s.notify(snap)
	return nil
}

// MoveToSlot reassigns the task's time slot. It is the commit step of a
// drag-and-drop gesture; intermediate drag positions never reach the store.
func (s *Store) MoveToSlot(id, slotID string) error {
	appLog.Debug("move task", "id", id, "slot", slotID)
	return s.Update(id, Patch{TimeSlot: &slotID})
}

// Subscribe registers fn to run after every mutation. Callbacks run
// synchronously, in registration order, outside the store lock.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

// AvailableTags returns the sorted set of tags used by any task.
func (s *Store) AvailableTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, t := range s.tasks {
		for _, tag := range t.Tags {
			seen[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// replaceLocked swaps in next and returns the snapshot to publish.
// Caller holds s.mu for writing.
func (s *Store) replaceLocked(next []model.Task) Snapshot {
	s.tasks = next
	s.version++
	taskCount.Set(float64(len(next)))
	return Snapshot{Version: s.version, Tasks: next}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	subs := slices.Clone(s.subs)
	s.subMu.Unlock()
	for _, sub := range subs {
		sub.fn(Snapshot{Version: snap.Version, Tasks: cloneAll(snap.Tasks)})
	}
}

func cloneAll(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
