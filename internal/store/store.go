// Package store holds the client-side mirror of the course catalog.
//
// Reduce is a pure function of (state, event); Store wraps it in an
// observable cell that views subscribe to.
package store

import (
	"sync"

	"videobelajar/internal/domain"
	"videobelajar/internal/metrics"
)

// Status is the load lifecycle of the catalog.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// UnknownError replaces empty failure messages.
const UnknownError = "Unknown error"

// State is an immutable snapshot. Data is never shared with a later state.
type State struct {
	Data   []domain.Course
	Status Status
	// Error is the last load failure; empty when none.
	Error string
}

// Event is a store transition. The set is closed.
type Event interface {
	eventName() string
}

type BeginLoad struct{}

type ReceiveList struct{ Courses []domain.Course }

type ReceiveError struct{ Message string }

type Append struct{ Course domain.Course }

type Replace struct{ Course domain.Course }

type Remove struct{ ID domain.ID }

func (BeginLoad) eventName() string    { return "begin_load" }
func (ReceiveList) eventName() string  { return "receive_list" }
func (ReceiveError) eventName() string { return "receive_error" }
func (Append) eventName() string       { return "append" }
func (Replace) eventName() string      { return "replace" }
func (Remove) eventName() string       { return "remove" }

// Sanitize keeps the courses that carry an id, in order. A repeated id keeps
// its first occurrence.
func Sanitize(list []domain.Course) []domain.Course {
	out := make([]domain.Course, 0, len(list))
	seen := make(map[domain.ID]bool, len(list))
	for _, c := range list {
		if !c.ID.Valid() || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// Reduce applies ev to s and returns the next state. It never mutates s.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case BeginLoad:
		s.Status = StatusLoading

	case ReceiveList:
		s.Data = Sanitize(e.Courses)
		s.Status = StatusSucceeded
		s.Error = ""

	case ReceiveError:
		s.Status = StatusFailed
		s.Error = e.Message
		if s.Error == "" {
			s.Error = UnknownError
		}

	case Append:
		if !e.Course.ID.Valid() || indexOf(s.Data, e.Course.ID) >= 0 {
			return s
		}
		data := make([]domain.Course, len(s.Data), len(s.Data)+1)
		copy(data, s.Data)
		s.Data = append(data, e.Course)

	case Replace:
		i := indexOf(s.Data, e.Course.ID)
		if i < 0 {
			return s
		}
		data := make([]domain.Course, len(s.Data))
		copy(data, s.Data)
		data[i] = e.Course
		s.Data = data

	case Remove:
		if indexOf(s.Data, e.ID) < 0 {
			return s
		}
		data := make([]domain.Course, 0, len(s.Data)-1)
		for _, c := range s.Data {
			if c.ID != e.ID {
				data = append(data, c)
			}
		}
		s.Data = data
	}
	return s
}

func indexOf(list []domain.Course, id domain.ID) int {
	if !id.Valid() {
		return -1
	}
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Store is the single-writer, multi-reader holder of State. Create one per
// session with New.
type Store struct {
	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]func(State)
}

func New() *Store {
	return &Store{
		state: State{Data: []domain.Course{}},
		subs:  map[int]func(State){},
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies ev and notifies subscribers with the new state. Subscribers
// run on the dispatching goroutine, outside the lock.
func (s *Store) Dispatch(ev Event) State {
	s.mu.Lock()
	next := Reduce(s.state, ev)
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	metrics.ObserveTransition(ev.eventName(), len(next.Data))
	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn for every future state. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
