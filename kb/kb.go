package kb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/urbanlink-simulator/model"
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventAgentPoseUpdated EventType = iota
	EventAgentAdded
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type  EventType
	Agent model.Agent
}

// AgentStore is an in-memory, thread-safe store for agents and the
// opaque environment handle. The simulation engine reads an ordered
// snapshot from it once per step.
type AgentStore struct {
	mu sync.RWMutex

	agents map[int]*model.Agent
	env    model.Environment

	subs []func(Event)
}

// NewAgentStore constructs an empty store.
func NewAgentStore() *AgentStore {
	return &AgentStore{
		agents: make(map[int]*model.Agent),
	}
}

// AddAgent adds a new agent. It returns an error if the ID already
// exists or is not a positive index.
func (s *AgentStore) AddAgent(a *model.Agent) error {
	if a == nil || a.ID <= 0 {
		return fmt.Errorf("agent must have a positive ID")
	}

	s.mu.Lock()
	if _, exists := s.agents[a.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("agent with ID %d already exists", a.ID)
	}
	// store pointer so that motion models can update in-place
	s.agents[a.ID] = a
	event := Event{Type: EventAgentAdded, Agent: *a}
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// RemoveAgent deletes an agent by ID. Removing an unknown ID is an error.
func (s *AgentStore) RemoveAgent(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[id]; !ok {
		return fmt.Errorf("agent with ID %d not found", id)
	}
	delete(s.agents, id)
	return nil
}

// GetAgent returns the agent with the given ID, or nil if not found.
func (s *AgentStore) GetAgent(id int) *model.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agents[id]
}

// Count returns the number of stored agents.
func (s *AgentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.agents)
}

// Snapshot returns value copies of all agents ordered by ID. The slice
// is safe for the caller to keep; subsequent pose updates do not touch it.
func (s *AgentStore) Snapshot() []model.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]model.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		res = append(res, *a)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// SetEnvironment stores the opaque environment handle.
func (s *AgentStore) SetEnvironment(env model.Environment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env = env
}

// Environment returns the stored environment handle, which may be nil.
func (s *AgentStore) Environment() model.Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env
}

// UpdateAgentPose updates an agent's pose and notifies subscribers.
func (s *AgentStore) UpdateAgentPose(id int, pose model.Pose) error {
	s.mu.Lock()
	a, ok := s.agents[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("agent with ID %d not found", id)
	}
	a.Pose = pose
	event := Event{
		Type:  EventAgentPoseUpdated,
		Agent: *a, // copy for safety
	}
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Subscribe registers a callback for store events. It returns an
// unsubscribe function.
func (s *AgentStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < 0 || idx >= len(s.subs) {
			return
		}
		s.subs = append(s.subs[:idx], s.subs[idx+1:]...)
		idx = -1
	}
}
