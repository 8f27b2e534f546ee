package session

import "sync"

// Mode is the conversational state of one user.
type Mode int

const (
	Idle Mode = iota
	AwaitingAIQuery
	AwaitingBroadcast
	AwaitingSubmission
	AwaitingEdit
)

// State is the per-user session: the current mode plus the item id the
// mode operates on (edit flow only).
type State struct {
	Mode   Mode
	ItemID int64
}

// Manager keeps per-user sessions in process memory. Sessions are lost
// on restart; in-flight conversations then restart from Idle.
type Manager struct {
	mu     sync.Mutex
	states map[int64]State
}

func NewManager() *Manager {
	return &Manager{states: make(map[int64]State)}
}

// Get returns the current session, defaulting to Idle.
func (m *Manager) Get(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[userID]
}

// Enter replaces any prior session with the given state. A user holds
// at most one mode at a time; modes never stack.
func (m *Manager) Enter(userID int64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Mode == Idle {
		delete(m.states, userID)
		return
	}
	m.states[userID] = s
}

// Clear resets the user to Idle and drops any payload.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}
