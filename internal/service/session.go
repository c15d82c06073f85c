package service

import (
	"sync"

	"speakup/internal/domain"
)

// SessionState is the practice-session state, independent of navigation.
type SessionState string

const (
	SessionIdle      SessionState = "IDLE"
	SessionRecording SessionState = "RECORDING"
	SessionAnalyzing SessionState = "ANALYZING"
	SessionResults   SessionState = "RESULTS"
)

// SessionManager enforces the single-session contract: one recording and one
// in-flight analysis at a time. Starting a new recording is only possible
// from Idle.
type SessionManager struct {
	mu    sync.Mutex
	state SessionState
}

// NewSessionManager returns a manager in the Idle state.
func NewSessionManager() *SessionManager {
	return &SessionManager{state: SessionIdle}
}

// State returns the current session state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// StartRecording transitions Idle -> Recording.
func (m *SessionManager) StartRecording() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != SessionIdle {
		return domain.NewSessionBusyError()
	}
	m.state = SessionRecording
	return nil
}

// BeginAnalysis transitions Idle|Recording -> Analyzing. A direct Idle ->
// Analyzing hop covers clients that capture audio without announcing the
// recording first.
func (m *SessionManager) BeginAnalysis() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != SessionIdle && m.state != SessionRecording {
		return domain.NewSessionBusyError()
	}
	m.state = SessionAnalyzing
	return nil
}

// CompleteAnalysis transitions Analyzing -> Results on success and back to
// Idle on failure.
func (m *SessionManager) CompleteAnalysis(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != SessionAnalyzing {
		return
	}
	if success {
		m.state = SessionResults
	} else {
		m.state = SessionIdle
	}
}

// Reset returns to Idle from Results (retry) or aborts a recording. An
// in-flight analysis cannot be reset away.
func (m *SessionManager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == SessionAnalyzing {
		return domain.NewSessionBusyError()
	}
	m.state = SessionIdle
	return nil
}
