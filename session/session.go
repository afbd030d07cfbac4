package session

import "sync"

// Client is a handle on the connected performance surface.
type Client interface {
	ID() string
	Emit(event string, args ...interface{}) error
}

// Session is the process wide state: one current client and the backend port.
// The most recent connection always wins. Disconnects are not tracked, a
// dropped client stays registered until somebody else connects.
type Session struct {
	mu     sync.RWMutex
	client Client
	port   int
}

func New(defaultPort int) *Session {
	return &Session{port: defaultPort}
}

func (s *Session) SetClient(c Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = c
}

func (s *Session) Client() (Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client, s.client != nil
}

func (s *Session) SetPort(port int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.port = port
}

func (s *Session) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port
}
