package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/adrianliechti/t101/pkg/provider"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const (
	CookieName = "t101_session"

	DefaultTTL        = 24 * time.Hour
	DefaultMaxHistory = 20
)

var ErrInvalidToken = errors.New("invalid session token")

type Session struct {
	ID string

	history  []provider.Message
	lastSeen time.Time
}

// Manager issues signed session cookies and keeps a bounded chat history per session in memory.
type Manager struct {
	secret []byte

	ttl        time.Duration
	maxHistory int
	secure     bool

	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

type Option func(*Manager)

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

func WithMaxHistory(n int) Option {
	return func(m *Manager) {
		m.maxHistory = n
	}
}

func WithSecureCookie(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New creates a manager signing tokens with secret. An empty secret is
// replaced by a random one, invalidating cookies across restarts.
func New(secret string, options ...Option) (*Manager, error) {
	key := []byte(secret)

	if len(key) == 0 {
		key = make([]byte, 32)

		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}

	m := &Manager{
		secret: key,

		ttl:        DefaultTTL,
		maxHistory: DefaultMaxHistory,

		now: time.Now,

		sessions: make(map[string]*Session),
	}

	for _, option := range options {
		option(m)
	}

	return m, nil
}

// Load returns the session referenced by the request cookie, creating a new
// one when the cookie is missing, invalid or expired. The cookie is (re)issued on w.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	var id string

	if c, err := r.Cookie(CookieName); err == nil {
		id, _ = m.Verify(c.Value)
	}

	m.mu.Lock()
	s, ok := m.sessions[id]

	if !ok {
		s = &Session{
			ID: uuid.NewString(),
		}

		m.sessions[s.ID] = s
	}

	s.lastSeen = m.now()
	m.mu.Unlock()

	token, err := m.Sign(s.ID)

	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:  CookieName,
		Value: token,

		Path:   "/",
		MaxAge: int(m.ttl.Seconds()),

		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return s, nil
}

func (m *Manager) Sign(id string) (string, error) {
	now := m.now()

	claims := jwt.StandardClaims{
		Id:        id,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) Verify(token string) (string, error) {
	claims := &jwt.StandardClaims{}

	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return m.secret, nil
	})

	if err != nil || !t.Valid || claims.Id == "" {
		return "", ErrInvalidToken
	}

	return claims.Id, nil
}

// History returns a copy of the session's messages, oldest first.
func (m *Manager) History(id string) []provider.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]

	if !ok {
		return nil
	}

	return append([]provider.Message{}, s.history...)
}

// Append adds messages and drops the oldest ones beyond the history limit.
func (m *Manager) Append(id string, messages ...provider.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]

	if !ok {
		return
	}

	s.history = append(s.history, messages...)

	if m.maxHistory > 0 && len(s.history) > m.maxHistory {
		s.history = append([]provider.Message{}, s.history[len(s.history)-m.maxHistory:]...)
	}
}

// Sweep removes sessions idle for longer than the TTL and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)

	var removed int

	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}
