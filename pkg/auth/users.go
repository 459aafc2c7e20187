// Package auth checks caller credentials against the configured logins.
//
// Authentication is separate from authorization: a UserManager only answers
// whether a username and password pair is valid. What an authenticated user
// may do in a repository is decided by that repository's user access map.
package auth

import (
	"crypto/subtle"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/internal/ratelimiter"
	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/metrics"
)

// Default failed-login throttling: a burst of 10 failures per user, then one
// more attempt every 200ms.
const (
	DefaultFailuresPerSecond = 5
	DefaultFailureBurst      = 10
)

// UserManager holds the username/password pairs accepted by the server.
//
// Failed attempts are throttled per username with a token bucket: every
// failure consumes a token and once the bucket is empty even correct
// passwords are refused until it refills. A successful login resets the
// bucket.
type UserManager struct {
	mu      sync.RWMutex
	logins  map[string]string
	limiter *ratelimiter.KeyedLimiter
	metrics metrics.AuthMetrics
}

// Option configures a UserManager.
type Option func(*UserManager)

// WithThrottle sets the failed-login rate. perSecond 0 disables throttling.
func WithThrottle(perSecond float64, burst uint) Option {
	return func(m *UserManager) {
		m.limiter = ratelimiter.New(perSecond, burst)
	}
}

// WithMetrics records authentication outcomes to am.
func WithMetrics(am metrics.AuthMetrics) Option {
	return func(m *UserManager) {
		if am != nil {
			m.metrics = am
		}
	}
}

// NewUserManager creates a manager without logins.
func NewUserManager(opts ...Option) *UserManager {
	m := &UserManager{
		logins:  make(map[string]string),
		limiter: ratelimiter.New(DefaultFailuresPerSecond, DefaultFailureBurst),
		metrics: metrics.NewNoopAuthMetrics(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddLogin adds or replaces a login. The username is trimmed; blank
// usernames are ignored. An empty password is a valid password.
func (m *UserManager) AddLogin(username, password string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}

	m.mu.Lock()
	m.logins[username] = password
	m.mu.Unlock()

	logger.Info("Login: %s", username)
}

// Logins returns the configured usernames, sorted.
func (m *UserManager) Logins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.logins))
	for user := range m.logins {
		out = append(out, user)
	}
	sort.Strings(out)
	return out
}

// Authenticate checks the credentials carried by cc and returns the
// authenticated username. Any failure is ErrPermissionDenied with the same
// message, so callers cannot tell unknown users from wrong passwords.
func (m *UserManager) Authenticate(cc *cmis.CallContext) (string, error) {
	if cc == nil {
		return "", cmis.NewError(cmis.ErrPermissionDenied, "no user context")
	}
	if err := m.AuthenticateUser(cc.Username, cc.Password); err != nil {
		return "", err
	}
	return cc.Username, nil
}

// AuthenticateUser checks a username and password pair.
func (m *UserManager) AuthenticateUser(username, password string) error {
	if !m.limiter.Allow(username) {
		m.metrics.RecordAuthentication("throttled")
		logger.Warn("Login throttled: user=%s", username)
		return cmis.NewError(cmis.ErrPermissionDenied, "too many failed login attempts")
	}

	m.mu.RLock()
	expected, ok := m.logins[username]
	m.mu.RUnlock()

	if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		m.limiter.Consume(username)
		m.metrics.RecordAuthentication("failure")
		logger.Debug("Login failed: user=%s", username)
		return cmis.NewError(cmis.ErrPermissionDenied, "invalid username or password")
	}

	m.limiter.Reset(username)
	m.metrics.RecordAuthentication("success")
	return nil
}

// PruneThrottle forgets throttling state of users idle for a while. It
// returns how many users were dropped.
func (m *UserManager) PruneThrottle() int {
	return m.limiter.Prune()
}

// String lists the usernames as "[alice][bob]".
func (m *UserManager) String() string {
	var sb strings.Builder
	for _, user := range m.Logins() {
		sb.WriteByte('[')
		sb.WriteString(user)
		sb.WriteByte(']')
	}
	return sb.String()
}
