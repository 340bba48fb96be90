package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt hashes without truncation.
const maxPasswordBytes = 72

var ErrEmptyCredentials = errors.New("admin username and password are required")

// Gate is the single-session admin switch. It is a display gate for the admin
// surface, not a security boundary around the catalog.
type Gate struct {
	username string
	hash     []byte

	mu            sync.RWMutex
	authenticated bool
	generation    uint64
}

// NewGate keeps only a bcrypt hash of the configured password.
func NewGate(username, password string) (*Gate, error) {
	return newGate(username, password, bcrypt.DefaultCost)
}

func newGate(username, password string, cost int) (*Gate, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &Gate{username: username, hash: hash}, nil
}

// Login opens the session iff both values match the configured pair exactly and
// returns the generation of the session it opened. A mismatch leaves the
// current state untouched.
func (g *Gate) Login(username, password string) (uint64, bool) {
	if !g.matches(username, password) {
		return 0, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.authenticated = true
	g.generation++
	return g.generation, true
}

func (g *Gate) matches(username, password string) bool {
	if len(password) > maxPasswordBytes {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
	return userOK && passOK
}

func (g *Gate) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authenticated {
		g.generation++
	}
	g.authenticated = false
}

func (g *Gate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

// Session returns the generation of the open session. Every login and every
// logout of an open session moves the generation, which retires older tokens.
func (g *Gate) Session() (generation uint64, open bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation, g.authenticated
}
