// Package ui holds the presentation state shared by the dashboard and the
// command line tools: the authentication gate and transient toasts.
package ui

import "sync"

type AuthState int

const (
	StateLoading AuthState = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

type Navigator interface {
	Redirect(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Redirect(path string) { f(path) }

// Gate protects the dashboard pages. It starts out loading and sends the
// navigator to the login page once each time the session resolves to
// unauthenticated.
type Gate struct {
	mu        sync.Mutex
	state     AuthState
	nav       Navigator
	loginPath string
}

func NewGate(nav Navigator, loginPath string) *Gate {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Gate{state: StateLoading, nav: nav, loginPath: loginPath}
}

// Update moves the gate to state. It reports whether a redirect was issued.
func (g *Gate) Update(state AuthState) bool {
	g.mu.Lock()
	prev := g.state
	g.state = state
	g.mu.Unlock()

	if state != StateUnauthenticated || prev == StateUnauthenticated {
		return false
	}
	g.nav.Redirect(g.loginPath)
	return true
}

func (g *Gate) State() AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ShowSpinner is true while the session is still being resolved.
func (g *Gate) ShowSpinner() bool { return g.State() == StateLoading }

// ShowContent is true only for an authenticated session; nothing protected
// renders while loading or after a redirect.
func (g *Gate) ShowContent() bool { return g.State() == StateAuthenticated }
