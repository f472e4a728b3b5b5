package client

import "sync"

// Guard decides whether a navigation target may be entered with the current
// session. An unauthenticated attempt is remembered so the caller can return
// to it after login. Role checks stay on the server; the guard only gates on
// having a session at all.
type Guard struct {
	mu       sync.Mutex
	session  *Session
	loginURL string
	returnTo string
}

func NewGuard(session *Session, loginURL string) *Guard {
	return &Guard{session: session, loginURL: loginURL}
}

// Check returns the target itself when the session is authenticated.
// Otherwise it records the attempted target and returns the login URL.
func (g *Guard) Check(target string) string {
	if g.session.IsAuthenticated() {
		return target
	}
	g.mu.Lock()
	g.returnTo = target
	g.mu.Unlock()
	return g.loginURL
}

// AfterLogin returns the remembered target, falling back to fallback when no
// navigation was interrupted. The remembered target is consumed.
func (g *Guard) AfterLogin(fallback string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.returnTo == "" {
		return fallback
	}
	target := g.returnTo
	g.returnTo = ""
	return target
}
