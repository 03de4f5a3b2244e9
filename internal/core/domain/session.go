package domain

// Flash types rendered by the page layer.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Flash is a one-shot status message parked in the session and delivered
// exactly once on the next read.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Identity is the authenticated principal carried by a session.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// SessionState is the server-side session payload. Anonymous sessions
// (Authenticated=false) exist so a flash can be parked for visitors who
// have not logged in yet.
type SessionState struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	IsAdmin       bool   `json:"is_admin,omitempty"`
}

// Identity returns the principal for an authenticated session, or nil.
func (s *SessionState) Identity() *Identity {
	if s == nil || !s.Authenticated {
		return nil
	}
	return &Identity{Email: s.Email, Name: s.Name, IsAdmin: s.IsAdmin}
}
