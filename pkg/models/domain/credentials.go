package domain

import "time"

// Credentials identify a Glowmarkt account. They are loaded once per run and
// never mutated afterwards; a pre-issued Token short-circuits the login call.
type Credentials struct {
	Username string
	Password string
	Token    string
}

func (c Credentials) Usable() bool {
	return c.Token != "" || (c.Username != "" && c.Password != "")
}

// Session is a bearer token together with its validity window. ExpiresAt is
// the zero time when the token carried no readable expiry; such sessions are
// used until the server rejects them.
type Session struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresWithin reports whether the session is known to expire within d of
// now. Unknown expiry counts as not expiring.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s == nil || s.Token == "" {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(s.ExpiresAt)
}
