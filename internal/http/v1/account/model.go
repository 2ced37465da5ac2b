package account

import accountsvc "github.com/janisto/huma-dashboard/internal/service/account"

// User is the signed-in identity.
type User struct {
	ID            string `json:"id"            doc:"User identifier" example:"user-123"`
	Email         string `json:"email"         doc:"Email address"   example:"jane@example.com"`
	EmailVerified bool   `json:"emailVerified" doc:"Whether the email address is verified"`
}

// Session carries the tokens of a signed-in user.
type Session struct {
	IDToken      string `json:"idToken"      doc:"Bearer token for authenticated requests"`
	RefreshToken string `json:"refreshToken" doc:"Token used to obtain a new ID token"`
	ExpiresIn    int    `json:"expiresIn"    doc:"Seconds until the ID token expires" example:"3600"`
	User         User   `json:"user"`
}

func toHTTPUser(u accountsvc.User) User {
	return User{ID: u.ID, Email: u.Email, EmailVerified: u.EmailVerified}
}

func toHTTPSession(s *accountsvc.Session) Session {
	return Session{
		IDToken:      s.IDToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		User:         toHTTPUser(s.User),
	}
}
