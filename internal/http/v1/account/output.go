package account

// SessionOutput for sign-up and sign-in
type SessionOutput struct {
	Body Session
}

// UserOutput for GET /auth/me
type UserOutput struct {
	Body User
}
