package account

// SignUpInput for POST /auth/signup
type SignUpInput struct {
	Body struct {
		Email     string `json:"email"              maxLength:"254" doc:"Email address" example:"jane@example.com"`
		Password  string `json:"password"           maxLength:"128" doc:"Password"`
		FirstName string `json:"firstName"          maxLength:"100" doc:"First name" example:"Jane"`
		LastName  string `json:"lastName"           maxLength:"100" doc:"Last name"  example:"Doe"`
		Username  string `json:"username,omitempty" maxLength:"50" doc:"Username" example:"jane"`
	}
}

// SignInInput for POST /auth/signin
type SignInInput struct {
	Body struct {
		Email    string `json:"email"    maxLength:"254" doc:"Email address" example:"jane@example.com"`
		Password string `json:"password" maxLength:"128" doc:"Password"`
	}
}

// EmailInput for POST /auth/magic-link and POST /auth/password-reset
type EmailInput struct {
	Body struct {
		Email string `json:"email" maxLength:"254" doc:"Email address" example:"jane@example.com"`
	}
}
