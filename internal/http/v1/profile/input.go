package profile

import "mime/multipart"

// ProfileCreateInput for POST /profile
type ProfileCreateInput struct {
	Body struct {
		FirstName   string `json:"firstName"             maxLength:"100" doc:"First name" example:"Jane"`
		LastName    string `json:"lastName"              maxLength:"100" doc:"Last name"  example:"Doe"`
		Username    string `json:"username,omitempty"    maxLength:"50"  doc:"Username" example:"jane"`
		DateOfBirth string `json:"dateOfBirth,omitempty" doc:"Date of birth (YYYY-MM-DD)" example:"1990-04-01"`
	}
}

// ProfileGetInput for GET /profile
type ProfileGetInput struct{}

// ProfileUpdateInput for PATCH /profile.
//
// Text parts left out keep their current draft value. The password parts are
// only honored for the request that carries them.
type ProfileUpdateInput struct {
	RawBody multipart.Form
}

// AvatarPreviewInput for POST /profile/avatar/preview
type AvatarPreviewInput struct {
	RawBody multipart.Form
}

// NotificationsUpdateInput for PUT /profile/notifications
type NotificationsUpdateInput struct {
	Body Notifications
}
