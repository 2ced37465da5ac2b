package profile

// ProfileCreateOutput for POST /profile
type ProfileCreateOutput struct {
	Location string `header:"Location"`
	Body     Profile
}

// ProfileGetOutput for GET /profile
type ProfileGetOutput struct {
	Body Profile
}

// ProfileUpdateOutput for PATCH /profile and PUT /profile/notifications
type ProfileUpdateOutput struct {
	Body Profile
}

// AvatarPreviewOutput for POST /profile/avatar/preview
type AvatarPreviewOutput struct {
	Body AvatarPreview
}
