package profile

import (
	"github.com/janisto/huma-dashboard/internal/platform/timeutil"
	profilesvc "github.com/janisto/huma-dashboard/internal/service/profile"
	"github.com/janisto/huma-dashboard/internal/upload"
)

// Notifications represents notification preferences.
type Notifications struct {
	CommunicationEmails bool   `json:"communicationEmails" doc:"Emails about account activity" example:"true"`
	MarketingEmails     bool   `json:"marketingEmails"     doc:"Product news and offers"      example:"false"`
	SocialEmails        bool   `json:"socialEmails"        doc:"Friend requests and follows"  example:"true"`
	SecurityEmails      bool   `json:"securityEmails"      doc:"Account security emails"      example:"true"`
	PushNotifications   string `json:"pushNotifications"   doc:"Push notification level"      example:"all" enum:"all,mentions,none"`
}

// Profile represents a user profile response.
type Profile struct {
	ID            string        `json:"id"                    doc:"Unique identifier"          example:"user-123"`
	Email         string        `json:"email"                 doc:"Email address"              example:"jane@example.com"`
	Username      string        `json:"username,omitempty"    doc:"Username"                   example:"jane"`
	FirstName     string        `json:"firstName"             doc:"First name"                 example:"Jane"`
	LastName      string        `json:"lastName"              doc:"Last name"                  example:"Doe"`
	DateOfBirth   string        `json:"dateOfBirth,omitempty" doc:"Date of birth (YYYY-MM-DD)" example:"1990-04-12"`
	AvatarURL     string        `json:"avatarUrl,omitempty"   doc:"Public avatar URL"`
	Notifications Notifications `json:"notifications"         doc:"Notification preferences"`
	CreatedAt     timeutil.Time `json:"createdAt"             doc:"Creation timestamp"         example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt     timeutil.Time `json:"updatedAt"             doc:"Last update timestamp"      example:"2024-01-15T10:30:00.000Z"`
}

// AvatarPreview is a staged avatar rendered for display.
type AvatarPreview struct {
	Name      string `json:"name"              doc:"Original file name" example:"me.png"`
	MimeType  string `json:"mimeType"          doc:"Detected media type" example:"image/png"`
	SizeBytes int64  `json:"sizeBytes"         doc:"File size in bytes" example:"512000"`
	Size      string `json:"size"              doc:"Human readable size" example:"500 KB"`
	DataURL   string `json:"dataUrl,omitempty" doc:"Inline data URL of the image"`
}

func toHTTPNotifications(n profilesvc.Notifications) Notifications {
	return Notifications{
		CommunicationEmails: n.CommunicationEmails,
		MarketingEmails:     n.MarketingEmails,
		SocialEmails:        n.SocialEmails,
		SecurityEmails:      n.SecurityEmails,
		PushNotifications:   n.PushNotifications,
	}
}

func fromHTTPNotifications(n Notifications) profilesvc.Notifications {
	return profilesvc.Notifications{
		CommunicationEmails: n.CommunicationEmails,
		MarketingEmails:     n.MarketingEmails,
		SocialEmails:        n.SocialEmails,
		SecurityEmails:      n.SecurityEmails,
		PushNotifications:   n.PushNotifications,
	}
}

func toHTTPProfile(p *profilesvc.Profile) Profile {
	return Profile{
		ID:            p.ID,
		Email:         p.Email,
		Username:      p.Username,
		FirstName:     p.Firstname,
		LastName:      p.Lastname,
		DateOfBirth:   timeutil.FormatDate(p.DateOfBirth),
		AvatarURL:     p.AvatarURL,
		Notifications: toHTTPNotifications(p.Notifications),
		CreatedAt:     timeutil.NewTime(p.CreatedAt),
		UpdatedAt:     timeutil.NewTime(p.UpdatedAt),
	}
}

func toHTTPPreview(p upload.Preview) AvatarPreview {
	return AvatarPreview{
		Name:      p.Name,
		MimeType:  p.MimeType,
		SizeBytes: p.SizeBytes,
		Size:      p.Size,
		DataURL:   p.Payload,
	}
}
