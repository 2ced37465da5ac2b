package routes

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	accounthandler "github.com/janisto/huma-dashboard/internal/http/v1/account"
	"github.com/janisto/huma-dashboard/internal/http/v1/feedback"
	"github.com/janisto/huma-dashboard/internal/http/v1/profile"
	"github.com/janisto/huma-dashboard/internal/platform/auth"
	accountsvc "github.com/janisto/huma-dashboard/internal/service/account"
	"github.com/janisto/huma-dashboard/internal/settings"
)

// Register wires all HTTP routes into the provided API router.
func Register(
	api huma.API,
	verifier auth.Verifier,
	accounts accountsvc.Service,
	sessions *settings.Sessions,
) {
	// Apply auth middleware for protected endpoints
	api.UseMiddleware(auth.NewAuthMiddleware(api, verifier))

	accounthandler.Register(api, accounts, sessions)
	prefix := apiPrefix(api)
	profile.Register(api, sessions, prefix)
	feedback.Register(api, sessions, prefix)
}

func apiPrefix(api huma.API) string {
	for _, s := range api.OpenAPI().Servers {
		if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return ""
}
