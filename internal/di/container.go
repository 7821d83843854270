// Package di provides dependency injection configuration for the Golden Pens API.
package di

import (
	"github.com/samber/do/v2"

	"github.com/abdotaker608/golden-pens-api/internal/auth"
	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/di/providers"
	"github.com/abdotaker608/golden-pens-api/internal/logger"
	"github.com/abdotaker608/golden-pens-api/internal/service"
	"github.com/abdotaker608/golden-pens-api/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage and delivery
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideMailer)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideStoryService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideAuthorizer)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.MailerHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.StoryService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.Authorizer](injector)

	_ = do.MustInvoke[*providers.APIHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
