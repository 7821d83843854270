package providers

import (
	"github.com/samber/do/v2"

	"github.com/abdotaker608/golden-pens-api/internal/auth"
	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/logger"
	"github.com/abdotaker608/golden-pens-api/internal/service"
	"github.com/abdotaker608/golden-pens-api/internal/validation"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	mailerHandle := do.MustInvoke[*MailerHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	cfg := do.MustInvoke[*config.Config](i)

	return service.NewAuthService(
		storeHandle.Store,
		tokenService,
		mailerHandle.Mailer,
		validator,
		log.Logger,
		cfg.Server.FrontendURL,
	), nil
}

// ProvideProfileService provides the profile and follow service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	cfg := do.MustInvoke[*config.Config](i)

	return service.NewProfileService(storeHandle.Store, validator, log.Logger, cfg.Search), nil
}

// ProvideStoryService provides the story, chapter, and reply service.
func ProvideStoryService(i do.Injector) (*service.StoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	cfg := do.MustInvoke[*config.Config](i)

	return service.NewStoryService(storeHandle.Store, validator, log.Logger, cfg.Search), nil
}

// ProvideSearchService provides the story search and feed service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, cfg.Search, log.Logger), nil
}

// ProvideAuthorizer provides the resource ownership authorizer.
func ProvideAuthorizer(i do.Injector) (*service.Authorizer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewAuthorizer(storeHandle.Store), nil
}
