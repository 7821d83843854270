package providers

import (
	"github.com/samber/do/v2"

	"github.com/abdotaker608/golden-pens-api/internal/auth"
	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/logger"
)

// AuthKey wraps the token signing key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the token signing key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	cfg.Auth.TokenKey = key

	log.Info("Token signing key loaded",
		"action_token_duration", cfg.Auth.ActionTokenDuration,
		"session_token_duration", cfg.Auth.SessionTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.ActionTokenDuration, cfg.Auth.SessionTokenDuration)
}
