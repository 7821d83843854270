package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/abdotaker608/golden-pens-api/internal/api"
	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/logger"
	"github.com/abdotaker608/golden-pens-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

// APIHandle wraps the API server with Shutdownable.
type APIHandle struct {
	*api.Server
}

// Shutdown implements do.Shutdownable.
func (h *APIHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideAPIServer provides the HTTP request handler.
func ProvideAPIServer(i do.Injector) (*APIHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:       do.MustInvoke[*service.AuthService](i),
		Profiles:   do.MustInvoke[*service.ProfileService](i),
		Stories:    do.MustInvoke[*service.StoryService](i),
		Search:     do.MustInvoke[*service.SearchService](i),
		Authorizer: do.MustInvoke[*service.Authorizer](i),
	}

	return &APIHandle{Server: api.NewServer(cfg, services, log.Logger)}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	apiHandle := do.MustInvoke[*APIHandle](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiHandle.Server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
