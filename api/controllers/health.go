package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/rocketshoes-cart/api/responses"
	"github.com/angelmondragon/rocketshoes-cart/pkg/config"
	pkgerrors "github.com/angelmondragon/rocketshoes-cart/pkg/errors"
	"github.com/angelmondragon/rocketshoes-cart/pkg/logger"
)

const (
	envHeader    = "X-RocketShoes-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is any dependency the readiness probe should reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the storage backend when it is remote. A nil pinger
// means the cart lives in process memory and is always ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, storage Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		payload := map[string]string{
			"status":  "ready",
			"storage": cfg.Storage.Driver,
		}
		if storage != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := storage.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage not ready"))
				return
			}
		}
		responses.WriteSuccess(w, payload)
	}
}
