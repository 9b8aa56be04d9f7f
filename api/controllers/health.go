package controllers

import (
	"net/http"

	"github.com/wardstockhq/wardstock-backend/api/responses"
	"github.com/wardstockhq/wardstock-backend/pkg/config"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WardStock-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, redisP redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WardStock-Env", cfg.App.Env)

		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
