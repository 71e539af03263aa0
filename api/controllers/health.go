package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/api/responses"
	"github.com/sajikita/foodcourt-backend/pkg/config"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FoodCourt-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database so load balancers stop routing to a pod
// that lost its connection pool.
func HealthReady(cfg *config.Config, db *gorm.DB, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FoodCourt-Env", cfg.App.Env)

		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(r.Context())
			}
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
