package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/api/controllers"
	"github.com/sajikita/foodcourt-backend/api/middleware"
	"github.com/sajikita/foodcourt-backend/internal/orders"
	"github.com/sajikita/foodcourt-backend/internal/payments"
	"github.com/sajikita/foodcourt-backend/internal/qrcodes"
	"github.com/sajikita/foodcourt-backend/internal/revenue"
	"github.com/sajikita/foodcourt-backend/internal/settings"
	"github.com/sajikita/foodcourt-backend/internal/settlements"
	"github.com/sajikita/foodcourt-backend/internal/tenants"
	"github.com/sajikita/foodcourt-backend/internal/users"
	"github.com/sajikita/foodcourt-backend/pkg/config"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
	pkgredis "github.com/sajikita/foodcourt-backend/pkg/redis"
)

// Services bundles the domain services the router wires to handlers.
type Services struct {
	Users       users.Service
	Tenants     tenants.Service
	Orders      orders.Service
	Payments    payments.Service
	QRCodes     qrcodes.Service
	Settlements settlements.Service
	Settings    settings.Service
	Revenue     revenue.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	db *gorm.DB,
	idempotencyStore pkgredis.IdempotencyStore,
	metricsGatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, db, logg))
	})

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(svcs.Users, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.Me(svcs.Users, logg))
	})

	kasir := enums.UserRoleKasir.String()
	admin := enums.UserRoleAdmin.String()
	tenant := enums.UserRoleTenant.String()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(svcs.Orders, logg))
			r.With(middleware.RequireRoles(logg, kasir, admin)).Group(func(r chi.Router) {
				r.Post("/", controllers.OrderCreate(svcs.Orders, logg))
				r.Patch("/{orderId}/status", controllers.OrderUpdateStatus(svcs.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
				r.Post("/{orderId}/qr", controllers.QRGenerate(svcs.QRCodes, logg))
				r.Delete("/{orderId}/qr", controllers.QRDeactivate(svcs.QRCodes, logg))
			})
			r.Get("/{orderId}/payments", controllers.PaymentListByOrder(svcs.Payments, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.With(middleware.RequireRoles(logg, kasir, admin)).Group(func(r chi.Router) {
				r.Post("/", controllers.PaymentProcess(svcs.Payments, logg))
				r.Post("/validate", controllers.PaymentValidate(svcs.Payments, logg))
				r.Patch("/{paymentId}/status", controllers.PaymentUpdateStatus(svcs.Payments, logg))
				r.Post("/{paymentId}/refund", controllers.PaymentRefund(svcs.Payments, logg))
			})
			r.With(middleware.RequireRoles(logg, admin, tenant)).Get("/statistics", controllers.PaymentStatistics(svcs.Payments, logg))
			r.Get("/{paymentId}", controllers.PaymentGet(svcs.Payments, logg))
		})

		r.Route("/qr", func(r chi.Router) {
			r.Get("/{identifier}", controllers.QRGet(svcs.QRCodes, logg))
			r.Get("/{token}/validate", controllers.QRValidate(svcs.QRCodes, logg))
			r.With(middleware.RequireRoles(logg, kasir, admin)).Post("/scan", controllers.QRScan(svcs.QRCodes, logg))
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", controllers.TenantList(svcs.Tenants, logg))
			r.Get("/{tenantId}", controllers.TenantGet(svcs.Tenants, logg))
			r.Get("/{tenantId}/settlements", controllers.SettlementListByTenant(svcs.Settlements, logg))
			r.With(middleware.RequireRoles(logg, admin)).Group(func(r chi.Router) {
				r.Post("/", controllers.TenantCreate(svcs.Tenants, logg))
				r.Put("/{tenantId}", controllers.TenantUpdate(svcs.Tenants, logg))
			})
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, admin))
			r.Get("/", controllers.SettlementList(svcs.Settlements, logg))
			r.Post("/", controllers.SettlementInitiate(svcs.Settlements, logg))
			r.Get("/{settlementId}", controllers.SettlementGet(svcs.Settlements, logg))
			r.Post("/{settlementId}/process", controllers.SettlementProcess(svcs.Settlements, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, admin))
			r.Get("/", controllers.SettingList(svcs.Settings, logg))
			r.Get("/split", controllers.SettingGetSplit(svcs.Settings, logg))
			r.Put("/split", controllers.SettingUpdateSplit(svcs.Settings, logg))
			r.Post("/split/preview", controllers.SettingPreviewSplit(svcs.Revenue, logg))
			r.Get("/{key}", controllers.SettingGet(svcs.Settings, logg))
			r.Put("/{key}", controllers.SettingUpdate(svcs.Settings, logg))
		})
	})

	return r
}
