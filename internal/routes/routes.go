// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"lexpay/internal/config"
	"lexpay/internal/handlers"
	"lexpay/internal/middleware"
	"lexpay/internal/models"
	"lexpay/internal/repositories"
	"lexpay/internal/services/audit"
	"lexpay/internal/services/auth"
	"lexpay/internal/services/commission"
	"lexpay/internal/services/payout"
	"lexpay/internal/services/rail"
	"lexpay/internal/services/refund"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services wires the settlement stack once so main can hand the
// background sweepers the same instances the routes use.
type Services struct {
	Commission    commission.Service
	Payout        payout.Service
	Refund        refund.Service
	PayoutSweeper *payout.Sweeper
	RefundSweeper *refund.Sweeper
}

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) *Services {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	lawyerRepo := repositories.NewLawyerRepository(db)
	earningRepo := repositories.NewEarningRepository(db)
	commissionRepo := repositories.NewCommissionRepository(db)
	payoutRepo := repositories.NewPayoutRepository(db)
	refundRepo := repositories.NewRefundRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Services
	recorder := audit.NewRecorder(auditRepo)
	authService := auth.NewService(userRepo)
	commissionService := commission.NewService(commissionRepo, repositories.CacheService, recorder)

	railTimeout := config.GetDurationEnv("RAIL_TIMEOUT", 0)
	stripeRail := rail.NewStripeRail(railTimeout)

	payoutConfig := payout.Config{
		Currency:       config.GetEnv("PAYOUT_CURRENCY", "USD"),
		RailTimeout:    railTimeout,
		BulkWorkers:    config.GetIntEnv("PAYOUT_BULK_WORKERS", 4),
		SweepThreshold: config.GetDurationEnv("PAYOUT_SWEEP_THRESHOLD", 0),
		SweepInterval:  config.GetDurationEnv("PAYOUT_SWEEP_INTERVAL", 0),
	}
	lockFactory := func(lawyerID uint, token string) payout.Lock {
		return repositories.NewPayoutLock(repositories.RedisClient, lawyerID, token)
	}
	payoutService := payout.NewService(
		payoutRepo,
		earningRepo,
		lawyerRepo,
		commissionService,
		stripeRail,
		lockFactory,
		recorder,
		payoutConfig,
	)
	refundService := refund.NewService(refundRepo, stripeRail, recorder)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	commissionHandler := handlers.NewCommissionHandler(commissionService)
	payoutHandler := handlers.NewPayoutHandler(payoutService)
	refundHandler := handlers.NewRefundHandler(refundService)
	auditHandler := handlers.NewAuditHandler(auditRepo)
	lawyerHandler := handlers.NewLawyerHandler(lawyerRepo, earningRepo, recorder)

	// Public routes
	api := app.Group("/api")
	api.Post("/login", authHandler.LoginUser)
	api.Post("/refresh", authHandler.RefreshToken)
	app.Get("/health", handlers.HealthCheck)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to LexPay API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	// Protected routes with auth middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/change-password", authHandler.ChangePassword)
	protected.Post("/logout", authHandler.LogoutUser)

	setupCommissionRoutes(protected, commissionHandler)
	setupLawyerRoutes(protected, lawyerHandler, payoutHandler)
	setupPayoutRoutes(protected, payoutHandler)
	setupRefundRoutes(protected, refundHandler)

	// Audit log is read-only and restricted to its own permission.
	protected.Get("/audit", middleware.HasPermission(models.PermissionAuditRead), auditHandler.ListAuditLog)

	return &Services{
		Commission:    commissionService,
		Payout:        payoutService,
		Refund:        refundService,
		PayoutSweeper: payout.NewSweeper(payoutRepo, recorder, payoutConfig),
		RefundSweeper: refund.NewSweeper(refundRepo, recorder, payoutConfig.SweepThreshold, payoutConfig.SweepInterval),
	}
}

func setupCommissionRoutes(router fiber.Router, h *handlers.CommissionHandler) {
	commission := router.Group("/commission")

	commission.Get("/config", middleware.HasPermission(models.PermissionCommissionRead), h.GetActiveConfig)
	commission.Post("/preview", middleware.HasPermission(models.PermissionCommissionRead), h.Preview)
	commission.Put("/config", middleware.AdminAuthMiddleware, h.UpdateConfig)
	commission.Get("/history", middleware.HasPermission(models.PermissionCommissionRead), h.GetHistory)
}

func setupLawyerRoutes(router fiber.Router, h *handlers.LawyerHandler, ph *handlers.PayoutHandler) {
	lawyers := router.Group("/lawyers")

	lawyers.Post("/", middleware.HasPermission(models.PermissionWriteAdmin), h.RegisterLawyer)
	lawyers.Get("/", middleware.HasPermission(models.PermissionPayoutRead), h.ListLawyers)
	lawyers.Get("/:id", middleware.HasPermission(models.PermissionPayoutRead), h.GetLawyer)
	lawyers.Post("/:id/earnings", middleware.HasPermission(models.PermissionPayoutWrite), h.RecordEarning)
	lawyers.Get("/:id/earnings/unsettled", middleware.HasPermission(models.PermissionPayoutRead), h.GetUnsettledEarnings)
	lawyers.Get("/:id/payouts", middleware.HasPermission(models.PermissionPayoutRead), ph.ListLawyerPayouts)
}

func setupPayoutRoutes(router fiber.Router, h *handlers.PayoutHandler) {
	payouts := router.Group("/payouts")

	payouts.Post("/", middleware.HasPermission(models.PermissionPayoutWrite), h.ProcessPayout)
	payouts.Post("/bulk", middleware.HasPermission(models.PermissionPayoutWrite), h.ProcessBulkPayout)
	payouts.Get("/", middleware.HasPermission(models.PermissionPayoutRead), h.ListPayouts)
	payouts.Get("/ref/:reference", middleware.HasPermission(models.PermissionPayoutRead), h.GetPayoutByReference)
	payouts.Get("/:id", middleware.HasPermission(models.PermissionPayoutRead), h.GetPayout)
	payouts.Post("/:id/resubmit", middleware.HasPermission(models.PermissionPayoutWrite), h.ResubmitPayout)
	payouts.Post("/:id/cancel", middleware.HasPermission(models.PermissionPayoutWrite), h.CancelPayout)
}

func setupRefundRoutes(router fiber.Router, h *handlers.RefundHandler) {
	refunds := router.Group("/refunds")

	refunds.Post("/", middleware.HasPermission(models.PermissionRefundWrite), h.RequestRefund)
	refunds.Get("/", middleware.HasPermission(models.PermissionRefundRead), h.ListRefunds)
	refunds.Get("/:id", middleware.HasPermission(models.PermissionRefundRead), h.GetRefund)
	refunds.Post("/:id/approve", middleware.HasPermission(models.PermissionRefundWrite), h.ApproveRefund)
	refunds.Post("/:id/reject", middleware.HasPermission(models.PermissionRefundWrite), h.RejectRefund)
	refunds.Post("/:id/execute", middleware.HasPermission(models.PermissionRefundWrite), h.ExecuteRefund)
}
