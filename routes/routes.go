package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sharath018/jharkhand-tourism-backend/config"
	"github.com/sharath018/jharkhand-tourism-backend/internal/application"
	"github.com/sharath018/jharkhand-tourism-backend/internal/auditlog"
	"github.com/sharath018/jharkhand-tourism-backend/internal/contentstore"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger/legacy"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger/vendorreg"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledgerapi"
	"github.com/sharath018/jharkhand-tourism-backend/internal/notification"
	"github.com/sharath018/jharkhand-tourism-backend/internal/payment"
	"github.com/sharath018/jharkhand-tourism-backend/internal/submission"
	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
	"github.com/sharath018/jharkhand-tourism-backend/middleware"
)

const (
	roleVendor = "vendor"
	roleAdmin  = "admin"

	contentStoreTimeout = 60 * time.Second
	paymentClaimTTL     = 90 * 24 * time.Hour
)

// Infra holds the long-lived clients main owns and closes. Redis may be nil.
type Infra struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher notification.Publisher
	Pusher    notification.Pusher
}

func Setup(r *gin.Engine, cfg *config.Config, infra Infra) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.AuditMiddleware())

	// ========== Shared services ==========
	auditSvc := auditlog.NewService(auditlog.NewRepository(infra.DB))
	auditHandler := auditlog.NewHandler(auditSvc)

	profileRepo := vendorprofile.NewRepository(infra.DB)
	profileHandler := vendorprofile.NewHandler(vendorprofile.NewService(profileRepo, auditSvc))

	notificationSvc := notification.NewService(notification.NewRepository(infra.DB), infra.Publisher, infra.Pusher)
	notificationHandler := notification.NewHandler(notificationSvc)

	content := contentstore.NewClient(cfg.IPFSAPIURL, cfg.IPFSGatewayURL, cfg.IPFSJWT, contentStoreTimeout)

	// ========== Ledgers ==========
	legacyClient := legacy.NewClient(ledger.NewGateway(cfg.LegacyLedgerRPCURL, cfg.LegacyLedgerContract, cfg.LedgerTimeout))
	vendorClient := vendorreg.NewClient(
		ledger.NewGateway(cfg.VendorLedgerRPCURL, cfg.VendorLedgerContract, cfg.LedgerTimeout),
		cfg.LedgerExplorerURL,
		replayOptions(cfg, infra.Redis)...,
	)
	ledgerHandler := ledgerapi.NewHandler(legacyClient, vendorClient, auditSvc)

	// ========== Payments ==========
	razorpay := payment.NewRazorpayGateway(cfg.RazorpayKey, cfg.RazorpaySecret)
	var verifier payment.Verifier
	if cfg.RazorpayKey != "" && cfg.RazorpaySecret != "" {
		verifier = razorpay
	} else {
		log.Println("⚠️ Razorpay not configured, receipts are checked locally only")
	}
	paymentHandler := payment.NewHandler(razorpay)

	// ========== Submission ==========
	ids, err := submission.NewIDNode(cfg.SnowflakeNode)
	if err != nil {
		log.Fatalf("❌ Snowflake node init failed: %v", err)
	}
	submissionHandler := submission.NewHandler(submission.NewService(submission.Dependencies{
		Profiles:      profileRepo,
		Content:       content,
		Legacy:        legacyClient,
		Vendor:        vendorClient,
		Store:         submission.NewStore(infra.DB),
		Verifier:      verifier,
		Notifier:      notificationSvc,
		Audit:         auditSvc,
		IDs:           ids,
		LedgerTimeout: cfg.LedgerTimeout,
	}))

	// ========== Review ==========
	applicationHandler := application.NewHandler(application.NewService(
		application.NewRepository(infra.DB),
		legacyClient,
		content,
		profileRepo,
		notificationSvc,
		auditSvc,
		cfg.CertificateValidityDays,
	))

	// ========== Public ledger reads ==========
	ledgerGroup := api.Group("/ledger")
	ledgerGroup.Use(middleware.RateLimiter(60, time.Minute, infra.Redis))
	{
		ledgerGroup.GET("/statistics", ledgerHandler.GetStatistics)
		ledgerGroup.POST("/verify", ledgerHandler.VerifyCertificate)
		ledgerGroup.GET("/vendors/:id", ledgerHandler.GetVendor)
		ledgerGroup.GET("/vendors", ledgerHandler.FindVendors)
		ledgerGroup.GET("/transactions/payment/:paymentId", ledgerHandler.GetTransactionByPayment)
		ledgerGroup.GET("/transactions", ledgerHandler.ListTransactions)
		ledgerGroup.GET("/fees/platform", ledgerHandler.GetPlatformFee)
		ledgerGroup.GET("/fees/registration/:vendorType", ledgerHandler.GetRegistrationFee)
	}

	auth := middleware.AuthMiddleware(cfg)

	ledgerAdmin := ledgerGroup.Group("", auth, middleware.RBACMiddleware(roleAdmin))
	{
		ledgerAdmin.POST("/transactions/vendor-to-platform", ledgerHandler.RecordVendorPayment)
		ledgerAdmin.POST("/transactions/tourist-to-platform", ledgerHandler.RecordTouristPayment)
	}

	// ========== Vendor ==========
	vendor := api.Group("/vendor", auth, middleware.RBACMiddleware(roleVendor))
	{
		vendor.POST("/role", profileHandler.SelectRole)
		vendor.GET("/profile", profileHandler.GetMyProfile)
		vendor.DELETE("/profile", profileHandler.Deactivate)

		vendor.POST("/payments/order", paymentHandler.CreateOrder)
		vendor.POST("/applications", middleware.RateLimiter(5, time.Minute, infra.Redis), submissionHandler.Submit)

		vendor.GET("/notifications", notificationHandler.GetMyInApp)
		vendor.PUT("/notifications/:id/read", notificationHandler.MarkInAppRead)
		vendor.POST("/notifications/fcm/register", notificationHandler.RegisterFCMToken)
		vendor.DELETE("/notifications/fcm/unregister", notificationHandler.UnregisterFCMToken)
	}

	// ========== Admin ==========
	admin := api.Group("/admin", auth, middleware.RBACMiddleware(roleAdmin))
	{
		admin.GET("/applications", applicationHandler.List)
		admin.GET("/applications/export", applicationHandler.Export)
		admin.GET("/applications/:id", applicationHandler.Get)
		admin.POST("/applications/:id/approve", applicationHandler.Approve)
		admin.POST("/applications/:id/reject", applicationHandler.Reject)
		admin.POST("/applications/:id/certificate/renew", applicationHandler.RenewCertificate)

		admin.GET("/auditlogs", auditHandler.GetAuditLogs)
		admin.GET("/auditlogs/stats", auditHandler.GetAuditLogStats)
		admin.GET("/auditlogs/:id", auditHandler.GetAuditLogByID)
	}
}

// replayOptions maps LEDGER_B_REPLAY_CHECK onto the vendor registry client.
func replayOptions(cfg *config.Config, rdb *redis.Client) []vendorreg.Option {
	switch cfg.VendorReplayCheck {
	case "ledger":
		log.Println("✅ Vendor registry replay check: ledger lookup")
		return []vendorreg.Option{vendorreg.WithLedgerReplayCheck()}
	case "redis":
		if rdb == nil {
			log.Println("⚠️ LEDGER_B_REPLAY_CHECK=redis without Redis, using in-process guard")
			return []vendorreg.Option{vendorreg.WithPaymentClaimer(payment.NewMemoryReplayGuard())}
		}
		log.Println("✅ Vendor registry replay check: redis claim")
		return []vendorreg.Option{vendorreg.WithPaymentClaimer(payment.NewRedisReplayGuard(rdb, paymentClaimTTL))}
	default:
		return nil
	}
}
