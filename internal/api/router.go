package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/hostelhub/hostel-system/docs"
	"github.com/hostelhub/hostel-system/internal/api/handler"
	"github.com/hostelhub/hostel-system/internal/api/middleware"
	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
	"github.com/hostelhub/hostel-system/internal/core/service"
	mongodb "github.com/hostelhub/hostel-system/internal/infrastructure/db/mongo"
	redisdb "github.com/hostelhub/hostel-system/internal/infrastructure/db/redis"
	"github.com/hostelhub/hostel-system/internal/infrastructure/http/handlers"
	"github.com/hostelhub/hostel-system/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	client *mongo.Client,
	db *mongo.Database,
	rdb *redis.Client,
	cfg *config.Config,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("hostel"))

	// --- Repositories ---
	roomRepo := mongodb.NewRoomRepository(db)
	occupantRepo := mongodb.NewOccupantRepository(db)
	attendanceRepo := mongodb.NewAttendanceRepository(db)
	txn := mongodb.NewSessionRunner(client)

	// --- Services ---
	allocationService := service.NewAllocationService(roomRepo, occupantRepo, txn, audit, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, ports.TokenPolicy{
		Secret:  cfg.JWTSecret,
		TTL:     cfg.QR.TTL,
		Methods: cfg.QR.Methods,
	}, audit, log)
	authService := service.NewAuthService(occupantRepo, cfg.Enrollment.IDs, cfg.JWTSecret, cfg.SessionTTL, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	roomHandler := handler.NewRoomHandler(allocationService)
	profileHandler := handler.NewProfileHandler(allocationService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)

	authMW := middleware.Auth(cfg.JWTSecret)
	qrLimiter := redisdb.NewRateLimiter(rdb, "qr", cfg.QR.RateLimit)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability / docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Authenticated API ---
	v1 := e.Group("/v1", authMW)
	v1.GET("/me", profileHandler.Me)
	v1.PUT("/me/room", profileHandler.ReassignRoom)
	v1.GET("/rooms", roomHandler.List)
	v1.GET("/attendance/qr", attendanceHandler.IssueQR, middleware.RateLimit(qrLimiter, log))
	v1.POST("/attendance", attendanceHandler.Mark)
	v1.GET("/attendance", attendanceHandler.ListMine)
	v1.GET("/attendance/:occupant_id", attendanceHandler.ListFor, middleware.RBAC(domain.RoleWarden))

	return e
}
