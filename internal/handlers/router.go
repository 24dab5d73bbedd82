package handlers

import (
	"context"
	"time"

	"dukan/internal/metrics"
	"dukan/internal/middleware"
	"dukan/internal/realtime"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP layer routes to. Hub may be nil,
// in which case /ws is not mounted.
type Dependencies struct {
	Tokens   *services.TokenService
	Auth     *services.AuthService
	Users    *services.UserService
	Sellers  *services.SellerService
	Products *services.ProductService
	Events   *services.EventService
	Coupons  *services.CouponService
	Orders   *services.OrderService
	Withdraw *services.WithdrawService
	Chat     *services.ChatService
	Payments *services.PaymentService
	Uploads  *services.UploadService
	Hub      *realtime.Hub
	Metrics  *metrics.Manager
	Log      *zap.Logger

	CORSOrigins string
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// NewApp builds the fiber application with every route mounted. ctx bounds
// the lifetime of websocket sessions.
func NewApp(ctx context.Context, d Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "dukan",
		ErrorHandler: ErrorHandler(d.Log),
		BodyLimit:    8 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowCredentials: d.CORSOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, x-platform",
	}))
	if d.Metrics != nil {
		app.Use(middleware.Metrics(d.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	protect := middleware.AuthRequired(d.Tokens)
	api := app.Group("/api/v2")

	NewUserHandler(d.Auth, d.Users, d.Tokens, d.Log).RegisterRoutes(api, protect)
	NewSellerHandler(d.Sellers).RegisterRoutes(api, protect)
	NewProductHandler(d.Products).RegisterRoutes(api, protect)
	NewEventHandler(d.Events).RegisterRoutes(api, protect)
	NewCouponHandler(d.Coupons).RegisterRoutes(api, protect)
	NewOrderHandler(d.Orders).RegisterRoutes(api, protect)
	NewWithdrawHandler(d.Withdraw).RegisterRoutes(api, protect)
	NewChatHandler(d.Chat).RegisterRoutes(api, protect)
	NewPaymentHandler(d.Payments).RegisterRoutes(api, protect)
	NewUploadHandler(d.Uploads).RegisterRoutes(api, protect)

	if d.Hub != nil {
		NewWebsocketHandler(ctx, d.Hub, d.Tokens).RegisterRoutes(app)
	}

	return app
}
