package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/rl1809/stockroom/internal/core/service"
)

const idempotencyHeader = "Idempotency-Key"

type HTTPHandler struct {
	auth    *service.AuthService
	items   *service.ItemService
	sales   *service.SaleService
	reports *service.ReportService
	logger  *zap.Logger
}

type HTTPConfig struct {
	AllowOrigins   string
	RequestTimeout time.Duration
}

type LoginHTTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateItemHTTPRequest struct {
	Name     string           `json:"name"`
	Quantity *int             `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

type RestockHTTPRequest struct {
	Quantity *int `json:"quantity"`
}

type SaleHTTPRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

func NewHTTPHandler(
	auth *service.AuthService,
	items *service.ItemService,
	sales *service.SaleService,
	reports *service.ReportService,
	logger *zap.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		auth:    auth,
		items:   items,
		sales:   sales,
		reports: reports,
		logger:  logger,
	}
}

// NewApp builds the fiber application serving the REST API.
func NewApp(h *HTTPHandler, cfg HTTPConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          h.errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + idempotencyHeader,
	}))
	app.Use(h.requestLogger)
	if cfg.RequestTimeout > 0 {
		app.Use(requestTimeout(cfg.RequestTimeout))
	}

	h.RegisterRoutes(app)
	return app
}

func (h *HTTPHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	items := api.Group("/items", h.authenticate)
	items.Get("/", h.ListItems)
	items.Post("/", h.CreateItem)
	items.Delete("/:id", h.DeleteItem)
	items.Patch("/:id", h.RestockItem)

	sales := api.Group("/sales", h.authenticate)
	sales.Post("/", h.CreateSale)
	sales.Get("/summary", h.SalesSummary)
	sales.Get("/trend", h.SalesTrend)
}

func (h *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *HTTPHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *HTTPHandler) Login(c *fiber.Ctx) error {
	var req LoginHTTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *HTTPHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.items.ListItems(c.UserContext(), ownerID(c))
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *HTTPHandler) CreateItem(c *fiber.Ctx) error {
	var req CreateItemHTTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Quantity == nil || req.Price == nil {
		return fmt.Errorf("%w: quantity and price are required", domain.ErrValidation)
	}

	item, err := h.items.CreateItem(c.UserContext(), ownerID(c), req.Name, *req.Quantity, *req.Price)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *HTTPHandler) DeleteItem(c *fiber.Ctx) error {
	if err := h.items.DeleteItem(c.UserContext(), ownerID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Item deleted successfully"})
}

func (h *HTTPHandler) RestockItem(c *fiber.Ctx) error {
	var req RestockHTTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Quantity == nil {
		return fmt.Errorf("%w: quantity is required", domain.ErrValidation)
	}

	item, err := h.items.RestockItem(c.UserContext(), ownerID(c), c.Params("id"), *req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *HTTPHandler) CreateSale(c *fiber.Ctx) error {
	var req SaleHTTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	receipt, err := h.sales.RecordSale(c.UserContext(), ownerID(c), req.ItemID, req.Quantity, c.Get(idempotencyHeader))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

func (h *HTTPHandler) SalesSummary(c *fiber.Ctx) error {
	summary, err := h.reports.Summary(c.UserContext(), ownerID(c))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func (h *HTTPHandler) SalesTrend(c *fiber.Ctx) error {
	trend, err := h.reports.Trend(c.UserContext(), ownerID(c))
	if err != nil {
		return err
	}
	return c.JSON(trend)
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	return nil
}

// errorHandler maps domain errors onto HTTP statuses. Details of 5xx errors
// are logged, never returned.
func (h *HTTPHandler) errorHandler(c *fiber.Ctx, err error) error {
	status, message := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func statusFor(err error) (int, string) {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrItemNotFound):
		return fiber.StatusNotFound, "Item not found"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable, "request timed out"
	}
	return fiber.StatusInternalServerError, "internal error"
}
