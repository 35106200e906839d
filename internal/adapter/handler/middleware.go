package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rl1809/stockroom/internal/core/domain"
)

const ownerLocalKey = "owner"

// authenticate resolves the bearer token and stores the account id for the
// downstream handlers.
func (h *HTTPHandler) authenticate(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	account, err := h.auth.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(ownerLocalKey, account.ID)
	return c.Next()
}

func ownerID(c *fiber.Ctx) string {
	owner, _ := c.Locals(ownerLocalKey).(string)
	return owner
}

func (h *HTTPHandler) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	if chainErr := c.Next(); chainErr != nil {
		if err := c.App().ErrorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	h.logger.Info("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}

func requestTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		c.SetUserContext(ctx)
		return c.Next()
	}
}
