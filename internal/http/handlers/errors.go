package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storelaunch/internal/domain"
	applog "storelaunch/internal/log"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// classify maps a service error to its status and public code. ok is false
// for anything unexpected, whose text must not reach the client.
func classify(err error) (status int, code string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusNotFound, "store_unavailable", true
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "not_found", true
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "unauthorized", true
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "forbidden", true
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusBadRequest, "insufficient_stock", true
	case errors.Is(err, domain.ErrOutOfStock):
		return fiber.StatusBadRequest, "out_of_stock", true
	case errors.Is(err, domain.ErrEmptyCart):
		return fiber.StatusBadRequest, "empty_cart", true
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusBadRequest, "invalid_transition", true
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "invalid_input", true
	case errors.Is(err, domain.ErrCheckoutFailed):
		return fiber.StatusConflict, "checkout_failed", true
	}
	return fiber.StatusInternalServerError, "internal", false
}

// respondError writes the JSON error body for err. Unexpected errors are
// logged with the action and answered with a generic message.
func respondError(c *fiber.Ctx, action string, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorBody{Error: fiberCode(fe.Code), Message: fe.Message})
	}
	status, code, ok := classify(err)
	if !ok {
		c.Status(status)
		applog.Error(c, action, err, nil)
		return c.JSON(errorBody{Error: code, Message: "Something went wrong. Please try again."})
	}
	body := errorBody{Error: code, Message: err.Error()}
	var ise *domain.InsufficientStockError
	if errors.As(err, &ise) {
		body.ProductID = ise.ProductID
		body.Requested = ise.Requested
		body.Available = &ise.Available
	}
	c.Status(status)
	switch status {
	case fiber.StatusUnauthorized, fiber.StatusForbidden:
		applog.Security(c, action+".denied", map[string]any{"reason": code})
	case fiber.StatusConflict:
		applog.Error(c, action, err, nil)
	}
	return c.JSON(body)
}

func fiberCode(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case fiber.StatusTooManyRequests:
		return "rate_limited"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusUnprocessableEntity, fiber.StatusBadRequest:
		return "invalid_input"
	}
	if code >= 500 {
		return "internal"
	}
	return "error"
}

// ErrorHandler is the app-wide fallback for errors returned by handlers
// and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= 500 {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fe.Code).JSON(errorBody{Error: "internal", Message: "Something went wrong. Please try again."})
		}
		return c.Status(fe.Code).JSON(errorBody{Error: fiberCode(fe.Code), Message: fe.Message})
	}
	return respondError(c, "server.error", err)
}

// badRequest wraps a body decoding failure so it maps to 400.
func badRequest(err error) error {
	return domain.Invalid("malformed request body: %v", err)
}
