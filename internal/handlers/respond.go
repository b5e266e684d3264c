package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
	"github.com/arhammunir1104/ecom-sub001/internal/services"
)

// statusFor maps the error taxonomy to HTTP statuses. Store-layer transient
// errors only reach here when no fallback remained.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrMalformedKey):
		return fiber.StatusBadRequest
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidOrExpiredCode):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrEmailInUse),
		errors.Is(err, repositories.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, repositories.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// fail renders an error response. Authentication-adjacent failures keep
// their generic, non-enumerating messages; everything else carries the
// error detail.
func fail(c *fiber.Ctx, err error, message string) error {
	status := statusFor(err)
	body := fiber.Map{"message": message}
	if status != fiber.StatusUnauthorized {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

// validationErrors renders validator failures field by field.
func validationErrors(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
