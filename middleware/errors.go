package middleware

import (
	"eduhub/utils"

	"github.com/gofiber/fiber/v2"
)

// InternalError reports err and answers 500 with a message that does not leak it
func InternalError(c *fiber.Ctx, err error, message string, extras map[string]interface{}) error {
	if extras == nil {
		extras = map[string]interface{}{}
	}
	extras["method"] = c.Method()
	extras["path"] = c.Path()
	utils.ReportError(err, extras)
	return JsonResponse(c, fiber.StatusInternalServerError, false, message, nil)
}
