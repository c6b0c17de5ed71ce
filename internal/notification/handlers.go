package notification

import (
	"log"

	"backend-blogapp/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		items, err := svc.List(c.Context(), auth.CallerID(c))
		if err != nil {
			log.Printf("list notifications: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"notifications": items})
	})

	r.Put("/read", authMiddleware, func(c *fiber.Ctx) error {
		var req MarkReadRequest
		if err := c.BodyParser(&req); err != nil || req.IDs == nil {
			return fiber.NewError(fiber.StatusBadRequest, "notification_ids required")
		}
		if err := svc.MarkRead(c.Context(), auth.CallerID(c), req.IDs); err != nil {
			log.Printf("mark notifications read: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"ok": true})
	})
}
