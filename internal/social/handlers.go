package social

import (
	"errors"
	"log"

	"backend-blogapp/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func edgeError(action string, err error) error {
	switch {
	case errors.Is(err, ErrSelfFollow):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		log.Printf("%s: %v", action, err)
		return fiber.ErrInternalServerError
	}
}

func RegisterRoutes(r fiber.Router, engine *Engine, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/posts/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		if err := engine.Like(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return edgeError("like post", err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/posts/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		if err := engine.Unlike(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return edgeError("unlike post", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/posts/:id/share", authMiddleware, func(c *fiber.Ctx) error {
		if err := engine.Share(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return edgeError("share post", err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/posts/:id/share", authMiddleware, func(c *fiber.Ctx) error {
		if err := engine.Unshare(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return edgeError("unshare post", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/users/:id/follow", authMiddleware, func(c *fiber.Ctx) error {
		if err := engine.Follow(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return edgeError("follow user", err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/users/:id/follow", authMiddleware, func(c *fiber.Ctx) error {
		if err := engine.Unfollow(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return edgeError("unfollow user", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/users/:id/follow/status", authMiddleware, func(c *fiber.Ctx) error {
		following, err := svc.IsFollowing(c.Context(), auth.CallerID(c), c.Params("id"))
		if err != nil {
			return edgeError("follow status", err)
		}
		return c.JSON(FollowStatus{Following: following})
	})

	r.Get("/posts/:id/stats", func(c *fiber.Ctx) error {
		stats, err := svc.PostStats(c.Context(), c.Params("id"))
		if err != nil {
			return edgeError("post stats", err)
		}
		return c.JSON(stats)
	})

	r.Get("/users/:id/stats", func(c *fiber.Ctx) error {
		stats, err := svc.UserStats(c.Context(), c.Params("id"))
		if err != nil {
			return edgeError("user stats", err)
		}
		return c.JSON(stats)
	})
}
