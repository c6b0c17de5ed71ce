package post

import (
	"errors"
	"log"
	"strconv"

	"backend-blogapp/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req PublishRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		result, err := svc.Publish(c.Context(), auth.CallerID(c), req)
		switch {
		case errors.Is(err, ErrValidation):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrCoverUpload):
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		case err != nil:
			log.Printf("publish post: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		posts, err := svc.ListPublic(c.Context(), limitQuery(c, 20), offsetQuery(c))
		if err != nil {
			log.Printf("list posts: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(posts)
	})

	r.Get("/feed", authMiddleware, func(c *fiber.Ctx) error {
		posts, err := svc.Feed(c.Context(), auth.CallerID(c))
		if err != nil {
			log.Printf("post feed: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(posts)
	})

	r.Get("/mine", authMiddleware, func(c *fiber.Ctx) error {
		posts, err := svc.ListByUser(c.Context(), auth.CallerID(c), limitQuery(c, 20), offsetQuery(c))
		if err != nil {
			log.Printf("list own posts: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(posts)
	})

	r.Get("/top/liked", func(c *fiber.Ctx) error {
		posts, err := svc.ListTopLiked(c.Context(), limitQuery(c, 10))
		if err != nil {
			log.Printf("top liked posts: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(posts)
	})

	r.Get("/top/shared", func(c *fiber.Ctx) error {
		posts, err := svc.ListTopShared(c.Context(), limitQuery(c, 10))
		if err != nil {
			log.Printf("top shared posts: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(posts)
	})

	r.Get("/id/:id", func(c *fiber.Ctx) error {
		p, err := svc.GetByID(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "post not found")
		}
		if err != nil {
			log.Printf("get post by id: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(p)
	})

	r.Post("/:id/images", authMiddleware, func(c *fiber.Ctx) error {
		var req ReplaceImagesRequest
		if err := c.BodyParser(&req); err != nil || req.Images == nil {
			return fiber.NewError(fiber.StatusBadRequest, "images required")
		}

		postID := c.Params("id")
		ownerID, err := svc.Owner(c.Context(), postID)
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "post not found")
		}
		if err != nil {
			log.Printf("replace images %s: resolve owner: %v", postID, err)
			return fiber.ErrInternalServerError
		}
		if ownerID != auth.CallerID(c) {
			return fiber.NewError(fiber.StatusForbidden, "not your post")
		}

		if err := svc.ReplaceImages(c.Context(), postID, req.Images); err != nil {
			log.Printf("replace images %s: %v", postID, err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	r.Get("/:slug", func(c *fiber.Ctx) error {
		p, err := svc.GetBySlug(c.Context(), c.Params("slug"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "post not found")
		}
		if err != nil {
			log.Printf("get post by slug: %v", err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(p)
	})
}

func limitQuery(c *fiber.Ctx, def int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		return def
	}
	return limit
}

func offsetQuery(c *fiber.Ctx) int {
	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
