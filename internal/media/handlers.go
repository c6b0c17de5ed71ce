package media

import (
	"context"
	"io"
	"log"

	"backend-blogapp/internal/auth"
	"backend-blogapp/internal/db"

	"github.com/gofiber/fiber/v2"
)

type Service struct {
	db       db.Querier
	uploader *Uploader
}

func NewService(db db.Querier, uploader *Uploader) *Service {
	return &Service{db: db, uploader: uploader}
}

func (s *Service) Uploader() *Uploader {
	return s.uploader
}

func (s *Service) SaveObject(ctx context.Context, userID string, obj Object, folder string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO storage_objects (id, user_id, url, folder, format)
		VALUES ($1,$2,$3,$4,$5)
	`, obj.ID, userID, obj.URL, folder, obj.Format)
	return err
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file required")
		}
		folder := c.FormValue("folder")
		if folder == "" {
			folder = "blog"
		}

		f, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unreadable file")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unreadable file")
		}

		obj, err := svc.uploader.Upload(c.Context(), data, fileHeader.Header.Get("Content-Type"), folder)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}

		if err := svc.SaveObject(c.Context(), auth.CallerID(c), obj, folder); err != nil {
			log.Printf("save media object %s: %v", obj.ID, err)
			return fiber.ErrInternalServerError
		}
		return c.JSON(obj)
	})
}
