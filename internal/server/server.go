package server

import (
	"backend-blogapp/internal/auth"
	"backend-blogapp/internal/config"
	"backend-blogapp/internal/media"
	"backend-blogapp/internal/notification"
	"backend-blogapp/internal/post"
	"backend-blogapp/internal/social"
	"backend-blogapp/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, store media.ObjectStore) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s, store)
	return s
}

func registerRoutes(s *Server, store media.ObjectStore) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	uploader := media.NewUploader(store, s.Cfg.MediaBaseURL)
	fetcher := media.NewDataURIFetcher()
	extractor := media.NewExtractor(uploader, fetcher, s.Cfg.UploadWorkers)

	notifSvc := notification.NewService(s.DB, s.Stream)
	postSvc := post.NewService(s.DB, uploader, extractor, fetcher, notifSvc, s.Cfg.MaxPostTags)
	edgeSvc := social.NewService(s.DB)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	media.RegisterRoutes(s.App.Group("/media"), media.NewService(s.DB, uploader), jwtMiddleware)
	post.RegisterRoutes(s.App.Group("/posts"), postSvc, jwtMiddleware)
	social.RegisterRoutes(s.App.Group("/social"), social.NewEngine(edgeSvc, notifSvc), edgeSvc, jwtMiddleware)
	notification.RegisterRoutes(s.App.Group("/notifications"), notifSvc, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}
