package api

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "edu-platform-api",
			ErrorHandler: middleware.ErrorHandler,
			// room for the multipart envelope around the largest upload
			BodyLimit:                services.MaxUploadSize + 1<<20,
			EnableSplittingOnParsers: true,
		}),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Println("Starting API Server")
	log.Printf("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires
func (s *APIServer) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API Server")
	return s.app.ShutdownWithContext(ctx)
}
