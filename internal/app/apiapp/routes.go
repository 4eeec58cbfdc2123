package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vjzest/PropCIDBack/internal/config"
	authsvc "github.com/vjzest/PropCIDBack/internal/services/auth"
	buildersvc "github.com/vjzest/PropCIDBack/internal/services/builders"
	storysvc "github.com/vjzest/PropCIDBack/internal/services/stories"
	"github.com/vjzest/PropCIDBack/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService    *authsvc.Service
	StoryService   *storysvc.Service
	BuilderService *buildersvc.Service
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	storyHandler := handlers.NewStoryHandler(deps.StoryService, deps.Config.Stories.MaxUploadSize)
	builderHandler := handlers.NewBuilderHandler(deps.BuilderService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Healthz)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Get("/user", authHandler.Users)
	})

	r.Route("/story", func(r chi.Router) {
		r.Post("/upload", storyHandler.Upload)
		r.Get("/", storyHandler.List)
		r.Delete("/{storyId}", storyHandler.Delete)
	})

	r.Route("/builder", func(r chi.Router) {
		r.With(authMW).Put("/profile", builderHandler.UpdateProfile)
	})
}
