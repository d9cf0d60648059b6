package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	httpapi "github.com/bidboard/bidboard-backend/internal/api/http"
	"github.com/bidboard/bidboard-backend/internal/api/http/middleware"
	"github.com/bidboard/bidboard-backend/internal/auth"
	authmw "github.com/bidboard/bidboard-backend/internal/auth/middleware"
	"github.com/bidboard/bidboard-backend/internal/profiles"
	projhttp "github.com/bidboard/bidboard-backend/internal/projects/http"
	"github.com/bidboard/bidboard-backend/internal/projects/repository"
	"github.com/bidboard/bidboard-backend/internal/projects/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	DB             *sql.DB
	AuthClient     *fbauth.Client // nil enables the dev identity fallback
	Orphans        service.OrphanRecorder
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	if dep.AuthClient != nil {
		api.Use(authmw.FirebaseAuthMiddleware(dep.AuthClient))
	} else {
		api.Use(auth.DevUser())
	}
	api.Use(middleware.RateLimitMiddleware(rate.Limit(20), 40))

	profileRepo := profiles.NewRepo(dep.DB)
	api.Use(auth.WithProfile(profileRepo))
	profiles.Register(api, profileRepo)

	projectRepo := repository.NewProjectRepository(dep.DB)
	itemRepo := repository.NewLineItemRepository(dep.DB)
	projectSvc := service.NewProjectService(projectRepo, itemRepo, dep.Orphans)
	itemSvc := service.NewLineItemService(itemRepo)

	projhttp.Register(api.Group("/projects"), projectSvc, itemSvc)

	return r
}
