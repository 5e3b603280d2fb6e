package routes

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"devconnect/handlers"
	"devconnect/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Handler  *handlers.Handler
	Verifier middleware.TokenVerifier
	// Limiter is optional; nil disables rate limiting.
	Limiter        middleware.Limiter
	AllowedOrigins []string
}

func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "API Running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := opts.Handler
	authRequired := middleware.AuthRequired(opts.Verifier)

	api := router.Group("/api")
	if opts.Limiter != nil {
		api.Use(middleware.RateLimit(opts.Limiter))
	}

	// Accounts
	api.POST("/users", h.Register)
	api.POST("/auth", h.Login)
	api.GET("/auth", authRequired, h.CurrentUser)

	// Profiles
	profile := api.Group("/profile")
	profile.GET("", h.ListProfiles)
	profile.GET("/user/:user_id", h.ProfileByUser)
	profile.GET("/github/:username", h.GithubRepos)
	profile.GET("/me", authRequired, h.MyProfile)
	profile.POST("", authRequired, h.UpsertProfile)
	profile.DELETE("", authRequired, h.DeleteAccount)
	profile.PUT("/experience", authRequired, h.AddExperience)
	profile.DELETE("/experience/:exp_id", authRequired, h.RemoveExperience)
	profile.PUT("/education", authRequired, h.AddEducation)
	profile.DELETE("/education/:edu_id", authRequired, h.RemoveEducation)

	// Posts
	posts := api.Group("/posts", authRequired)
	posts.POST("", h.CreatePost)
	posts.GET("", h.ListPosts)
	posts.GET("/:id", h.GetPost)
	posts.DELETE("/:id", h.DeletePost)
	posts.PUT("/like/:id", h.LikePost)
	posts.PUT("/unlike/:id", h.UnlikePost)
	posts.POST("/comment/:id", h.AddComment)
	posts.DELETE("/comment/:id/:comment_id", h.RemoveComment)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"msg": "Not found"})
	})

	return router
}

// corsConfig allows credentials for listed origins. An empty list or "*"
// allows any origin without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", middleware.TokenHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
