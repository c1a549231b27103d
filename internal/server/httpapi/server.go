// Package httpapi exposes the recipeshare services over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/logging"
	"github.com/dmitrijs2005/recipeshare/internal/server/config"
	"github.com/dmitrijs2005/recipeshare/internal/server/metrics"
	"github.com/dmitrijs2005/recipeshare/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports database health. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services groups the business services the handlers call.
type Services struct {
	Profiles  *services.ProfileService
	Recipes   *services.RecipeService
	Comments  *services.CommentService
	Ratings   *services.RatingService
	Favorites *services.FavoriteService
	Feed      *services.FeedService
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	secretKey       []byte
	maxUploadBytes  int64

	services Services
	db       Pinger
	limiter  *limiterPool
	metrics  *metrics.HTTP
	logger   logging.Logger
	engine   *gin.Engine
}

func NewServer(cfg *config.Config, svc Services, db Pinger, reg *prometheus.Registry, l logging.Logger) (*Server, error) {
	httpMetrics, err := metrics.NewHTTP(reg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		address:         cfg.EndpointAddrHTTP,
		shutdownTimeout: cfg.ShutdownTimeout,
		secretKey:       []byte(cfg.SecretKey),
		maxUploadBytes:  cfg.MaxUploadBytes,
		services:        svc,
		db:              db,
		limiter:         newLimiterPool(cfg.RateLimitRPS, cfg.RateLimitBurst),
		metrics:         httpMetrics,
		logger:          l.With("module", "http_server"),
	}
	s.engine = s.routes(cfg.CORSAllowedOrigins, reg)
	return s, nil
}

func (s *Server) routes(origins []string, reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(requestID(), s.accessLog(), s.recovery())

	if len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
		corsConfig.ExposeHeaders = []string{requestIDHeader}
		e.Use(cors.New(corsConfig))
	}

	optional := s.authenticate(false)
	required := s.authenticate(true)
	limited := s.rateLimit()

	api := e.Group("/api")
	api.GET("/recipes", optional, s.listRecipes)
	api.POST("/recipes", required, limited, s.createRecipe)
	api.POST("/recipes/update", required, limited, s.updateRecipe)
	api.GET("/recipes/:id", optional, s.getRecipe)
	api.DELETE("/recipes/:id", required, limited, s.deleteRecipe)
	api.GET("/recipes/:id/comments", s.listComments)
	api.GET("/recipes/:id/rating", optional, s.getRating)
	api.PUT("/recipes/:id/rating", required, limited, s.rateRecipe)
	api.POST("/recipes/:id/favorite", required, limited, s.addFavorite)
	api.DELETE("/recipes/:id/favorite", required, limited, s.removeFavorite)
	api.GET("/favorites", required, s.listFavorites)
	api.POST("/comments", required, limited, s.createComment)
	api.DELETE("/comments/:id", required, limited, s.deleteComment)
	api.GET("/photos", s.listPhotos)
	api.GET("/tags", s.listTags)

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	return e
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
