package devrelay

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config configures a Server.
type Config struct {
	// JWTSecret verifies HS256 bearer tokens. It must be at least 16 bytes.
	JWTSecret string
	// Now overrides the clock used for timestamps.
	Now func() time.Time
}

// Server is the in-memory relay.
type Server struct {
	cfg     Config
	mem     *memory
	metrics *metrics
	log     *zap.Logger
	engine  *gin.Engine
}

// New builds a Server. A nil logger disables request logging.
func New(cfg Config, log *zap.Logger) (*Server, error) {
	if len(cfg.JWTSecret) < minSecretSize {
		return nil, ErrWeakSecret
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		mem:     newMemory(cfg.Now),
		metrics: newMetrics(),
		log:     log,
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler of the relay.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.metrics.middleware(), s.requestLogger())

	r.GET("/metrics", s.metrics.handler())
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	auth := authMiddleware(s.cfg.JWTSecret)

	keys := r.Group("/keys", auth)
	keys.PUT("", s.publishKey)
	keys.POST("", s.publishKey)
	keys.POST("/batch", s.fetchKeys)
	keys.GET("/:userId", s.fetchKey)
	keys.DELETE("/:userId", s.deleteKey)

	// /messages/chats and /messages/unread/count share the shape of
	// /messages/:chatId and are dispatched inside the handlers.
	msgs := r.Group("/messages", auth)
	msgs.POST("", s.sendMessage)
	msgs.GET("/:chatId", s.getMessages)
	msgs.GET("/:chatId/:action", s.getMessagesAction)
	msgs.PUT("/:chatId/read", s.markRead)
	msgs.DELETE("/:chatId", s.deleteMessage)

	r.NoRoute(notFoundRoute)
	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
