// Package httpapi exposes the REST surface: authentication, secret lifecycle,
// account management and the password generation utility. Handlers translate
// between wire DTOs and the domain services; all policy lives in the services.
package httpapi

import (
	"github.com/avasilkov/keyvault/internal/logging"
	"github.com/avasilkov/keyvault/internal/server/notifications"
	"github.com/avasilkov/keyvault/internal/server/secrets"
	"github.com/avasilkov/keyvault/internal/server/users"
	"github.com/gin-gonic/gin"
)

type Server struct {
	users         *users.Service
	secrets       *secrets.Service
	notifications notifications.Repository
	jwtSecret     []byte
	logger        logging.Logger
}

func NewServer(userService *users.Service, secretService *secrets.Service,
	notificationRepo notifications.Repository, jwtSecret []byte, logger logging.Logger) *Server {
	return &Server{
		users:         userService,
		secrets:       secretService,
		notifications: notificationRepo,
		jwtSecret:     jwtSecret,
		logger:        logger.With("module", "http"),
	}
}

// Router assembles the gin engine. Everything under the authorized group
// requires a valid bearer token; /status and the auth entry points do not.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.index)
	r.GET("/status", s.status)

	auth := r.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.GET("/currentUser", s.authenticated(), s.currentUser)
		auth.POST("/password/reset-request", s.requestPasswordReset)
		auth.POST("/password/reset", s.resetPassword)
	}

	keys := r.Group("/keys", s.authenticated())
	{
		keys.GET("", s.listActiveKeys)
		keys.GET("/revoked", s.listRevokedKeys)
		keys.GET("/expired", s.listExpiredKeys)
		keys.POST("", s.createKey)
		keys.POST("/import", s.importKey)
		keys.PATCH("/:id", s.updateKey)
		keys.DELETE("/:id", s.deleteKey)
	}

	account := r.Group("/users", s.authenticated())
	{
		account.PATCH("/email", s.changeEmail)
		account.PATCH("/username", s.changeUsername)
		account.PATCH("/password", s.changePassword)
		account.DELETE("/account", s.deleteAccount)
	}

	r.GET("/notifications", s.authenticated(), s.listNotifications)

	r.POST("/utils/password/generate", s.authenticated(), s.generatePassword)

	return r
}

func (s *Server) index(c *gin.Context) {
	c.JSON(200, gin.H{"message": "key manager API"})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
