package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/garuda/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(ceremonies *service.CeremonyService, sessions *service.SessionService) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(ceremonies, sessions)

	// Ceremony routes
	router.POST("/register-options", handlers.RegisterOptions)
	router.POST("/register", handlers.Register)
	router.POST("/authenticate-options", handlers.AuthenticateOptions)
	router.POST("/authenticate", handlers.Authenticate)

	// Session-gated routes
	restricted := router.Group("/")
	restricted.Use(SessionMiddleware(sessions))
	{
		restricted.GET("/restricted-content", handlers.RestrictedContent)
		restricted.POST("/logout", handlers.Logout)
	}

	return router
}
