package server

import (
	"net/http"

	"ctchen222/Task-Tracker/internal/api/controller"
	"ctchen222/Task-Tracker/internal/api/middleware"
	"ctchen222/Task-Tracker/internal/api/service"

	"github.com/gin-gonic/gin"
)

// Server owns the gin engine and its route table.
type Server struct {
	engine *gin.Engine
}

// NewServer wires controllers and auth middleware into a gin engine.
// Reads are public; the token endpoint takes Basic credentials; every
// mutation of an owned resource goes through token auth.
func NewServer(users *controller.UserController, tasks *controller.TaskController, userService service.UserService, tokenService service.TokenService) *Server {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(), gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.POST("/users", users.Register)
	engine.GET("/users", users.List)
	engine.GET("/users/:id", users.Get)

	engine.GET("/token", middleware.BasicAuth(userService), users.Token)

	engine.GET("/tasks", tasks.List)
	engine.GET("/tasks/:id", tasks.Get)

	tokenAuth := middleware.TokenAuth(tokenService)
	engine.PUT("/users/:id", tokenAuth, users.Update)
	engine.DELETE("/users/:id", tokenAuth, users.Delete)
	engine.POST("/tasks", tokenAuth, tasks.Create)
	engine.PUT("/tasks/:id", tokenAuth, tasks.Update)
	engine.DELETE("/tasks/:id", tokenAuth, tasks.Delete)

	return &Server{engine: engine}
}

// Engine exposes the configured gin engine to the HTTP server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
