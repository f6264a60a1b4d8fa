package api

import (
	"net/http"

	"github.com/beka-birhanu/pong-arena/api/i"
	"github.com/gin-gonic/gin"
)

// Router manages the HTTP server and its dependencies, including REST
// controllers, JWT authentication, and the game websocket endpoint.
type Router struct {
	addr                    string
	baseURL                 string
	controllers             []i.Controller
	authorizationMiddleware gin.HandlerFunc
	socketHandler           http.Handler
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	Addr                    string // Address to listen on
	BaseURL                 string // Base URL for API routes
	Controllers             []i.Controller
	AuthorizationMiddleware gin.HandlerFunc

	// SocketHandler serves the game websocket. It authenticates on its
	// own, via the token query parameter, because browsers cannot set
	// headers on websocket requests.
	SocketHandler http.Handler
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	return &Router{
		addr:                    config.Addr,
		baseURL:                 config.BaseURL,
		controllers:             config.Controllers,
		authorizationMiddleware: config.AuthorizationMiddleware,
		socketHandler:           config.SocketHandler,
	}
}

// Run starts the HTTP server and sets up routes with different access levels.
//
// Routes are grouped and managed under the base URL, with the following access levels:
// - Public routes: No authentication required.
// - Protected routes: Authentication required.
// - The websocket route: authenticated inside the socket handler.
func (r *Router) Run() error {
	gin.ForceConsoleColor()
	router := gin.Default()

	// Setting up routes under baseURL
	api := router.Group(r.baseURL)

	{
		// Public routes (accessible without authentication)
		publicRoutes := api.Group("/v1")
		{
			for _, c := range r.controllers {
				c.RegisterPublic(publicRoutes)
			}
		}

		// Protected routes (authentication required)
		protectedRoutes := api.Group("/v1")
		protectedRoutes.Use(r.authorizationMiddleware)
		{
			for _, c := range r.controllers {
				c.RegisterProtected(protectedRoutes)
			}
		}

		if r.socketHandler != nil {
			api.GET("/v1/ws", gin.WrapH(r.socketHandler))
		}
	}

	return router.Run(r.addr)
}
