package rest

import "github.com/gin-gonic/gin"

// routes builds the gin engine with all middleware and route groups.
func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(s.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	users := NewUserHandler(s.users, s.logger)
	workspaces := NewWorkspaceHandler(s.workspaces, s.logger)
	todos := NewTodoHandler(s.todos, s.logger)
	verifications := NewVerificationHandler(s.verifications, s.logger)

	router.POST("/users", users.Create)
	router.GET("/users/count", users.Count)
	router.POST("/token", users.Token)
	router.POST("/token/refresh", users.Refresh)
	router.POST("/auth/request-verification", verifications.RequestCode)
	router.POST("/auth/register", verifications.Register)

	authed := router.Group("", requireAuth(s.jwtSecret, s.users))
	{
		authed.GET("/users/me", users.Me)
		authed.DELETE("/users/me", users.DeleteMe)

		authed.POST("/workspaces", workspaces.Create)
		authed.GET("/workspaces", workspaces.List)
		authed.PUT("/workspaces/:id", workspaces.Update)
		authed.DELETE("/workspaces/:id", workspaces.Delete)
		authed.POST("/workspaces/:id/invite", workspaces.Invite)
		authed.GET("/workspaces/:id/members", workspaces.Members)
		authed.DELETE("/workspaces/:id/members/me", workspaces.LeaveMe)
		authed.DELETE("/workspaces/:id/members/:userId", workspaces.RemoveMember)
		authed.GET("/workspaces/:id/todos", workspaces.Todos)

		authed.POST("/todos", todos.Create)
		authed.GET("/todos", todos.List)
		authed.GET("/todos/:id", todos.Get)
		authed.PUT("/todos/:id", todos.Update)
		authed.DELETE("/todos/:id", todos.Delete)
	}

	return router
}
