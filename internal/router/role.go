package router

import "github.com/gin-gonic/gin"

func (r *Router) roleRoutes(api *gin.RouterGroup) {
	role := api.Group("/role")
	{
		// Listing is public; everything else requires auth
		role.GET("", r.roleHandler.List)

		protected := role.Group("")
		protected.Use(r.authMw)
		{
			protected.GET("/:id", r.roleHandler.GetByID)
			protected.POST("", r.roleHandler.Create)
			protected.PATCH("/:id", r.roleHandler.Update)
			protected.DELETE("/:id", r.roleHandler.Delete)
		}
	}
}
