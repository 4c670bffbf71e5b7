package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(api *gin.RouterGroup) {
	user := api.Group("/user")
	{
		// Public: registration and the verification flow
		user.POST("", r.userHandler.Register)
		user.POST("/login", r.userHandler.Login)
		user.POST("/verify-code", r.userHandler.VerifyCode)
		user.POST("/resend-code", r.userHandler.ResendCode)

		protected := user.Group("")
		protected.Use(r.authMw)
		{
			protected.GET("", r.userHandler.List)
			protected.GET("/:id", r.userHandler.GetByID)
			protected.PATCH("/:id", r.userHandler.Update)
			protected.DELETE("/:id", r.userHandler.Delete)

			protected.POST("/set-password", r.userHandler.SetPassword)
			protected.POST("/change-password", r.userHandler.ChangePassword)
		}
	}
}
