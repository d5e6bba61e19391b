package route

import (
	"github.com/SeakMengs/InstaPilot/internal/controller"
	"github.com/SeakMengs/InstaPilot/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Me(r *gin.RouterGroup, userController *controller.UserController, instagramAccountController *controller.InstagramAccountController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/me")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("", userController.GetMe)
		v1.GET("/instagram", instagramAccountController.GetMyAccounts)
	}
}
