package route

import (
	"github.com/SeakMengs/InstaPilot/internal/controller"
	"github.com/SeakMengs/InstaPilot/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Instagram(r *gin.RouterGroup, instagramAccountController *controller.InstagramAccountController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/instagram")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("/verify", instagramAccountController.VerifyToken)
		v1.POST("/refresh", instagramAccountController.RefreshToken)
		v1.DELETE("/:accountId", instagramAccountController.Unlink)
	}
}
