package route

import (
	"github.com/SeakMengs/InstaPilot/internal/controller"
	"github.com/SeakMengs/InstaPilot/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_OAuth(r *gin.RouterGroup, oauthController *controller.OAuthController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/oauth")
	{
		v1.GET("/instagram", oauthController.ContinueWithInstagram)
		v1.GET("/instagram/link", middleware.AuthMiddleware, oauthController.LinkInstagram)
		v1.GET("/instagram/callback", oauthController.InstagramCallback)
	}
}
