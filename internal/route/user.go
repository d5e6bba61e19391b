package route

import (
	"github.com/SeakMengs/InstaPilot/internal/controller"
	"github.com/gin-gonic/gin"
)

func V1_Users(r *gin.RouterGroup, userController *controller.UserController) {
	v1 := r.Group("/v1/users")
	{
		v1.POST("/register", userController.RegisterUser)
	}
}
