package controller

import (
	"net/http"

	"github.com/SeakMengs/InstaPilot/internal/model"
	"github.com/SeakMengs/InstaPilot/internal/util"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	*baseController
}

func (uc UserController) GetMe(ctx *gin.Context) {
	authUser, err := uc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	user, err := uc.app.Repository.User.GetById(ctx, nil, authUser.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", err, nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"user": user,
	})
}

func (uc UserController) RegisterUser(ctx *gin.Context) {
	var newUser model.User
	if err := ctx.ShouldBind(&newUser); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "", err, newUser)
		return
	}

	if err := uc.app.Repository.User.CheckDupAndCreate(ctx, nil, newUser); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "", err, newUser)
		return
	}

	util.ResponseSuccess(ctx, newUser)
}
