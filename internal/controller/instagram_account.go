package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SeakMengs/InstaPilot/internal/instagram"
	"github.com/SeakMengs/InstaPilot/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type instagramTokenAPI interface {
	RefreshLongLivedToken(ctx context.Context, longLivedToken string) (*instagram.LongLivedToken, error)
}

type InstagramAccountController struct {
	*baseController
	ig instagramTokenAPI
}

func (iac InstagramAccountController) GetMyAccounts(ctx *gin.Context) {
	authUser, err := iac.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	accounts, err := iac.app.Repository.InstagramAccount.GetByUserId(ctx, nil, authUser.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", err, nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"accounts": accounts,
	})
}

// VerifyToken reports whether the stored long-lived token of the given
// linked account is still valid and for how long.
func (iac InstagramAccountController) VerifyToken(ctx *gin.Context) {
	authUser, err := iac.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	var body struct {
		AccountID string `json:"accountId" form:"accountId" binding:"required"`
	}
	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "", err, nil)
		return
	}

	account, err := iac.app.Repository.InstagramAccount.GetByUserAndAccountId(ctx, nil, authUser.ID, body.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Instagram account is not linked", err, nil)
			return
		}

		util.ResponseFailed(ctx, http.StatusInternalServerError, "", err, nil)
		return
	}

	isValid := account.TokenExpiresAt != nil && account.TokenExpiresAt.After(time.Now())

	var expiresIn int64
	if isValid {
		expiresIn = int64(time.Until(*account.TokenExpiresAt).Seconds())
	}

	util.ResponseSuccess(ctx, gin.H{
		"isValid":   isValid,
		"expiresIn": expiresIn,
	})
}

// RefreshToken extends the stored long-lived token. Instagram only refreshes
// tokens that are still valid, expired ones require a full re-link.
func (iac InstagramAccountController) RefreshToken(ctx *gin.Context) {
	authUser, err := iac.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	var body struct {
		AccountID string `json:"accountId" form:"accountId" binding:"required"`
	}
	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "", err, nil)
		return
	}

	account, err := iac.app.Repository.InstagramAccount.GetByUserAndAccountId(ctx, nil, authUser.ID, body.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Instagram account is not linked", err, nil)
			return
		}

		util.ResponseFailed(ctx, http.StatusInternalServerError, "", err, nil)
		return
	}

	if account.TokenExpiresAt == nil || account.TokenExpiresAt.Before(time.Now()) {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Token has expired, re-link the account", nil, nil)
		return
	}

	newToken, err := iac.ig.RefreshLongLivedToken(ctx, account.AccessToken)
	if err != nil {
		var exchangeErr *instagram.TokenExchangeError
		if errors.As(err, &exchangeErr) {
			iac.app.Logger.Errorf("Instagram token refresh failed: status=%d body=%s", exchangeErr.StatusCode, exchangeErr.Body)
		}

		util.ResponseFailed(ctx, http.StatusBadGateway, "Failed to refresh token", nil, nil)
		return
	}

	if err := iac.app.Repository.InstagramAccount.UpdateToken(ctx, nil, authUser.ID, body.AccountID, newToken); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", err, nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"expiresIn": newToken.ExpiresIn,
	})
}

func (iac InstagramAccountController) Unlink(ctx *gin.Context) {
	authUser, err := iac.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	accountId := ctx.Param("accountId")
	if accountId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(errors.New("accountId is required")), nil)
		return
	}

	if err := iac.app.Repository.InstagramAccount.DeleteByUserAndAccountId(ctx, nil, authUser.ID, accountId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", err, nil)
		return
	}

	util.ResponseSuccess(ctx, nil)
}
