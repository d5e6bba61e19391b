package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SeakMengs/InstaPilot/internal/constant"
	"github.com/SeakMengs/InstaPilot/internal/instagram"
	"github.com/SeakMengs/InstaPilot/internal/mailer"
	"github.com/SeakMengs/InstaPilot/internal/model"
	statestore "github.com/SeakMengs/InstaPilot/internal/state_store"
	"github.com/SeakMengs/InstaPilot/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Collaborator contracts of the callback orchestrator. Kept as small
// interfaces so tests can run the whole state machine against fakes.
type instagramAPI interface {
	AuthCodeURL(state string) string
	ExchangeCodeForToken(ctx context.Context, code string) (*instagram.ShortLivedToken, error)
	GetLongLivedToken(ctx context.Context, shortLivedToken string) (*instagram.LongLivedToken, error)
	GetBusinessProfile(ctx context.Context, accessToken string) (*instagram.Profile, error)
}

type oauthStateStore interface {
	GenerateState() (string, error)
	Save(ctx context.Context, pending statestore.PendingAuthorization, ttl time.Duration) error
	Consume(ctx context.Context, state string) (*statestore.PendingAuthorization, error)
}

type accountLinker interface {
	LinkAccount(ctx context.Context, tx *gorm.DB, userId string, profile *instagram.Profile, token *instagram.LongLivedToken) (*model.InstagramAccount, error)
}

type userProvisioner interface {
	GetById(ctx context.Context, tx *gorm.DB, userId string) (*model.User, error)
	GetOrCreateByEmail(ctx context.Context, tx *gorm.DB, newUser model.User) (*model.User, bool, error)
}

type sessionTokenIssuer interface {
	GenRefreshAndAccessToken(ctx context.Context, tx *gorm.DB, user model.User) (*string, *string, error)
}

type OAuthController struct {
	*baseController
	ig     instagramAPI
	states oauthStateStore
	linker accountLinker
	users  userProvisioner
	tokens sessionTokenIssuer
}

// ContinueWithInstagram starts the "login with instagram" flow: no session
// is required and a user is auto-provisioned on callback.
func (oc OAuthController) ContinueWithInstagram(ctx *gin.Context) {
	oc.app.Logger.Debug("OAuth: Instagram login flow")

	oc.beginAuthorization(ctx, "")
}

// LinkInstagram starts the "link my account" flow for an already
// authenticated user. The session identity travels in the pending
// authorization record, keyed by the anti forgery state.
func (oc OAuthController) LinkInstagram(ctx *gin.Context) {
	oc.app.Logger.Debug("OAuth: Instagram link flow")

	authUser, err := oc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	oc.beginAuthorization(ctx, authUser.ID)
}

func (oc OAuthController) beginAuthorization(ctx *gin.Context, userId string) {
	state, err := oc.states.GenerateState()
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", util.GenerateErrorMessages(err), nil)
		return
	}

	next := util.SafeRedirectPath(ctx.Query("next"), constant.OAUTH_DEFAULT_NEXT_PATH)

	if err := oc.states.Save(ctx, statestore.PendingAuthorization{
		State:  state,
		UserID: userId,
		Next:   next,
	}, constant.OAUTH_STATE_TTL); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", util.GenerateErrorMessages(err), nil)
		return
	}

	url := oc.ig.AuthCodeURL(state)

	oc.app.Logger.Debugf("OAuth: Instagram, Redirect to: %s", url)
	ctx.Redirect(http.StatusTemporaryRedirect, url)
}

// InstagramCallback handles the provider redirect for both flows. Every step
// failure is translated into exactly one failure redirect with a reason
// code, raw provider errors stay in the server logs.
func (oc OAuthController) InstagramCallback(ctx *gin.Context) {
	oc.app.Logger.Debug("OAuth: Instagram callback")

	code := ctx.Query("code")
	providerError := ctx.Query("error")
	state := ctx.Query("state")

	if providerError != "" {
		oc.app.Logger.Infof("OAuth: Instagram, provider denied authorization: %s (%s)", providerError, ctx.Query("error_description"))
		oc.failRedirect(ctx, constant.OAuthFailureProviderDenied)
		return
	}

	if code == "" {
		oc.failRedirect(ctx, constant.OAuthFailureMissingCode)
		return
	}

	pending, err := oc.states.Consume(ctx, state)
	if err != nil {
		oc.app.Logger.Errorf("OAuth: Instagram, failed to validate state: %v", err)
		oc.failRedirect(ctx, constant.OAuthFailureUnknown)
		return
	}
	if pending == nil {
		oc.app.Logger.Info("OAuth: Instagram, state mismatch or expired state")
		oc.failRedirect(ctx, constant.OAuthFailureInvalidState)
		return
	}

	next := util.SafeRedirectPath(ctx.Query("next"), constant.OAUTH_DEFAULT_NEXT_PATH)
	if ctx.Query("next") == "" && pending.Next != "" {
		next = util.SafeRedirectPath(pending.Next, constant.OAUTH_DEFAULT_NEXT_PATH)
	}

	shortLived, err := oc.ig.ExchangeCodeForToken(ctx, code)
	if err != nil {
		oc.logTokenError("code exchange", err)
		oc.failRedirect(ctx, constant.OAuthFailureTokenExchangeFailed)
		return
	}

	longLived, err := oc.ig.GetLongLivedToken(ctx, shortLived.AccessToken)
	if err != nil {
		oc.logTokenError("long-lived exchange", err)
		oc.failRedirect(ctx, constant.OAuthFailureTokenExchangeFailed)
		return
	}

	profile, err := oc.ig.GetBusinessProfile(ctx, longLived.AccessToken)
	if err != nil {
		var fetchErr *instagram.ProfileFetchError
		if errors.As(err, &fetchErr) {
			oc.app.Logger.Errorf("OAuth: Instagram, profile fetch failed: status=%d body=%s", fetchErr.StatusCode, fetchErr.Body)
		} else {
			oc.app.Logger.Errorf("OAuth: Instagram, profile fetch failed: %v", err)
		}
		oc.failRedirect(ctx, constant.OAuthFailureProfileFetchFailed)
		return
	}

	user, err := oc.resolveSession(ctx, pending, profile)
	if err != nil {
		oc.app.Logger.Errorf("OAuth: Instagram, failed to resolve session: %v", err)
		oc.failRedirect(ctx, constant.OAuthFailureNoSession)
		return
	}

	if _, err := oc.linker.LinkAccount(ctx, nil, user.ID, profile, longLived); err != nil {
		oc.app.Logger.Errorf("OAuth: Instagram, failed to link account: %v", err)
		oc.failRedirect(ctx, constant.OAuthFailureLinkFailed)
		return
	}

	ctx.Redirect(http.StatusFound, oc.app.Config.FrontendURL+next)
}

// resolveSession applies the policy split between the two flows: a link
// callback must carry the user it was started for, a login callback
// auto-provisions a user keyed by a synthetic email derived from the
// instagram account id and issues a session directly.
func (oc OAuthController) resolveSession(ctx *gin.Context, pending *statestore.PendingAuthorization, profile *instagram.Profile) (*model.User, error) {
	if pending.UserID != "" {
		return oc.users.GetById(ctx, nil, pending.UserID)
	}

	displayName := profile.Name
	if displayName == "" {
		displayName = profile.Username
	}

	user, created, err := oc.users.GetOrCreateByEmail(ctx, nil, model.User{
		Email:      fmt.Sprintf("ig_%s@users.instapilot.app", profile.ID),
		FirstName:  displayName,
		LastName:   "",
		ProfileURL: profile.ProfilePictureURL,
	})
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := oc.tokens.GenRefreshAndAccessToken(ctx, nil, *user)
	if err != nil {
		return nil, err
	}

	ctx.SetCookie(
		"refreshToken",
		*refreshToken,
		int((7 * 24 * time.Hour).Seconds()),
		"/",
		"",
		oc.app.Config.IsProduction(),
		true,
	)

	if created {
		oc.sendWelcomeEmail(user, profile)
	}

	return user, nil
}

// Welcome email is best effort, a mail outage must not fail the login.
func (oc OAuthController) sendWelcomeEmail(user *model.User, profile *instagram.Profile) {
	if oc.app.Mailer == nil {
		return
	}

	vars := struct {
		Username          string
		InstagramUsername string
		DashboardURL      string
		LogoURL           string
	}{
		Username:          user.FirstName,
		InstagramUsername: profile.Username,
		DashboardURL:      oc.app.Config.FrontendURL + constant.OAUTH_DEFAULT_NEXT_PATH,
		LogoURL:           util.GetAppLogoURL(oc.app.Config.FrontendURL),
	}

	if _, err := oc.app.Mailer.Send(mailer.WELCOME_TEMPLATE, user.FirstName, user.Email, vars); err != nil {
		oc.app.Logger.Warnf("Failed to send welcome email to userId %s: %v", user.ID, err)
	}
}

func (oc OAuthController) logTokenError(step string, err error) {
	var exchangeErr *instagram.TokenExchangeError
	if errors.As(err, &exchangeErr) {
		oc.app.Logger.Errorf("OAuth: Instagram, %s failed: status=%d body=%s", step, exchangeErr.StatusCode, exchangeErr.Body)
		return
	}

	oc.app.Logger.Errorf("OAuth: Instagram, %s failed: %v", step, err)
}

func (oc OAuthController) failRedirect(ctx *gin.Context, reason constant.OAuthFailureReason) {
	ctx.Redirect(http.StatusFound, fmt.Sprintf("%s%s?error=%s", oc.app.Config.FrontendURL, constant.OAUTH_LOGIN_PATH, reason))
}
