package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	appcontext "github.com/SeakMengs/InstaPilot/internal/app_context"
	"github.com/SeakMengs/InstaPilot/internal/auth"
	"github.com/SeakMengs/InstaPilot/internal/instagram"
	statestore "github.com/SeakMengs/InstaPilot/internal/state_store"
	"github.com/gin-gonic/gin"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index            *IndexController
	Auth             *AuthController
	OAuth            *OAuthController
	User             *UserController
	InstagramAccount *InstagramAccountController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

// NewController wires concrete dependencies into the controllers. The oauth
// controller takes its collaborators as interfaces so tests can substitute
// fakes without a database or a live provider.
func NewController(app *appcontext.Application, igClient *instagram.Client, stateStore *statestore.StateStore) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index: &IndexController{baseController: bc},
		Auth:  &AuthController{baseController: bc},
		OAuth: &OAuthController{
			baseController: bc,
			ig:             igClient,
			states:         stateStore,
			linker:         app.Repository.InstagramAccount,
			users:          app.Repository.User,
			tokens:         app.Repository.JWT,
		},
		User: &UserController{baseController: bc},
		InstagramAccount: &InstagramAccountController{
			baseController: bc,
			ig:             igClient,
		},
	}
}

func (b *baseController) getAuthUser(ctx *gin.Context) (*auth.JWTPayload, error) {
	user, exists := ctx.Get("user")
	if !exists {
		return nil, errors.New("user not found in context")
	}

	jsonUser, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	var authUser *auth.JWTPayload
	err = json.Unmarshal(jsonUser, &authUser)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return authUser, nil
}
