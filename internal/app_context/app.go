package appcontext

import (
	"github.com/SeakMengs/InstaPilot/internal/auth"
	"github.com/SeakMengs/InstaPilot/internal/config"
	"github.com/SeakMengs/InstaPilot/internal/mailer"
	"github.com/SeakMengs/InstaPilot/internal/repository"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	// JWTService manages JWT operations for authentication such as generate, verify, refresh token.
	JWTService auth.JWTInterface
}
