package auth

import (
	"errors"
	"time"

	"github.com/SeakMengs/InstaPilot/internal/config"
	"github.com/SeakMengs/InstaPilot/internal/constant"
	"github.com/SeakMengs/InstaPilot/internal/util"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type JWT struct {
	logger    *zap.SugaredLogger
	jwtSecret string
}

type JWTInterface interface {
	GenerateRefreshAndAccessToken(payload JWTPayload) (*string, *string, error)
	VerifyJwtToken(token string) (*JWTClaims, error)
}

func NewJwt(cfg config.AuthConfig, logger *zap.SugaredLogger) *JWT {
	// For unit test
	if logger == nil {
		logger = util.NewLogger()
	}

	return &JWT{
		jwtSecret: cfg.JWT_SECRET,
		logger:    logger,
	}
}

type JWTPayload struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	ProfileURL string `json:"profileURL"`
}

type JWTClaims struct {
	User JWTPayload `json:"user"`
	Type string     `json:"type"`
	IAT  int64      `json:"iat"`
	EXP  int64      `json:"exp"`
}

func (j JWT) signToken(payload JWTPayload, tokenType string, ttl time.Duration) (*string, error) {
	claims := jwt.MapClaims{
		"user": payload,
		"type": tokenType,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &signed, nil
}

// Return refreshToken, accessToken, error
func (j JWT) GenerateRefreshAndAccessToken(payload JWTPayload) (*string, *string, error) {
	j.logger.Debugf("Generate refresh and access token for userId: %s", payload.ID)

	// Refresh token with 7-day expiration
	refreshToken, err := j.signToken(payload, constant.JWT_TYPE_REFRESH, 7*24*time.Hour)
	if err != nil {
		return nil, nil, err
	}

	// Access token with 5-minute expiration
	accessToken, err := j.signToken(payload, constant.JWT_TYPE_ACCESS, 5*time.Minute)
	if err != nil {
		return nil, nil, err
	}

	return refreshToken, accessToken, nil
}

func (j JWT) VerifyJwtToken(token string) (*JWTClaims, error) {
	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(j.jwtSecret), nil
	})
	if err != nil {
		j.logger.Debugf("Failed to verify jwt token. Error: %v", err)
		return nil, err
	}

	if !parsedToken.Valid {
		j.logger.Debug("Jwt token is not valid")
		return nil, errors.New("jwt token is not valid")
	}

	user, ok := claims["user"].(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid token: user field is missing or malformed")
	}

	tokenType, ok := claims["type"].(string)
	if !ok {
		return nil, errors.New("invalid token: type field is missing or malformed")
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, errors.New("invalid token: iat field is missing or malformed")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, errors.New("invalid token: exp field is missing or malformed")
	}

	getStr := func(key string) string {
		if v, ok := user[key].(string); ok {
			return v
		}
		return ""
	}

	return &JWTClaims{
		User: JWTPayload{
			ID:         getStr("id"),
			Email:      getStr("email"),
			FirstName:  getStr("firstName"),
			LastName:   getStr("lastName"),
			ProfileURL: getStr("profileURL"),
		},
		Type: tokenType,
		IAT:  int64(iat),
		EXP:  int64(exp),
	}, nil
}
