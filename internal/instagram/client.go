package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/SeakMengs/InstaPilot/internal/config"
	"github.com/SeakMengs/InstaPilot/internal/util"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Instagram business scopes requested during authorization.
var DefaultScopes = []string{
	"instagram_business_basic",
	"instagram_business_content_publish",
	"instagram_business_manage_insights",
	"instagram_business_manage_comments",
}

// Fields requested from the /me profile endpoint.
const profileFields = "id,username,name,profile_picture_url,account_type,media_count,followers_count,follows_count,website,biography"

// Outbound calls run in the middle of a user-visible redirect, so they must
// not hang indefinitely.
const requestTimeout = 10 * time.Second

type ShortLivedToken struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

type LongLivedToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Profile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url"`
	AccountType       string `json:"account_type"`
	MediaCount        int    `json:"media_count"`
	FollowersCount    int    `json:"followers_count"`
	FollowsCount      int    `json:"follows_count"`
	Website           string `json:"website"`
	Biography         string `json:"biography"`
}

type Client struct {
	oauthConfig *oauth2.Config
	cfg         config.InstagramOAuthConfig
	logger      *zap.SugaredLogger
	httpClient  *http.Client
}

func NewClient(cfg config.InstagramOAuthConfig, logger *zap.SugaredLogger) (*Client, error) {
	// For unit test
	if logger == nil {
		logger = util.NewLogger()
	}

	if cfg.ClientID == "" {
		return nil, errors.New("instagram app id is not configured")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("instagram app secret is not configured")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return &Client{
		oauthConfig: oauthConfig,
		cfg:         cfg,
		logger:      logger,
		httpClient:  &http.Client{Timeout: requestTimeout},
	}, nil
}

// AuthCodeURL builds the provider authorization redirect url. The caller owns
// persisting the anti forgery state so it can be compared on callback.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state)
}

// ExchangeCodeForToken exchanges the one-time authorization code for a
// short-lived access token.
func (c *Client) ExchangeCodeForToken(ctx context.Context, code string) (*ShortLivedToken, error) {
	c.logger.Debug("Instagram: exchange authorization code for short-lived token")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, &TokenExchangeError{
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       string(retrieveErr.Body),
			}
		}
		return nil, err
	}

	return &ShortLivedToken{
		AccessToken: token.AccessToken,
		UserID:      extraAsString(token, "user_id"),
	}, nil
}

// GetLongLivedToken exchanges a short-lived token for a ~60 day token.
func (c *Client) GetLongLivedToken(ctx context.Context, shortLivedToken string) (*LongLivedToken, error) {
	c.logger.Debug("Instagram: exchange short-lived token for long-lived token")

	query := url.Values{
		"grant_type":    {"ig_exchange_token"},
		"client_secret": {c.cfg.ClientSecret},
		"access_token":  {shortLivedToken},
	}

	var token LongLivedToken
	if err := c.getJSON(ctx, c.cfg.GraphURL+"/access_token?"+query.Encode(), &token, newTokenExchangeError); err != nil {
		return nil, err
	}

	return &token, nil
}

// RefreshLongLivedToken extends an unexpired long-lived token for another
// ~60 days.
func (c *Client) RefreshLongLivedToken(ctx context.Context, longLivedToken string) (*LongLivedToken, error) {
	c.logger.Debug("Instagram: refresh long-lived token")

	query := url.Values{
		"grant_type":   {"ig_refresh_token"},
		"access_token": {longLivedToken},
	}

	var token LongLivedToken
	if err := c.getJSON(ctx, c.cfg.GraphURL+"/refresh_access_token?"+query.Encode(), &token, newTokenExchangeError); err != nil {
		return nil, err
	}

	return &token, nil
}

// GetBusinessProfile fetches the business profile of the token owner. Single
// attempt, the caller decides what a failure means.
func (c *Client) GetBusinessProfile(ctx context.Context, accessToken string) (*Profile, error) {
	c.logger.Debug("Instagram: fetch business profile")

	query := url.Values{
		"fields":       {profileFields},
		"access_token": {accessToken},
	}

	var profile Profile
	if err := c.getJSON(ctx, c.cfg.GraphURL+"/me?"+query.Encode(), &profile, newProfileFetchError); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any, mkErr func(status int, body string) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return mkErr(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func newTokenExchangeError(status int, body string) error {
	return &TokenExchangeError{StatusCode: status, Body: body}
}

func newProfileFetchError(status int, body string) error {
	return &ProfileFetchError{StatusCode: status, Body: body}
}

// The token endpoint reports user_id as a number in some api versions and as
// a string in others.
func extraAsString(token *oauth2.Token, key string) string {
	switch v := token.Extra(key).(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
