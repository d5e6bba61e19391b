package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	appcontext "github.com/SeakMengs/InstaPilot/internal/app_context"
	"github.com/SeakMengs/InstaPilot/internal/config"
	"github.com/SeakMengs/InstaPilot/internal/instagram"
	"github.com/SeakMengs/InstaPilot/internal/model"
	statestore "github.com/SeakMengs/InstaPilot/internal/state_store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeInstagramAPI struct {
	exchangeCalls  int
	longLivedCalls int
	profileCalls   int

	exchangeErr  error
	longLivedErr error
	profileErr   error

	shortToken *instagram.ShortLivedToken
	longToken  *instagram.LongLivedToken
	profile    *instagram.Profile
}

func (f *fakeInstagramAPI) AuthCodeURL(state string) string {
	return "https://api.instagram.com/oauth/authorize?state=" + state
}

func (f *fakeInstagramAPI) ExchangeCodeForToken(ctx context.Context, code string) (*instagram.ShortLivedToken, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.shortToken, nil
}

func (f *fakeInstagramAPI) GetLongLivedToken(ctx context.Context, shortLivedToken string) (*instagram.LongLivedToken, error) {
	f.longLivedCalls++
	if f.longLivedErr != nil {
		return nil, f.longLivedErr
	}
	return f.longToken, nil
}

func (f *fakeInstagramAPI) GetBusinessProfile(ctx context.Context, accessToken string) (*instagram.Profile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

type fakeStateStore struct {
	records map[string]statestore.PendingAuthorization
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{records: make(map[string]statestore.PendingAuthorization)}
}

func (f *fakeStateStore) GenerateState() (string, error) {
	return "state123", nil
}

func (f *fakeStateStore) Save(ctx context.Context, pending statestore.PendingAuthorization, ttl time.Duration) error {
	f.records[pending.State] = pending
	return nil
}

func (f *fakeStateStore) Consume(ctx context.Context, state string) (*statestore.PendingAuthorization, error) {
	pending, ok := f.records[state]
	if !ok {
		return nil, nil
	}
	delete(f.records, state)
	return &pending, nil
}

type linkCall struct {
	userId  string
	profile *instagram.Profile
	token   *instagram.LongLivedToken
}

type fakeLinker struct {
	calls []linkCall
	err   error
}

func (f *fakeLinker) LinkAccount(ctx context.Context, tx *gorm.DB, userId string, profile *instagram.Profile, token *instagram.LongLivedToken) (*model.InstagramAccount, error) {
	f.calls = append(f.calls, linkCall{userId: userId, profile: profile, token: token})
	if f.err != nil {
		return nil, f.err
	}
	return &model.InstagramAccount{UserID: userId, AccountID: profile.ID}, nil
}

type fakeUsers struct {
	byId          map[string]*model.User
	provisioned   *model.User
	provisionErr  error
	lastEmail     string
	provisionedAs bool
}

func (f *fakeUsers) GetById(ctx context.Context, tx *gorm.DB, userId string) (*model.User, error) {
	user, ok := f.byId[userId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetOrCreateByEmail(ctx context.Context, tx *gorm.DB, newUser model.User) (*model.User, bool, error) {
	f.lastEmail = newUser.Email
	if f.provisionErr != nil {
		return nil, false, f.provisionErr
	}
	if f.provisioned == nil {
		f.provisioned = &model.User{BaseModel: model.BaseModel{ID: "new-user"}, Email: newUser.Email, FirstName: newUser.FirstName}
		f.provisionedAs = true
	}
	return f.provisioned, f.provisionedAs, nil
}

type fakeTokens struct {
	err error
}

func (f *fakeTokens) GenRefreshAndAccessToken(ctx context.Context, tx *gorm.DB, user model.User) (*string, *string, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	refresh := "refresh-token"
	access := "access-token"
	return &refresh, &access, nil
}

type oauthFixture struct {
	ig     *fakeInstagramAPI
	states *fakeStateStore
	linker *fakeLinker
	users  *fakeUsers
	tokens *fakeTokens
	router *gin.Engine
}

func newOAuthFixture(t *testing.T) *oauthFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &appcontext.Application{
		Config: &config.Config{
			FrontendURL: "http://localhost:3000",
		},
		Logger: zap.NewNop().Sugar(),
	}

	f := &oauthFixture{
		ig: &fakeInstagramAPI{
			shortToken: &instagram.ShortLivedToken{AccessToken: "short1", UserID: "99"},
			longToken:  &instagram.LongLivedToken{AccessToken: "long1", TokenType: "bearer", ExpiresIn: 5184000},
			profile:    &instagram.Profile{ID: "99", Username: "alice", Name: "Alice"},
		},
		states: newFakeStateStore(),
		linker: &fakeLinker{},
		users:  &fakeUsers{byId: map[string]*model.User{}},
		tokens: &fakeTokens{},
	}

	oc := &OAuthController{
		baseController: &baseController{app: app},
		ig:             f.ig,
		states:         f.states,
		linker:         f.linker,
		users:          f.users,
		tokens:         f.tokens,
	}

	f.router = gin.New()
	f.router.GET("/api/v1/oauth/instagram", oc.ContinueWithInstagram)
	f.router.GET("/api/v1/oauth/instagram/callback", oc.InstagramCallback)

	return f
}

func (f *oauthFixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	f.router.ServeHTTP(w, req)
	return w
}

func (f *oauthFixture) savePendingLink(t *testing.T, userId string) {
	t.Helper()
	err := f.states.Save(context.Background(), statestore.PendingAuthorization{
		State:  "state123",
		UserID: userId,
		Next:   "/dashboard",
	}, 10*time.Minute)
	require.NoError(t, err)
}

func TestContinueWithInstagramRedirectsToProvider(t *testing.T) {
	f := newOAuthFixture(t)

	w := f.get(t, "/api/v1/oauth/instagram?next=/settings/accounts")

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://api.instagram.com/oauth/authorize?state=state123", w.Header().Get("Location"))

	pending, ok := f.states.records["state123"]
	require.True(t, ok)
	assert.Empty(t, pending.UserID)
	assert.Equal(t, "/settings/accounts", pending.Next)
}

func TestCallbackLinkFlowSuccess(t *testing.T) {
	f := newOAuthFixture(t)
	f.users.byId["user-1"] = &model.User{BaseModel: model.BaseModel{ID: "user-1"}, Email: "alice@example.com"}
	f.savePendingLink(t, "user-1")

	w := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/dashboard", w.Header().Get("Location"))

	require.Len(t, f.linker.calls, 1)
	call := f.linker.calls[0]
	assert.Equal(t, "user-1", call.userId)
	assert.Equal(t, "99", call.profile.ID)
	assert.Equal(t, "alice", call.profile.Username)
	assert.Equal(t, "long1", call.token.AccessToken)
	assert.Equal(t, int64(5184000), call.token.ExpiresIn)

	// No session issuance on the link flow.
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestCallbackProviderDenied(t *testing.T) {
	f := newOAuthFixture(t)
	f.savePendingLink(t, "user-1")

	w := f.get(t, "/api/v1/oauth/instagram/callback?error=access_denied&state=state123")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/login?error=provider_denied", w.Header().Get("Location"))
	assert.Zero(t, f.ig.exchangeCalls)
	assert.Zero(t, f.ig.longLivedCalls)
	assert.Zero(t, f.ig.profileCalls)
	assert.Empty(t, f.linker.calls)
}

func TestCallbackMissingCode(t *testing.T) {
	f := newOAuthFixture(t)
	f.savePendingLink(t, "user-1")

	w := f.get(t, "/api/v1/oauth/instagram/callback?state=state123")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/login?error=missing_code", w.Header().Get("Location"))
	assert.Zero(t, f.ig.exchangeCalls)
	assert.Empty(t, f.linker.calls)
}

func TestCallbackInvalidState(t *testing.T) {
	f := newOAuthFixture(t)
	f.savePendingLink(t, "user-1")

	w := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=not-the-state")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/login?error=invalid_state", w.Header().Get("Location"))
	assert.Zero(t, f.ig.exchangeCalls)
	assert.Empty(t, f.linker.calls)
}

func TestCallbackStateIsOneTimeUse(t *testing.T) {
	f := newOAuthFixture(t)
	f.users.byId["user-1"] = &model.User{BaseModel: model.BaseModel{ID: "user-1"}}
	f.savePendingLink(t, "user-1")

	first := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")
	assert.Equal(t, "http://localhost:3000/dashboard", first.Header().Get("Location"))

	replay := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")
	assert.Equal(t, "http://localhost:3000/login?error=invalid_state", replay.Header().Get("Location"))
	assert.Len(t, f.linker.calls, 1)
}

func TestCallbackTokenExchangeFailed(t *testing.T) {
	tests := []struct {
		name string
		set  func(f *fakeInstagramAPI)
	}{
		{"Short-lived hop fails", func(f *fakeInstagramAPI) {
			f.exchangeErr = &instagram.TokenExchangeError{StatusCode: 400, Body: `{"error_message":"bad code"}`}
		}},
		{"Long-lived hop fails", func(f *fakeInstagramAPI) {
			f.longLivedErr = &instagram.TokenExchangeError{StatusCode: 401, Body: `{"error":"bad token"}`}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOAuthFixture(t)
			f.users.byId["user-1"] = &model.User{BaseModel: model.BaseModel{ID: "user-1"}}
			f.savePendingLink(t, "user-1")
			tt.set(f.ig)

			w := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")

			assert.Equal(t, "http://localhost:3000/login?error=token_exchange_failed", w.Header().Get("Location"))
			assert.Empty(t, f.linker.calls)
		})
	}
}

func TestCallbackProfileFetchFailed(t *testing.T) {
	f := newOAuthFixture(t)
	f.users.byId["user-1"] = &model.User{BaseModel: model.BaseModel{ID: "user-1"}}
	f.savePendingLink(t, "user-1")
	f.ig.profileErr = &instagram.ProfileFetchError{StatusCode: 403, Body: `{"error":"denied"}`}

	w := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")

	assert.Equal(t, "http://localhost:3000/login?error=profile_fetch_failed", w.Header().Get("Location"))
	assert.Empty(t, f.linker.calls)
}

func TestCallbackLinkFlowNoSession(t *testing.T) {
	f := newOAuthFixture(t)
	// Pending record references a user that no longer exists.
	f.savePendingLink(t, "ghost-user")

	w := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")

	assert.Equal(t, "http://localhost:3000/login?error=no_session", w.Header().Get("Location"))
	assert.Empty(t, f.linker.calls)
}

func TestCallbackLinkFailed(t *testing.T) {
	f := newOAuthFixture(t)
	f.users.byId["user-1"] = &model.User{BaseModel: model.BaseModel{ID: "user-1"}}
	f.savePendingLink(t, "user-1")
	f.linker.err = errors.New("db down")

	w := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")

	assert.Equal(t, "http://localhost:3000/login?error=link_failed", w.Header().Get("Location"))
}

func TestCallbackLoginFlowProvisionsUserAndIssuesSession(t *testing.T) {
	f := newOAuthFixture(t)
	// Login flow pending record carries no user.
	f.savePendingLink(t, "")

	w := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/dashboard", w.Header().Get("Location"))

	// User auto-provisioned with the synthetic email derived from the
	// instagram account id.
	assert.Equal(t, "ig_99@users.instapilot.app", f.users.lastEmail)

	require.Len(t, f.linker.calls, 1)
	assert.Equal(t, "new-user", f.linker.calls[0].userId)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "refreshToken", cookies[0].Name)
	assert.Equal(t, "refresh-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCallbackLoginFlowSessionIssuanceFails(t *testing.T) {
	f := newOAuthFixture(t)
	f.savePendingLink(t, "")
	f.tokens.err = errors.New("token table unavailable")

	w := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")

	assert.Equal(t, "http://localhost:3000/login?error=no_session", w.Header().Get("Location"))
	assert.Empty(t, f.linker.calls)
}

func TestCallbackRejectsUnsafeNext(t *testing.T) {
	f := newOAuthFixture(t)
	f.users.byId["user-1"] = &model.User{BaseModel: model.BaseModel{ID: "user-1"}}

	err := f.states.Save(context.Background(), statestore.PendingAuthorization{
		State:  "state123",
		UserID: "user-1",
		Next:   "https://evil.example/phish",
	}, 10*time.Minute)
	require.NoError(t, err)

	w := f.get(t, "/api/v1/oauth/instagram/callback?code=abc123&state=state123")

	assert.Equal(t, "http://localhost:3000/dashboard", w.Header().Get("Location"))
}

func TestCallbackHonorsNextQueryParam(t *testing.T) {
	f := newOAuthFixture(t)
	f.users.byId["user-1"] = &model.User{BaseModel: model.BaseModel{ID: "user-1"}}
	f.savePendingLink(t, "user-1")

	target := "/api/v1/oauth/instagram/callback?code=abc123&state=state123&next=" + url.QueryEscape("/settings/accounts")
	w := f.get(t, target)

	assert.Equal(t, "http://localhost:3000/settings/accounts", w.Header().Get("Location"))
}
