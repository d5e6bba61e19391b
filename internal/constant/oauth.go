package constant

import "time"

const (
	OAUTH_PROVIDER_INSTAGRAM = "instagram"

	// Pending authorization states are one-time use and expire if the user
	// does not return from the provider within this window.
	OAUTH_STATE_TTL = 10 * time.Minute

	// Where the callback sends the browser when no next path was supplied.
	OAUTH_DEFAULT_NEXT_PATH = "/dashboard"

	// Login page that receives the error reason code on failure redirects.
	OAUTH_LOGIN_PATH = "/login"
)

// OAuthFailureReason is the machine-readable reason code appended to the
// failure redirect as ?error=<reason>. Raw provider errors never leave the
// server logs.
type OAuthFailureReason string

const (
	OAuthFailureProviderDenied      OAuthFailureReason = "provider_denied"
	OAuthFailureMissingCode         OAuthFailureReason = "missing_code"
	OAuthFailureInvalidState        OAuthFailureReason = "invalid_state"
	OAuthFailureTokenExchangeFailed OAuthFailureReason = "token_exchange_failed"
	OAuthFailureProfileFetchFailed  OAuthFailureReason = "profile_fetch_failed"
	OAuthFailureNoSession           OAuthFailureReason = "no_session"
	OAuthFailureLinkFailed          OAuthFailureReason = "link_failed"
	OAuthFailureUnknown             OAuthFailureReason = "unknown"
)
