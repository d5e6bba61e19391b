package instagram

import "fmt"

// TokenExchangeError is returned when either token hop (code exchange or
// long-lived exchange) answers with a non-success status. Body is kept for
// server side logging only and must never be echoed to an end user.
type TokenExchangeError struct {
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("instagram token exchange failed with status %d", e.StatusCode)
}

// ProfileFetchError is returned when the business profile request answers
// with a non-success status.
type ProfileFetchError struct {
	StatusCode int
	Body       string
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("instagram profile fetch failed with status %d", e.StatusCode)
}
