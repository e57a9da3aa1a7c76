package cf

import (
	"errors"
	"fmt"
	"strings"
)

// ChallengeError is returned when a response is an anti-bot challenge page
// instead of the requested document.
type ChallengeError struct {
	URL        string
	StatusCode int
	Indicators []string
}

func (e *ChallengeError) Error() string {
	return fmt.Sprintf("anti-bot challenge: status=%d url=%s indicators=[%s]",
		e.StatusCode, e.URL, strings.Join(e.Indicators, "; "))
}

// IsChallenge checks if err wraps a ChallengeError
func IsChallenge(err error) (*ChallengeError, bool) {
	var chErr *ChallengeError
	if errors.As(err, &chErr) {
		return chErr, true
	}
	return nil, false
}
