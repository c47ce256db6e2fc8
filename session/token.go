package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var nowFunc = time.Now // mockable

// tokenExpiry peeks at a JWT's exp claim without verifying the signature.
// Verification is the backend's job; the expiry is only used for logging.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "parsing access token")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New("access token has no expiry claim")
	}
	return exp.Time, nil
}
