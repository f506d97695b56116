// Package token decodes bearer token claims and answers liveness questions.
//
// Signature verification is deliberately absent: the remote CRM API is the
// verifier of record, this layer only needs the embedded expiry to know when a
// credential stops being usable. Decoding therefore uses an unverified parse
// and fails closed on anything that is not a well-formed claims container.
package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/sarusarang/crm-extexhnology/internal/apperrors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims holds the decoded claims of a bearer token. Only Exp is load-bearing;
// everything else passes through opaquely via Raw and must not break decoding
// when absent.
type Claims struct {
	Exp  *int64            // Expiry, Unix seconds
	Name string            // Display name claim, if present
	Role string            // Role claim, if present
	Raw  jwtlib.MapClaims  // All claims as decoded
}

// Decode extracts the claims embedded in a raw bearer token without verifying
// its signature. A malformed or non-JWT-shaped string fails with
// apperrors.ErrTokenMalformed.
func Decode(rawToken string) (*Claims, error) {
	if rawToken == "" {
		return nil, apperrors.ErrTokenMissing
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrTokenMalformed, "token.Decode: %v", err)
	}

	mapClaims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrTokenMalformed, "token.Decode: error extracting claims")
	}

	claims := &Claims{Raw: mapClaims}

	// JSON numbers decode as float64
	if exp, ok := mapClaims["exp"].(float64); ok {
		expInt := int64(exp)
		claims.Exp = &expInt
	}
	claims.Name, _ = mapClaims["name"].(string)
	claims.Role, _ = mapClaims["user_type"].(string)

	return claims, nil
}

// ExpiresAt returns the expiry instant. ok is false when no numeric exp claim
// was present.
func (c *Claims) ExpiresAt() (time.Time, bool) {
	if c.Exp == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*c.Exp * 1000), true
}

// LiveAt reports whether the claims are live at instant t: an exp claim is
// present and exp*1000 is strictly in t's future, millisecond precision.
func (c *Claims) LiveAt(t time.Time) bool {
	expiry, ok := c.ExpiresAt()
	if !ok {
		return false
	}
	return expiry.After(t)
}

// IsLive reports whether rawToken decodes successfully and has not passed its
// expiry instant. Any decode failure means not live.
func IsLive(rawToken string) bool {
	claims, err := Decode(rawToken)
	if err != nil {
		return false
	}
	return claims.LiveAt(NowTimeFunc())
}
