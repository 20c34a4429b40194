package auth

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"memory-match-server/matcherrors"
)

const defaultPlayerName = "Player"

// Validator checks bearer tokens. With a Neon Auth base URL it verifies EdDSA
// tokens against the provider's JWKS; otherwise it falls back to HS256 with a
// shared secret. The JWKS client is created on first use and reused.
type Validator struct {
	baseURL string
	secret  []byte

	mu   sync.Mutex
	jwks keyfunc.Keyfunc
}

// NewValidator creates a validator. Both arguments may be empty, in which
// case every token is rejected with ErrAuthDisabled.
func NewValidator(neonAuthBaseURL, jwtSecret string) *Validator {
	return &Validator{
		baseURL: strings.TrimRight(neonAuthBaseURL, "/"),
		secret:  []byte(jwtSecret),
	}
}

// Enabled reports whether tokens can be validated at all.
func (v *Validator) Enabled() bool {
	return v != nil && (v.baseURL != "" || len(v.secret) > 0)
}

// Validate parses and verifies tokenString and returns its claims.
func (v *Validator) Validate(tokenString string) (jwt.MapClaims, error) {
	if !v.Enabled() {
		return nil, matcherrors.ErrAuthDisabled
	}
	var (
		token *jwt.Token
		err   error
	)
	if v.baseURL != "" {
		token, err = v.parseNeon(tokenString)
	} else {
		token, err = jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
			return v.secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", matcherrors.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", matcherrors.ErrInvalidToken)
	}
	return claims, nil
}

func (v *Validator) parseNeon(tokenString string) (*jwt.Token, error) {
	u, err := url.Parse(v.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	expectedIssuer := u.Scheme + "://" + u.Host

	jwks, err := v.keyfunc()
	if err != nil {
		return nil, err
	}
	return jwt.Parse(tokenString, jwks.Keyfunc,
		jwt.WithIssuer(expectedIssuer),
		jwt.WithValidMethods([]string{"EdDSA"}))
}

func (v *Validator) keyfunc() (keyfunc.Keyfunc, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.jwks != nil {
		return v.jwks, nil
	}
	jwks, err := keyfunc.NewDefault([]string{v.baseURL + "/.well-known/jwks.json"})
	if err != nil {
		return nil, err
	}
	v.jwks = jwks
	return jwks, nil
}

// PlayerNameFromClaims returns the first word of the "name" claim, or a fallback.
func PlayerNameFromClaims(claims jwt.MapClaims) string {
	name, _ := claims["name"].(string)
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return defaultPlayerName
	}
	return parts[0]
}

// UserIDFromClaims returns the user id from claims ("sub" or "id").
func UserIDFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
