// Package identity verifies bearer tokens issued by the external identity
// provider and turns them into a caller identity. It never issues tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified caller. Subject is the provider's user id.
type Identity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Username  string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type Config struct {
	// HMACSecret enables HS256 verification with a shared secret.
	HMACSecret string
	// JWKSURL enables RS256/ES256 verification against the provider's key set.
	JWKSURL  string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

type providerClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	GivenName string `json:"given_name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Family    string `json:"family_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type verifier struct {
	secret  []byte
	jwks    *jwksCache
	methods []string
	opts    []jwt.ParserOption
}

func NewVerifier(cfg Config) (Verifier, error) {
	secret := strings.TrimSpace(cfg.HMACSecret)
	jwksURL := strings.TrimSpace(cfg.JWKSURL)
	if secret == "" && jwksURL == "" {
		return nil, fmt.Errorf("identity verifier needs AUTH_JWT_SECRET or AUTH_JWKS_URL")
	}
	v := &verifier{}
	if secret != "" {
		v.secret = []byte(secret)
		v.methods = append(v.methods, jwt.SigningMethodHS256.Alg())
	}
	if jwksURL != "" {
		v.jwks = newJWKSCache(jwksURL, 6*time.Hour)
		v.methods = append(v.methods, jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg())
	}
	v.opts = []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if cfg.Leeway > 0 {
		v.opts = append(v.opts, jwt.WithLeeway(cfg.Leeway))
	}
	if iss := strings.TrimSpace(cfg.Issuer); iss != "" {
		v.opts = append(v.opts, jwt.WithIssuer(iss))
	}
	if aud := strings.TrimSpace(cfg.Audience); aud != "" {
		v.opts = append(v.opts, jwt.WithAudience(aud))
	}
	return v, nil
}

func (v *verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	claims := &providerClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if len(v.secret) == 0 {
				return nil, fmt.Errorf("hmac tokens not accepted")
			}
			return v.secret, nil
		default:
			if v.jwks == nil {
				return nil, fmt.Errorf("asymmetric tokens not accepted")
			}
			kid, _ := t.Header["kid"].(string)
			if strings.TrimSpace(kid) == "" {
				return nil, fmt.Errorf("missing kid")
			}
			return v.jwks.getKey(ctx, kid)
		}
	}, v.opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return &Identity{
		Subject:   sub,
		Email:     strings.TrimSpace(claims.Email),
		FirstName: firstNonEmpty(claims.GivenName, claims.FirstName),
		LastName:  firstNonEmpty(claims.Family, claims.LastName),
		Username:  strings.TrimSpace(claims.Username),
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
