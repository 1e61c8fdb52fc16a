package token

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// Claims carries the principal of a bearer token: the user id as subject and
// the email as name.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}

type SignedToken struct {
	Token     string
	ExpiresAt time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source used for issuing tokens.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

type Issuer struct {
	cfg Config
	now func() time.Time
}

func NewIssuer(cfg Config, opts ...Option) *Issuer {
	issuer := &Issuer{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer
}

func (i *Issuer) TTL() time.Duration {
	return i.cfg.TTL
}

// GenerateOpaqueToken returns a random nonce used for refresh, email
// confirmation and password reset tokens.
func (i *Issuer) GenerateOpaqueToken() string {
	return uuid.New().String()
}

func (i *Issuer) GenerateBearerToken(userID, email string) (*SignedToken, error) {
	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(i.cfg.TTL)

	claims := &Claims{
		Name: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("sign bearer token: %w", err)
	}

	return &SignedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateBearerToken checks the signature, issuer and audience of
// tokenString. Expiry and not-before are enforced unless ignoreExpiry is set.
func (i *Issuer) ValidateBearerToken(tokenString string, ignoreExpiry bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	}
	if ignoreExpiry {
		// Disables every registered-claim check, so issuer and audience are
		// verified by hand below.
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts,
			jwt.WithIssuer(i.cfg.Issuer),
			jwt.WithAudience(i.cfg.Audience),
			jwt.WithExpirationRequired(),
		)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return i.cfg.SigningKey, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if ignoreExpiry {
		if claims.Issuer != i.cfg.Issuer || !slices.Contains(claims.Audience, i.cfg.Audience) {
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}
