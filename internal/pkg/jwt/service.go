package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims identify the caller. The user id travels as the standard subject.
type Claims struct {
	Email string `json:"email,omitempty"`

	jwtlib.RegisteredClaims
}

func (c Claims) UserID() string {
	return c.Subject
}

// Service issues and verifies access tokens. Accounts and sign-in live in a
// separate identity service; this process only needs to know who is calling.
type Service interface {
	Issue(userID, email string) (string, error)
	Verify(token string) (Claims, error)
}

type HMACService struct {
	secret    []byte
	expiresIn time.Duration
	issuer    string

	now func() time.Time
}

type Option func(*HMACService)

// WithIssuer stamps issued tokens and rejects tokens from any other issuer.
func WithIssuer(iss string) Option {
	return func(s *HMACService) { s.issuer = strings.TrimSpace(iss) }
}

func NewHMACService(secret string, expiresIn time.Duration, opts ...Option) *HMACService {
	s := &HMACService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HMACService) Issue(userID, email string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || len(s.secret) == 0 || s.expiresIn <= 0 {
		return "", ErrTokenInvalid
	}

	now := s.now().UTC()
	c := Claims{
		Email: email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.expiresIn)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *HMACService) Verify(token string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
		jwtlib.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(s.issuer))
	}

	var c Claims
	tok, err := jwtlib.NewParser(opts...).ParseWithClaims(token, &c, func(*jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil, tok == nil, !tok.Valid:
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(c.Subject) == "" {
		return Claims{}, ErrTokenInvalid
	}
	return c, nil
}
