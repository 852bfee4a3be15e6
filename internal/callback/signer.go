// Package callback builds and verifies the webhook URLs handed to the image
// provider. Each URL carries the record id and an HS256 token bound to that
// id and stage, so a callback can only target the record it was issued for.
package callback

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"emoji-backend/internal/models"
	"emoji-backend/internal/pipeline"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "emoji-backend"

type Signer struct {
	baseURL string
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewSigner(baseURL, secret string, ttl time.Duration) *Signer {
	return &Signer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

func audience(stage pipeline.Stage) string {
	return "callback:" + stage.String()
}

// Token issues the callback token for id at the given stage.
func (s *Signer) Token(stage pipeline.Stage, id uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  id.String(),
		Audience: jwt.ClaimStrings{audience(stage)},
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign callback token: %w", err)
	}
	return token, nil
}

// CallbackURL returns the webhook URL the provider should post the stage's
// result to.
func (s *Signer) CallbackURL(stage pipeline.Stage, id uuid.UUID) (string, error) {
	token, err := s.Token(stage, id)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("id", id.String())
	query.Set("token", token)
	return s.baseURL + stage.CallbackPath() + "?" + query.Encode(), nil
}

// Verify checks that token was issued by this signer for id and stage.
func (s *Signer) Verify(stage pipeline.Stage, id uuid.UUID, token string) error {
	if token == "" {
		return fmt.Errorf("%w: missing callback token", models.ErrInvalidRequest)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience(stage)),
		jwt.WithSubject(id.String()),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return fmt.Errorf("%w: callback token has expired", models.ErrInvalidRequest)
		case errors.Is(err, jwt.ErrTokenInvalidSubject), errors.Is(err, jwt.ErrTokenInvalidAudience):
			return fmt.Errorf("%w: callback token was issued for another record or stage", models.ErrInvalidRequest)
		default:
			return fmt.Errorf("%w: invalid callback token: %v", models.ErrInvalidRequest, err)
		}
	}
	if !parsed.Valid {
		return fmt.Errorf("%w: invalid callback token", models.ErrInvalidRequest)
	}
	return nil
}
