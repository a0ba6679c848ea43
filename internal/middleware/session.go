package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"

	"jacksonjar/internal/domain"
)

// SessionCookie holds the signed merchant session.
const SessionCookie = "jar_session"

const sessionIssuer = "jacksonjar"

// Sessions issues and verifies HS256 session cookies that name a merchant.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}
}

// Issue logs merchantID in by setting the session cookie.
func (s *Sessions) Issue(w http.ResponseWriter, merchantID int64) error {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(merchantID, 10),
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// MerchantID returns the merchant named by the request's session cookie. A
// missing, forged or expired cookie yields domain.ErrUnauthorized.
func (s *Sessions) MerchantID(r *http.Request) (int64, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return 0, domain.ErrUnauthorized
	}
	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Name}}
	token, err := parser.ParseWithClaims(c.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, domain.ErrUnauthorized
	}
	if !claims.VerifyIssuer(sessionIssuer, true) {
		return 0, domain.ErrUnauthorized
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return 0, domain.ErrUnauthorized
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrUnauthorized
	}
	return id, nil
}

// MerchantLoader resolves a merchant by local id.
type MerchantLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.Merchant, error)
}

type merchantContextKey struct{}

// CurrentMerchant resolves the session's merchant once per request and stores
// it in the context. Requests without a valid session, or whose merchant no
// longer exists, continue anonymously.
func CurrentMerchant(sessions *Sessions, merchants MerchantLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sessions.MerchantID(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			m, err := merchants.GetByID(r.Context(), id)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					zerolog.Ctx(r.Context()).Error().Err(err).Int64("merchant_id", id).Msg("load session merchant")
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithMerchant(r.Context(), m)))
		})
	}
}

// MerchantFromContext returns the logged-in merchant, if any.
func MerchantFromContext(ctx context.Context) (*domain.Merchant, bool) {
	m, ok := ctx.Value(merchantContextKey{}).(*domain.Merchant)
	return m, ok && m != nil
}

// ContextWithMerchant stores m as the request's logged-in merchant.
func ContextWithMerchant(ctx context.Context, m *domain.Merchant) context.Context {
	return context.WithValue(ctx, merchantContextKey{}, m)
}
