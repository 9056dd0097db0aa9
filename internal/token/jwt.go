package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Provider выпускает и проверяет сессионные токены админ-панели.
type Provider interface {
	Generate(subject string) (string, error)
	Parse(raw string) (string, error)
}

type HSProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewHSProvider(secret string, ttl time.Duration) *HSProvider {
	return &HSProvider{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (p *HSProvider) Generate(subject string) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Parse возвращает subject валидного токена.
func (p *HSProvider) Parse(raw string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
