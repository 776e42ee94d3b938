package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"reviewboard/internal/models"
)

var (
	ErrInvalidToken         = errors.New("неверный токен")
	ErrExpiredToken         = errors.New("токен истёк")
	ErrInvalidIssuer        = errors.New("неверный издатель токена")
	ErrInvalidSigningMethod = errors.New("неверный алгоритм подписи")
)

// Claims — полезная нагрузка токена: стандартные поля плюс email.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет bearer-токены (HS512).
// Часы инжектируются, чтобы истечение можно было проверять детерминированно.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock подменяет источник времени (для тестов).
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// Issue выпускает подписанный токен для пользователя: iss, iat, exp,
// sub = id строкой, email — отдельным claim.
func (m *TokenManager) Issue(user *models.User) (*models.UserToken, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("подпись токена: %w", err)
	}

	return &models.UserToken{
		Email:     user.Email,
		Token:     signed,
		ExpiresAt: expires.Unix(),
	}, nil
}

// Verify проверяет подпись, издателя и срок действия, возвращает личность.
func (m *TokenManager) Verify(tokenString string) (*models.UserID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("%w: %v", ErrInvalidSigningMethod, token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != m.issuer {
		return nil, ErrInvalidIssuer
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject не является id", ErrInvalidToken)
	}

	return &models.UserID{ID: id, Email: claims.Email}, nil
}
