package utils

import (
	"errors"
	"testing"
	"time"

	"reviewboard/internal/models"
)

var testUser = &models.User{ID: 7, Email: "a@x.com"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManager_IssueVerify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("testsecret", "reviewboard", time.Hour).WithClock(fixedClock(now))

	token, err := tm.Issue(testUser)
	if err != nil {
		t.Fatalf("ошибка выпуска токена: %v", err)
	}
	if token.Email != "a@x.com" {
		t.Errorf("email в токене: получено %q", token.Email)
	}
	if token.ExpiresAt != now.Add(time.Hour).Unix() {
		t.Errorf("срок действия: ожидалось %d, получено %d", now.Add(time.Hour).Unix(), token.ExpiresAt)
	}

	identity, err := tm.Verify(token.Token)
	if err != nil {
		t.Fatalf("ошибка проверки токена: %v", err)
	}
	if identity.ID != 7 || identity.Email != "a@x.com" {
		t.Errorf("личность из токена: получено %+v", identity)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("testsecret", "reviewboard", time.Hour).WithClock(fixedClock(issued))

	token, err := tm.Issue(testUser)
	if err != nil {
		t.Fatalf("ошибка выпуска токена: %v", err)
	}

	// Сдвигаем часы за срок действия
	tm.WithClock(fixedClock(issued.Add(2 * time.Hour)))

	_, err = tm.Verify(token.Token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("ожидался ErrExpiredToken, получено %v", err)
	}
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuerA := NewTokenManager("testsecret", "reviewboard", time.Hour).WithClock(fixedClock(now))
	issuerB := NewTokenManager("testsecret", "другой-сервис", time.Hour).WithClock(fixedClock(now))

	token, err := issuerA.Issue(testUser)
	if err != nil {
		t.Fatalf("ошибка выпуска токена: %v", err)
	}

	_, err = issuerB.Verify(token.Token)
	if !errors.Is(err, ErrInvalidIssuer) {
		t.Fatalf("ожидался ErrInvalidIssuer, получено %v", err)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	signer := NewTokenManager("testsecret", "reviewboard", time.Hour).WithClock(fixedClock(now))
	verifier := NewTokenManager("othersecret", "reviewboard", time.Hour).WithClock(fixedClock(now))

	token, err := signer.Issue(testUser)
	if err != nil {
		t.Fatalf("ошибка выпуска токена: %v", err)
	}

	if _, err := verifier.Verify(token.Token); err == nil {
		t.Fatal("токен с чужой подписью не должен проходить проверку")
	}
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager("testsecret", "reviewboard", time.Hour)
	if _, err := tm.Verify("не.токен.вовсе"); err == nil {
		t.Fatal("мусорная строка не должна проходить проверку")
	}
}
