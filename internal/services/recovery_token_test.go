package services

import (
	"context"
	"testing"

	"reviewboard/internal/config"
)

func TestRecoveryTokenService_GenerateToken(t *testing.T) {
	userRepo := newMockUserRepo()
	recovery := newMockRecoveryRepo()
	cfg := &config.Config{RecoveryTokenTTLMin: "30"}
	svc := NewRecoveryTokenService(recovery, userRepo, cfg)
	ctx := context.Background()

	// Неизвестный email — тихий no-op, токен не создаётся
	if err := svc.GenerateToken(ctx, "nobody@x.com"); err != nil {
		t.Fatalf("ожидался no-op без ошибки, получено %v", err)
	}
	if len(recovery.tokens) != 0 {
		t.Fatal("токен не должен создаваться для неизвестного email")
	}

	// Известный email — токен создан
	users := NewUserService(userRepo, recovery, nil, nil)
	if _, err := users.RegisterUser(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	if err := svc.GenerateToken(ctx, "a@x.com"); err != nil {
		t.Fatalf("ошибка создания токена: %v", err)
	}
	if recovery.tokens["a@x.com"] == "" {
		t.Fatal("токен не создан для известного email")
	}
}

func TestRecoveryTokenService_BadTTLFallsBack(t *testing.T) {
	svc := NewRecoveryTokenService(newMockRecoveryRepo(), newMockUserRepo(), &config.Config{RecoveryTokenTTLMin: "мусор"})
	if svc.tokenTTL.Minutes() != 30 {
		t.Fatalf("ожидался дефолт 30 минут, получено %v", svc.tokenTTL)
	}
}
