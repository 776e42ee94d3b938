package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"reviewboard/internal/logger"
	"reviewboard/internal/models"
	"reviewboard/internal/repository"
	"reviewboard/internal/utils"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// Мок-репозиторий пользователей (заглушка)
type mockUserRepo struct {
	users  map[string]*models.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User), nextID: 1}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *models.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrEmailTaken
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) IsEmailTaken(_ context.Context, email string) (bool, error) {
	_, exists := m.users[email]
	return exists, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, userID int, passwordHash string) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepo) DeleteUserByID(_ context.Context, userID int) error {
	for email, u := range m.users {
		if u.ID == userID {
			delete(m.users, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepo) GetAllUsersPaginated(_ context.Context, limit, offset int) ([]*models.User, int, error) {
	var out []*models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

// Мок-хранилище токенов восстановления
type mockRecoveryRepo struct {
	tokens  map[string]string // email -> token
	failGet error             // если задано, GetPendingByEmail возвращает эту ошибку
}

func newMockRecoveryRepo() *mockRecoveryRepo {
	return &mockRecoveryRepo{tokens: make(map[string]string)}
}

func (m *mockRecoveryRepo) Create(_ context.Context, email, token string, _ time.Time) error {
	m.tokens[email] = token
	return nil
}

func (m *mockRecoveryRepo) GetPendingByEmail(_ context.Context, email string) (*models.RecoveryToken, error) {
	if m.failGet != nil {
		return nil, m.failGet
	}
	token, ok := m.tokens[email]
	if !ok {
		return nil, repository.ErrNoPendingToken
	}
	return &models.RecoveryToken{Email: email, Token: token, ExpiresAt: time.Now().Add(time.Minute)}, nil
}

func (m *mockRecoveryRepo) CheckToken(_ context.Context, email, token string) (bool, error) {
	stored, ok := m.tokens[email]
	if !ok || stored != token {
		return false, nil
	}
	delete(m.tokens, email) // одноразовость
	return true, nil
}

// Мок-отправитель писем
type mockEmailSender struct {
	sent []string // токены, ушедшие в письмах
	fail bool
}

func (m *mockEmailSender) SendPasswordRecovery(_ context.Context, to, token string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, token)
	return nil
}

func newTestService() (*UserService, *mockUserRepo, *mockRecoveryRepo, *mockEmailSender, *utils.TokenManager) {
	repo := newMockUserRepo()
	recovery := newMockRecoveryRepo()
	sender := &mockEmailSender{}
	tm := utils.NewTokenManager("testsecret", "reviewboard", time.Hour)
	svc := NewUserService(repo, recovery, tm, sender)
	return svc, repo, recovery, sender, tm
}

func TestRegisterUser(t *testing.T) {
	svc, repo, _, _, _ := newTestService()

	user, err := svc.RegisterUser(context.Background(), "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("пользователю не присвоен id")
	}
	if user.PasswordHash == "" || user.PasswordHash == "pw1" {
		t.Fatal("пароль не захеширован")
	}

	stored := repo.users["a@x.com"]
	if stored == nil {
		t.Fatal("пользователь не сохранён")
	}
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	if _, err := svc.RegisterUser(context.Background(), "a@x.com", "pw1"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	if _, err := svc.RegisterUser(context.Background(), "a@x.com", "pw2"); !errors.Is(err, repository.ErrEmailTaken) {
		t.Fatalf("ожидался ErrEmailTaken, получено %v", err)
	}
}

func TestGenerateToken_Scenario(t *testing.T) {
	svc, _, _, _, tm := newTestService()

	if _, err := svc.RegisterUser(context.Background(), "a@x.com", "pw1"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	token, err := svc.GenerateToken(context.Background(), "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("ошибка выпуска токена: %v", err)
	}

	identity, err := tm.Verify(token.Token)
	if err != nil {
		t.Fatalf("выданный токен не прошёл проверку: %v", err)
	}
	if identity.Email != "a@x.com" {
		t.Errorf("email из токена: получено %q", identity.Email)
	}

	if _, err := svc.GenerateToken(context.Background(), "a@x.com", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("ожидался ErrBadCredentials, получено %v", err)
	}
	if _, err := svc.GenerateToken(context.Background(), "nobody@x.com", "pw1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ожидался ErrUserNotFound, получено %v", err)
	}
}

func TestUpdatePassword_FlipsVerification(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	if _, err := svc.UpdatePassword(ctx, "a@x.com", "pw1", "pw2"); err != nil {
		t.Fatalf("ошибка смены пароля: %v", err)
	}

	if svc.VerifyPassword(ctx, "a@x.com", "pw1") {
		t.Fatal("старый пароль всё ещё проходит проверку")
	}
	if !svc.VerifyPassword(ctx, "a@x.com", "pw2") {
		t.Fatal("новый пароль не прошёл проверку")
	}
}

func TestUpdatePassword_WrongOldPassword(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	if _, err := svc.UpdatePassword(ctx, "a@x.com", "wrong", "pw2"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("ожидался ErrBadCredentials, получено %v", err)
	}
	if !svc.VerifyPassword(ctx, "a@x.com", "pw1") {
		t.Fatal("пароль не должен был измениться")
	}
}

func TestDeleteUser(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	if _, err := svc.DeleteUser(ctx, "a@x.com", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("удаление с неверным паролем: ожидался ErrBadCredentials, получено %v", err)
	}

	if _, err := svc.DeleteUser(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatal("пользователь не удалён из хранилища")
	}
}

func TestSendRecoveryToken(t *testing.T) {
	svc, _, recovery, sender, _ := newTestService()
	ctx := context.Background()

	// Нет ожидающего токена — тихий no-op
	if err := svc.SendRecoveryToken(ctx, "a@x.com"); err != nil {
		t.Fatalf("ожидался no-op без ошибки, получено %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("письмо не должно было отправляться")
	}

	// Токен есть — письмо уходит
	recovery.tokens["a@x.com"] = "tok-123"
	if err := svc.SendRecoveryToken(ctx, "a@x.com"); err != nil {
		t.Fatalf("ошибка отправки: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "tok-123" {
		t.Fatalf("в письме ожидался токен tok-123, получено %v", sender.sent)
	}
}

func TestSendRecoveryToken_DeliveryFailure(t *testing.T) {
	svc, _, recovery, sender, _ := newTestService()

	recovery.tokens["a@x.com"] = "tok-123"
	sender.fail = true

	if err := svc.SendRecoveryToken(context.Background(), "a@x.com"); err == nil {
		t.Fatal("ошибка доставки должна подниматься наверх")
	}
}

func TestSendRecoveryToken_StoreFailure(t *testing.T) {
	svc, _, recovery, sender, _ := newTestService()

	// Отказ хранилища — не "токена нет": ошибка должна подниматься наверх
	recovery.failGet = errors.New("соединение с БД потеряно")

	err := svc.SendRecoveryToken(context.Background(), "a@x.com")
	if !errors.Is(err, recovery.failGet) {
		t.Fatalf("ожидалась ошибка хранилища, получено %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("письмо не должно было отправляться")
	}
}

func TestRecoverFromToken(t *testing.T) {
	svc, repo, recovery, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	hashBefore := repo.users["a@x.com"].PasswordHash

	// Невалидный токен: false, хеш не тронут
	updated, err := svc.RecoverFromToken(ctx, "a@x.com", "bad-token", "pw2")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if updated {
		t.Fatal("невалидный токен не должен менять пароль")
	}
	if repo.users["a@x.com"].PasswordHash != hashBefore {
		t.Fatal("хеш изменился при невалидном токене")
	}

	// Валидный токен: пароль заменён
	recovery.tokens["a@x.com"] = "tok-123"
	updated, err = svc.RecoverFromToken(ctx, "a@x.com", "tok-123", "pw2")
	if err != nil {
		t.Fatalf("ошибка восстановления: %v", err)
	}
	if !updated {
		t.Fatal("ожидалась замена пароля")
	}
	if !svc.VerifyPassword(ctx, "a@x.com", "pw2") {
		t.Fatal("новый пароль не прошёл проверку")
	}
	if svc.VerifyPassword(ctx, "a@x.com", "pw1") {
		t.Fatal("старый пароль всё ещё проходит проверку")
	}

	// Токен одноразовый
	updated, _ = svc.RecoverFromToken(ctx, "a@x.com", "tok-123", "pw3")
	if updated {
		t.Fatal("использованный токен не должен срабатывать повторно")
	}
}

func TestRecoverFromToken_UnknownEmail(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.RecoverFromToken(context.Background(), "nobody@x.com", "tok", "pw")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ожидался ErrUserNotFound, получено %v", err)
	}
}
