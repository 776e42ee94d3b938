package utils

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Параметры PBKDF2. Менять нельзя — иначе перестанут проверяться старые хеши.
const (
	pbkdf2Iterations = 1000
	saltLength       = 24
	keyLength        = 24
)

var ErrMalformedHash = errors.New("повреждённая запись хеша пароля")

// HashPassword хеширует пароль через PBKDF2-HMAC-SHA512 со случайной солью.
// Формат записи: "<iterations>:<hex-соль>:<hex-ключ>".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("генерация соли: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLength, sha512.New)
	return fmt.Sprintf("%d:%s:%s", pbkdf2Iterations, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// CheckPasswordHash сверяет пароль с сохранённой записью.
// Ошибка возвращается только для повреждённой записи — это проблема данных,
// а не неверный пароль.
func CheckPasswordHash(password, record string) (bool, error) {
	parts := strings.Split(record, ":")
	if len(parts) != 3 {
		return false, ErrMalformedHash
	}

	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return false, ErrMalformedHash
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, ErrMalformedHash
	}
	stored, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, ErrMalformedHash
	}
	// Ключ всегда 24 байта; запись с пустым или усечённым ключом — порча
	// данных, а не кандидат на сравнение.
	if len(stored) != keyLength {
		return false, ErrMalformedHash
	}

	computed := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha512.New)
	return slowEquals(stored, computed), nil
}

// slowEquals сравнивает за постоянное время: XOR-аккумулятор по всей длине,
// разница длин тоже уходит в аккумулятор — без раннего выхода.
func slowEquals(a, b []byte) bool {
	diff := len(a) ^ len(b)
	for i := 0; i < len(a) && i < len(b); i++ {
		diff |= int(a[i] ^ b[i])
	}
	return diff == 0
}
