package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	record, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("ошибка хеширования: %v", err)
	}

	ok, err := CheckPasswordHash("secret", record)
	if err != nil {
		t.Fatalf("ошибка проверки: %v", err)
	}
	if !ok {
		t.Fatal("верный пароль не прошёл проверку")
	}

	ok, err = CheckPasswordHash("wrong", record)
	if err != nil {
		t.Fatalf("ошибка проверки: %v", err)
	}
	if ok {
		t.Fatal("неверный пароль прошёл проверку")
	}
}

func TestHashPassword_RecordFormat(t *testing.T) {
	record, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("ошибка хеширования: %v", err)
	}

	parts := strings.Split(record, ":")
	if len(parts) != 3 {
		t.Fatalf("ожидалось 3 поля в записи, получено %d: %q", len(parts), record)
	}
	if parts[0] != "1000" {
		t.Errorf("ожидалось 1000 итераций, получено %s", parts[0])
	}
	// 24 байта соли и ключа = 48 hex-символов
	if len(parts[1]) != 48 {
		t.Errorf("ожидалась соль из 48 hex-символов, получено %d", len(parts[1]))
	}
	if len(parts[2]) != 48 {
		t.Errorf("ожидался ключ из 48 hex-символов, получено %d", len(parts[2]))
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	first, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("ошибка хеширования: %v", err)
	}
	second, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("ошибка хеширования: %v", err)
	}

	if first == second {
		t.Fatal("два хеша одного пароля совпали — соль не случайна")
	}

	for _, record := range []string{first, second} {
		ok, err := CheckPasswordHash("secret", record)
		if err != nil || !ok {
			t.Fatalf("пароль не прошёл проверку против %q: ok=%v err=%v", record, ok, err)
		}
	}
}

func TestCheckPasswordHash_Malformed(t *testing.T) {
	cases := []struct {
		name   string
		record string
	}{
		{"мало полей", "1000:abcdef"},
		{"много полей", "1000:ab:cd:ef"},
		{"итерации не число", "x:abcd:abcd"},
		{"соль не hex", "1000:zzzz:abcd"},
		{"ключ не hex", "1000:abcd:zzzz"},
		{"пустое поле ключа", "1000:abcd:"},
		{"усечённый ключ", "1000:abcd:abcd"},
		{"пустая запись", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := CheckPasswordHash("secret", tc.record)
			if !errors.Is(err, ErrMalformedHash) {
				t.Fatalf("ожидался ErrMalformedHash, получено ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestSlowEquals_Lengths(t *testing.T) {
	if slowEquals([]byte("abc"), []byte("abcd")) {
		t.Fatal("срезы разной длины не должны совпадать")
	}
	if !slowEquals([]byte("abc"), []byte("abc")) {
		t.Fatal("одинаковые срезы должны совпадать")
	}
}
