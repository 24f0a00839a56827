// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// Hash — отдельный тип для bcrypt-хэша: получить его можно только через New,
// которая принимает исключительно открытый пароль. Присвоить полю пароля уже
// захэшированную строку напрямую нельзя, поэтому повторное хеширование хэша
// исключено на уровне типов.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// cost — стоимость bcrypt при хешировании паролей.
const cost = 12

// Hash представляет bcrypt-хэш пароля.
type Hash string

// New принимает открытый пароль пользователя и возвращает его bcrypt‑хэш.
//
// Единственная точка входа для хеширования: вызывается ровно один раз
// на каждое присвоение пароля.
func New(plaintext string) (Hash, error) {
	const op = "password.New"
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return Hash(hashed), nil
}

// Verify сравнивает хэш с введённым паролем.
//
// Возвращает true, если пароль соответствует хэшу. На некорректном хэше
// не паникует и возвращает false.
func (h Hash) Verify(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(h), []byte(plaintext)) == nil
}

// IsSet сообщает, задан ли у учётной записи пароль.
func (h Hash) IsSet() bool {
	return h != ""
}
