// Package token реализует выпуск одноразовых токенов верификации email.
//
// Токен — непрозрачная hex-строка из 32 случайных байт (256 бит энтропии).
// Сравнение токенов выполняется только по полному совпадению.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// TTL — срок действия токена верификации.
const TTL = 24 * time.Hour

// Issuer выпускает токены верификации с ограниченным сроком действия.
type Issuer interface {
	// Issue возвращает новый токен и время истечения его действия.
	Issue() (token string, expiresAt time.Time, err error)
}

// IssuerImpl реализует Issuer на основе crypto/rand.
type IssuerImpl struct {
	ttl time.Duration
	now func() time.Time
}

// New создает новый IssuerImpl со стандартным TTL.
func New() *IssuerImpl {
	return &IssuerImpl{ttl: TTL, now: time.Now}
}

// Issue генерирует 32 случайных байта и возвращает их hex-представление
// вместе со временем истечения.
func (i *IssuerImpl) Issue() (string, time.Time, error) {
	const op = "token.Issue"
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), i.now().UTC().Add(i.ttl), nil
}
