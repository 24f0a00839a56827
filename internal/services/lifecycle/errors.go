package lifecycle

import (
	"errors"
	"fmt"
)

// Ошибки жизненного цикла учётной записи. Нарушения инвариантов отклоняются
// локально и автоматически не повторяются; сбои внешних сервисов оборачиваются
// в ErrUpstreamUnavailable без отката уже зафиксированных изменений.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrCooldownActive      = errors.New("resend cooldown active")
	ErrInvalidToken        = errors.New("invalid verification token")
	ErrTokenExpired        = errors.New("verification token expired")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrInvalidPlan         = errors.New("invalid subscription plan")
	ErrTrialAlreadyUsed    = errors.New("trial already used")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNotFound            = errors.New("account not found")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// CooldownError сообщает, сколько секунд осталось до возможности повторной
// отправки письма. errors.Is(err, ErrCooldownActive) возвращает true.
type CooldownError struct {
	RemainingSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("resend cooldown active: %d seconds remaining", e.RemainingSeconds)
}

// Is сопоставляет CooldownError с сентинелом ErrCooldownActive.
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}
