// Package models содержит доменную модель учётной записи пользователя:
// стадию жизненного цикла, данные о верификации email, подписку и платёж.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import (
	"time"

	"github.com/taxai/account-service/internal/lib/password"
)

// AccountStage обозначает стадию жизненного цикла учётной записи.
type AccountStage string

const (
	// StagePlaceholder — запись создана только для хранения токена верификации,
	// личность пользователя ещё не известна.
	StagePlaceholder AccountStage = "placeholder"
	// StageVerified — email подтверждён, запись является полноценной учёткой.
	StageVerified AccountStage = "verified"
)

// SubscriptionType тип тарифного плана подписки.
type SubscriptionType string

// Поддерживаемые тарифные планы.
const (
	SubscriptionTrial     SubscriptionType = "trial"
	SubscriptionMonthly   SubscriptionType = "monthly"
	SubscriptionQuarterly SubscriptionType = "quarterly"
	SubscriptionYearly    SubscriptionType = "yearly"
)

// SubscriptionStatus статус подписки.
type SubscriptionStatus string

// Допустимые статусы подписки. Переходы: pending -> active (подтверждение
// оплаты или активация триала), pending|active -> expired (плановая очистка).
// Из expired переходов нет.
const (
	StatusPending SubscriptionStatus = "pending"
	StatusActive  SubscriptionStatus = "active"
	StatusExpired SubscriptionStatus = "expired"
)

// PaymentMethod способ оплаты подписки.
type PaymentMethod string

const (
	// MethodCreditCard — оплата банковской картой через платёжного провайдера.
	MethodCreditCard PaymentMethod = "credit_card"
	// MethodTrial — нулевой "платёж" пробного периода.
	MethodTrial PaymentMethod = "trial"
)

// Payment описывает платёж по подписке.
type Payment struct {
	Amount          int           `json:"amount"`            // Сумма в минорных единицах валюты
	Method          PaymentMethod `json:"method"`            // Способ оплаты
	LastPaymentDate *time.Time    `json:"last_payment_date"` // Дата последней оплаты, nil — оплата ещё не прошла
	NextPaymentDate time.Time     `json:"next_payment_date"` // Якорь биллингового цикла, совпадает с EndDate на момент выбора плана
}

// Subscription представляет подписку учётной записи. Значение заменяется
// целиком при каждом выборе плана или подтверждении оплаты, частичные
// обновления полей не допускаются.
type Subscription struct {
	Type              SubscriptionType   `json:"type"`               // Тарифный план
	Status            SubscriptionStatus `json:"status"`             // Текущий статус
	MessageLimit      int                `json:"message_limit"`      // Квота сообщений на момент выдачи плана
	RemainingMessages int                `json:"remaining_messages"` // Остаток, 0 <= RemainingMessages <= MessageLimit
	CallSeconds       int                `json:"call_seconds"`       // Остаток секунд звонков
	StartDate         time.Time          `json:"start_date"`         // Дата начала подписки
	EndDate           time.Time          `json:"end_date"`           // Дата окончания: StartDate + длительность плана
	Payment           *Payment           `json:"payment,omitempty"`  // Платёж, nil пока ни одной попытки оплаты не было
}

// Account представляет учётную запись пользователя. Уникальный ключ — email
// (хранится в нижнем регистре, без пробелов по краям).
type Account struct {
	UID          string        // Уникальный идентификатор учётной записи
	Email        string        // Электронная почта
	Name         string        // Имя пользователя
	JobTitle     string        // Должность
	Language     *string       // Предпочитаемый язык интерфейса, nil — не задан
	PasswordHash password.Hash // Хэш пароля, пустой у placeholder-записи
	Role         string        // Роль пользователя, admin или user
	Stage        AccountStage  // Стадия жизненного цикла

	VerificationToken     *string    // Актуальный токен верификации, nil — токена нет
	VerificationExpiresAt *time.Time // Срок действия токена
	VerificationSentAt    *time.Time // Время последней отправки письма, основа для cooldown

	TrialUsed    bool         // Признак использованного триала, выставляется один раз и не сбрасывается
	Subscription Subscription // Подписка, присутствует всегда

	CreatedAt time.Time // Выставляется хранилищем при создании
	UpdatedAt time.Time // Выставляется хранилищем при каждом обновлении
}

// ProfileUpdate описывает частичное обновление профиля: nil-поля не меняются.
type ProfileUpdate struct {
	Name         *string
	JobTitle     *string
	Language     *string
	PasswordHash *password.Hash
}

// Verified сообщает, подтверждён ли email учётной записи.
func (a *Account) Verified() bool {
	return a.Stage == StageVerified
}

// IsSubscriptionActive сообщает, действует ли подписка в момент now.
func (a *Account) IsSubscriptionActive(now time.Time) bool {
	return a.Subscription.Status == StatusActive && now.Before(a.Subscription.EndDate)
}
