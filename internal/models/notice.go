package models

import "time"

// ExpiryNotice содержит данные для письма-напоминания об окончании подписки.
// Передаётся из планировщика отправителю через брокер сообщений.
type ExpiryNotice struct {
	Email   string           `json:"email"`
	Name    string           `json:"name"`
	SubType SubscriptionType `json:"sub_type"`
	EndDate time.Time        `json:"end_date"`
}

// VerificationEmail содержит данные для письма с подтверждением email.
type VerificationEmail struct {
	Email           string `json:"email"`
	VerificationURL string `json:"verification_url"`
}

// WelcomeEmail содержит данные для приветственного письма.
type WelcomeEmail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
