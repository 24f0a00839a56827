package paymentprovider

// IntentStatusSucceeded — единственный статус, которому доверяет сервис
// при активации платной подписки.
const IntentStatusSucceeded = "succeeded"

// CreateIntentRequest — запрос на создание платёжного намерения.
type CreateIntentRequest struct {
	Amount   int               `json:"amount"`   // Сумма в минорных единицах
	Currency string            `json:"currency"` // Валюта платежа
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Intent — платёжное намерение провайдера.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int    `json:"amount"`
	Currency     string `json:"currency"`
}

// Succeeded сообщает, завершился ли платёж успешно.
func (i *Intent) Succeeded() bool {
	return i.Status == IntentStatusSucceeded
}
