// Package plans содержит каталог тарифных планов — единственный источник
// правды о квотах, длительности и цене каждого плана. Каталог передаётся
// сервисам как неизменяемое значение, обработчики не хардкодят квоты.
package plans

import (
	"errors"
	"time"

	"github.com/taxai/account-service/internal/models"
)

// ErrUnknownPlan возвращается при запросе несуществующего тарифного плана.
var ErrUnknownPlan = errors.New("unknown subscription plan")

// Plan описывает тарифный план подписки.
type Plan struct {
	Type            models.SubscriptionType `json:"type"`              // Идентификатор плана
	MessageLimit    int                     `json:"message_limit"`     // Квота сообщений
	CallSeconds     int                     `json:"call_seconds"`      // Бюджет секунд звонков
	DurationDays    int                     `json:"duration_days"`     // Длительность в днях
	PriceMinorUnits int                     `json:"price_minor_units"` // Цена в минорных единицах валюты
}

// Duration возвращает длительность плана как time.Duration.
func (p Plan) Duration() time.Duration {
	return time.Duration(p.DurationDays) * 24 * time.Hour
}

// IsTrial сообщает, является ли план пробным.
func (p Plan) IsTrial() bool {
	return p.Type == models.SubscriptionTrial
}

// Catalog — неизменяемая таблица тарифных планов.
type Catalog struct {
	plans map[models.SubscriptionType]Plan
	order []models.SubscriptionType
}

// NewCatalog возвращает стандартный каталог планов сервиса.
func NewCatalog() Catalog {
	list := []Plan{
		{Type: models.SubscriptionTrial, MessageLimit: 50, CallSeconds: 300, DurationDays: 14, PriceMinorUnits: 0},
		{Type: models.SubscriptionMonthly, MessageLimit: 100, CallSeconds: 1800, DurationDays: 30, PriceMinorUnits: 9900},
		{Type: models.SubscriptionQuarterly, MessageLimit: 300, CallSeconds: 5400, DurationDays: 90, PriceMinorUnits: 25000},
		{Type: models.SubscriptionYearly, MessageLimit: 1200, CallSeconds: 21600, DurationDays: 365, PriceMinorUnits: 89900},
	}
	plansByType := make(map[models.SubscriptionType]Plan, len(list))
	order := make([]models.SubscriptionType, 0, len(list))
	for _, p := range list {
		plansByType[p.Type] = p
		order = append(order, p.Type)
	}
	return Catalog{plans: plansByType, order: order}
}

// Lookup возвращает план по идентификатору или ErrUnknownPlan.
func (c Catalog) Lookup(planType models.SubscriptionType) (Plan, error) {
	p, ok := c.plans[planType]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return p, nil
}

// List возвращает все планы в порядке возрастания цены.
func (c Catalog) List() []Plan {
	result := make([]Plan, 0, len(c.order))
	for _, t := range c.order {
		result = append(result, c.plans[t])
	}
	return result
}
