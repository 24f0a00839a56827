// Package usage содержит бизнес-логику учёта квоты подписки: чтение остатка
// сообщений и секунд звонков, проверку действия подписки и списание
// сообщений с кешированием остатка.
package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taxai/account-service/internal/lib/sl"
	"github.com/taxai/account-service/internal/models"
	"github.com/taxai/account-service/internal/storage/repository"
)

// ErrQuotaExhausted возвращается при списании из исчерпанной квоты.
// Операция завершается без изменения состояния.
var ErrQuotaExhausted = errors.New("message quota exhausted")

// ErrAccountNotFound возвращается, когда учётная запись не найдена.
var ErrAccountNotFound = errors.New("account not found")

// quotaCacheTTL — время жизни кешированного остатка квоты.
const quotaCacheTTL = 30 * time.Second

// AccountRepository определяет методы хранилища, нужные трекеру квоты.
type AccountRepository interface {
	// GetAccountByEmail возвращает учётную запись или repository.ErrAccountNotFound.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// DecrementRemainingMessages атомарно списывает одно сообщение.
	DecrementRemainingMessages(ctx context.Context, email string) (int, bool, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Quota — остаток квоты подписки.
type Quota struct {
	Messages    int `json:"messages"`
	CallSeconds int `json:"call_seconds"`
}

// Service реализует трекер квоты подписки.
type Service struct {
	repo  AccountRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo AccountRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func quotaCacheKey(email string) string {
	return "quota:" + email
}

// Remaining возвращает остаток квоты учётной записи. Чтение идёт через кеш
// с коротким TTL; промах заполняет кеш из хранилища.
func (s *Service) Remaining(ctx context.Context, email string) (Quota, error) {
	var cached Quota
	found, err := s.cache.Get(quotaCacheKey(email), &cached)
	if err != nil {
		s.log.Warn("quota cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	account, err := s.getAccount(ctx, email)
	if err != nil {
		return Quota{}, err
	}
	quota := Quota{
		Messages:    account.Subscription.RemainingMessages,
		CallSeconds: account.Subscription.CallSeconds,
	}
	if err := s.cache.Set(quotaCacheKey(email), quota, quotaCacheTTL); err != nil {
		s.log.Warn("quota cache write failed", sl.Err(err))
	}
	return quota, nil
}

// IsActive сообщает, действует ли подписка учётной записи сейчас.
func (s *Service) IsActive(ctx context.Context, email string) (bool, error) {
	account, err := s.getAccount(ctx, email)
	if err != nil {
		return false, err
	}
	return account.IsSubscriptionActive(time.Now().UTC()), nil
}

// ConsumeMessage атомарно списывает одно сообщение из квоты и возвращает
// остаток после списания. Списание выполняется условным обновлением на
// уровне хранилища: при нулевой квоте операция завершается ErrQuotaExhausted
// без изменения состояния, конкурентные списания не теряются и не уводят
// остаток ниже нуля.
func (s *Service) ConsumeMessage(ctx context.Context, email string) (int, error) {
	const op = "usage.ConsumeMessage"

	remaining, decremented, err := s.repo.DecrementRemainingMessages(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !decremented {
		// Отличаем отсутствующую учётку от исчерпанной квоты.
		if _, err := s.getAccount(ctx, email); err != nil {
			return 0, err
		}
		return 0, ErrQuotaExhausted
	}

	if err := s.cache.Invalidate(quotaCacheKey(email)); err != nil {
		s.log.Warn("quota cache invalidation failed", sl.Err(err))
	}
	return remaining, nil
}

func (s *Service) getAccount(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
