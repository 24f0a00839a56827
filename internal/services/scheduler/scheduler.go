// Package scheduler содержит фоновые задачи обслуживания учётных записей:
// перевод истёкших подписок в статус expired, удаление заброшенных
// placeholder-записей и публикацию напоминаний о скором окончании подписки.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/taxai/account-service/internal/lib/rabbitmq"
	"github.com/taxai/account-service/internal/lib/sl"
	"github.com/taxai/account-service/internal/models"
)

// placeholderRetention — срок, после которого неподтверждённая
// placeholder-запись считается заброшенной и удаляется.
const placeholderRetention = 24 * time.Hour

// AccountRepository описывает методы хранилища, нужные планировщику.
type AccountRepository interface {
	MarkExpiredSubscriptions(ctx context.Context, now time.Time) (int64, error)
	DeleteStalePlaceholders(ctx context.Context, cutoff time.Time) (int64, error)
	FindSubscriptionsExpiringTomorrow(ctx context.Context, now time.Time) ([]*models.ExpiryNotice, error)
}

// Service выполняет периодические задачи обслуживания.
type Service struct {
	repo AccountRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo AccountRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// RunExpirySweep раз в час помечает истёкшие подписки как expired и удаляет
// placeholder-записи старше суток. Блокируется до отмены контекста.
func (s *Service) RunExpirySweep(ctx context.Context) {
	s.runExpirySweep(ctx)

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runExpirySweep(ctx)
		}
	}
}

func (s *Service) runExpirySweep(ctx context.Context) {
	now := time.Now().UTC()

	expired, err := s.repo.MarkExpiredSubscriptions(ctx, now)
	if err != nil {
		s.log.Error("failed to mark expired subscriptions", sl.Err(err))
	} else if expired > 0 {
		s.log.Info("marked expired subscriptions", "count", expired)
	}

	stale, err := s.repo.DeleteStalePlaceholders(ctx, now.Add(-placeholderRetention))
	if err != nil {
		s.log.Error("failed to delete stale placeholders", sl.Err(err))
	} else if stale > 0 {
		s.log.Info("deleted stale placeholders", "count", stale)
	}
}

// RunExpiryNotifications раз в 12 часов публикует напоминания о подписках,
// истекающих завтра. Блокируется до отмены контекста.
func (s *Service) RunExpiryNotifications(ctx context.Context, channel *amqp.Channel) {
	s.runExpiryNotifications(ctx, channel)

	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runExpiryNotifications(ctx, channel)
		}
	}
}

func (s *Service) runExpiryNotifications(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting search for subscriptions expiring tomorrow")

	notices, err := s.repo.FindSubscriptionsExpiringTomorrow(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return
	}
	if len(notices) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}

	s.log.Info("found expiring subscriptions", "count", len(notices))
	for _, notice := range notices {
		if err := rabbitmq.PublishMessage(channel, "notifications", "expiring", notice); err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}
