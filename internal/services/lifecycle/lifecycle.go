// Package lifecycle содержит бизнес-логику жизненного цикла учётной записи:
// запрос и подтверждение верификации email, заполнение профиля, выбор
// тарифного плана, подтверждение оплаты и вход в систему.
//
// Сервис — единственная точка, через которую учётная запись меняет стадию
// и подписку. Все проверки инвариантов (занятость email, cooldown повторной
// отправки, одноразовость токена, защёлка trial_used) выполняются здесь.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxai/account-service/internal/lib/jwt"
	"github.com/taxai/account-service/internal/lib/password"
	"github.com/taxai/account-service/internal/lib/sl"
	"github.com/taxai/account-service/internal/models"
	"github.com/taxai/account-service/internal/paymentprovider"
	"github.com/taxai/account-service/internal/plans"
	"github.com/taxai/account-service/internal/storage/repository"
)

// ResendCooldown — минимальный интервал между повторными отправками
// письма верификации.
const ResendCooldown = 60 * time.Second

// AccountRepository описывает контракт хранилища учётных записей.
type AccountRepository interface {
	// GetAccountByEmail возвращает учётную запись или repository.ErrAccountNotFound.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// VerifiedAccountExists сообщает, занят ли email подтверждённой учёткой.
	VerifiedAccountExists(ctx context.Context, email string) (bool, error)
	// FindOrCreatePlaceholder возвращает запись, создавая placeholder при необходимости.
	FindOrCreatePlaceholder(ctx context.Context, uid, email string) (*models.Account, error)
	// SetVerificationToken перезаписывает токен верификации.
	SetVerificationToken(ctx context.Context, email, token string, expiresAt, sentAt time.Time) error
	// ConsumeVerificationToken атомарно подтверждает email по паре {email, токен}.
	ConsumeVerificationToken(ctx context.Context, email, token string, now time.Time) (string, bool, error)
	// ClearExpiredVerificationToken очищает совпавший, но истёкший токен.
	ClearExpiredVerificationToken(ctx context.Context, email, token string, now time.Time) (bool, error)
	// CompleteProfile записывает имя, должность и хэш пароля.
	CompleteProfile(ctx context.Context, email, name, jobTitle string, hash password.Hash) error
	// UpdateProfile применяет частичное обновление профиля.
	UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (*models.Account, error)
	// ReplaceSubscription целиком заменяет подписку учётной записи.
	ReplaceSubscription(ctx context.Context, email string, sub models.Subscription, markTrialUsed bool) error
	// DeleteAccountByEmail удаляет учётную запись, возвращает число удалённых строк.
	DeleteAccountByEmail(ctx context.Context, email string) (int64, error)
}

// TokenIssuer выпускает токены верификации email.
type TokenIssuer interface {
	Issue() (token string, expiresAt time.Time, err error)
}

// EmailSender описывает контракт отправки писем. Сбои отправки не откатывают
// уже зафиксированные изменения состояния.
type EmailSender interface {
	SendVerification(email, verificationURL string) error
	SendWelcome(email, name string) error
}

// PaymentProvider описывает контракт платёжного провайдера.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, req paymentprovider.CreateIntentRequest) (*paymentprovider.Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*paymentprovider.Intent, error)
}

// Options — настройки поведения сервиса.
type Options struct {
	// PublicBaseURL — база для ссылок верификации в письмах.
	PublicBaseURL string
	// Currency — валюта платёжных намерений.
	Currency string
	// RequireVerifiedLogin включает жёсткую проверку подтверждённого email
	// при входе. По умолчанию выключена: вход разрешён и до подтверждения.
	RequireVerifiedLogin bool
}

// Service реализует машину состояний учётной записи.
type Service struct {
	repo     AccountRepository
	tokens   TokenIssuer
	emails   EmailSender
	provider PaymentProvider
	jwtMaker jwt.Maker
	catalog  plans.Catalog
	opts     Options
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo AccountRepository, tokens TokenIssuer, emails EmailSender,
	provider PaymentProvider, jwtMaker jwt.Maker, catalog plans.Catalog,
	opts Options, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		emails:   emails,
		provider: provider,
		jwtMaker: jwtMaker,
		catalog:  catalog,
		opts:     opts,
		log:      log,
	}
}

// NormalizeEmail приводит email к каноничному виду ключа учётной записи.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestEmailVerification находит или создаёт placeholder-запись, выпускает
// новый токен верификации и отправляет письмо со ссылкой подтверждения.
//
// Повторный вызов раньше, чем через ResendCooldown после предыдущей отправки,
// завершается CooldownError. Токен сохраняется до отправки письма: сбой
// почты возвращает ErrUpstreamUnavailable, но токен остаётся действительным,
// путь повтора — повторный запрос после cooldown.
func (s *Service) RequestEmailVerification(ctx context.Context, email string) error {
	const op = "lifecycle.RequestEmailVerification"
	email = NormalizeEmail(email)

	taken, err := s.repo.VerifiedAccountExists(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return ErrEmailTaken
	}

	account, err := s.repo.FindOrCreatePlaceholder(ctx, uuid.New().String(), email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	if account.VerificationSentAt != nil {
		elapsed := now.Sub(*account.VerificationSentAt)
		if elapsed < ResendCooldown {
			remaining := int(math.Ceil((ResendCooldown - elapsed).Seconds()))
			return &CooldownError{RemainingSeconds: remaining}
		}
	}

	tokenValue, expiresAt, err := s.tokens.Issue()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetVerificationToken(ctx, email, tokenValue, expiresAt, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	verificationURL := fmt.Sprintf("%s/verify-email?token=%s&email=%s",
		s.opts.PublicBaseURL, tokenValue, url.QueryEscape(email))
	if err := s.emails.SendVerification(email, verificationURL); err != nil {
		s.log.Error("failed to send verification email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, ErrUpstreamUnavailable)
	}
	return nil
}

// ConfirmEmailVerification подтверждает email по одноразовому токену
// и возвращает сессионный JWT для опознанной учётной записи.
//
// Единственная операция, переводящая запись в стадию verified. Истёкший
// токен очищается в рамках самой проверки и повторно использован быть
// не может.
func (s *Service) ConfirmEmailVerification(ctx context.Context, email, tokenValue string) (string, error) {
	const op = "lifecycle.ConfirmEmailVerification"
	email = NormalizeEmail(email)
	now := time.Now().UTC()

	uid, ok, err := s.repo.ConsumeVerificationToken(ctx, email, tokenValue, now)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		cleared, clearErr := s.repo.ClearExpiredVerificationToken(ctx, email, tokenValue, now)
		if clearErr != nil {
			return "", fmt.Errorf("%s: %w", op, clearErr)
		}
		if cleared {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	sessionToken, err := s.jwtMaker.GenerateToken(email, "user", uid)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sessionToken, nil
}

// CompleteProfile записывает имя, должность и пароль подтверждённой учётной
// записи. Пароль хэшируется ровно один раз внутри password.New; повторная
// отправка тех же данных безопасна, новый пароль заменяет старый хэш.
//
// Приветственное письмо отправляется после фиксации профиля; его сбой
// логируется, но операцию не отменяет.
func (s *Service) CompleteProfile(ctx context.Context, email, name, jobTitle, rawPassword string) error {
	const op = "lifecycle.CompleteProfile"
	email = NormalizeEmail(email)

	account, err := s.getAccount(ctx, email)
	if err != nil {
		return err
	}
	if !account.Verified() {
		return ErrEmailNotVerified
	}

	hash, err := password.New(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.CompleteProfile(ctx, email, name, jobTitle, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.emails.SendWelcome(email, name); err != nil {
		s.log.Error("failed to send welcome email", sl.Err(err))
	}
	return nil
}

// SelectPlan заменяет подписку учётной записи на свежесобранную по каталогу.
//
// Триал активируется сразу и взводит защёлку trial_used; платные планы
// остаются в статусе pending до подтверждения оплаты. Возвращает новую
// подписку и признак того, что требуется оплата.
func (s *Service) SelectPlan(ctx context.Context, email string, planType models.SubscriptionType) (models.Subscription, bool, error) {
	const op = "lifecycle.SelectPlan"
	email = NormalizeEmail(email)

	account, err := s.getAccount(ctx, email)
	if err != nil {
		return models.Subscription{}, false, err
	}
	if !account.Verified() {
		return models.Subscription{}, false, ErrEmailNotVerified
	}

	plan, err := s.catalog.Lookup(planType)
	if err != nil {
		return models.Subscription{}, false, ErrInvalidPlan
	}
	if plan.IsTrial() && account.TrialUsed {
		return models.Subscription{}, false, ErrTrialAlreadyUsed
	}

	now := time.Now().UTC()
	sub := buildSubscription(plan, now)
	if err := s.repo.ReplaceSubscription(ctx, email, sub, plan.IsTrial()); err != nil {
		return models.Subscription{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return sub, !plan.IsTrial(), nil
}

// buildSubscription собирает подписку по плану каталога на момент now.
func buildSubscription(plan plans.Plan, now time.Time) models.Subscription {
	endDate := now.Add(plan.Duration())
	payment := &models.Payment{
		Amount:          plan.PriceMinorUnits,
		Method:          models.MethodCreditCard,
		NextPaymentDate: endDate,
	}
	status := models.StatusPending
	if plan.IsTrial() {
		status = models.StatusActive
		payment.Method = models.MethodTrial
		payment.LastPaymentDate = &now
	}
	return models.Subscription{
		Type:              plan.Type,
		Status:            status,
		MessageLimit:      plan.MessageLimit,
		RemainingMessages: plan.MessageLimit,
		CallSeconds:       plan.CallSeconds,
		StartDate:         now,
		EndDate:           endDate,
		Payment:           payment,
	}
}

// CreatePaymentIntent создаёт платёжное намерение у провайдера на цену плана
// из каталога и возвращает clientSecret для клиентской оплаты.
func (s *Service) CreatePaymentIntent(ctx context.Context, email string, planType models.SubscriptionType) (string, error) {
	email = NormalizeEmail(email)

	account, err := s.getAccount(ctx, email)
	if err != nil {
		return "", err
	}
	if !account.Verified() {
		return "", ErrEmailNotVerified
	}

	plan, err := s.catalog.Lookup(planType)
	if err != nil || plan.IsTrial() {
		return "", ErrInvalidPlan
	}

	intent, err := s.provider.CreateIntent(ctx, paymentprovider.CreateIntentRequest{
		Amount:   plan.PriceMinorUnits,
		Currency: s.opts.Currency,
		Metadata: map[string]string{
			"email":     email,
			"plan_type": string(plan.Type),
		},
	})
	if err != nil {
		s.log.Error("failed to create payment intent", sl.Err(err))
		return "", ErrUpstreamUnavailable
	}
	return intent.ClientSecret, nil
}

// ConfirmPayment проверяет платёжное намерение у провайдера и активирует
// платную подписку. Единственный путь активации платного плана.
//
// Квоты перечитываются из каталога, данные клиента не используются.
// Любой статус намерения, кроме succeeded, оставляет подписку в pending.
func (s *Service) ConfirmPayment(ctx context.Context, email, paymentIntentID string, planType models.SubscriptionType) (models.Subscription, error) {
	const op = "lifecycle.ConfirmPayment"
	email = NormalizeEmail(email)

	account, err := s.getAccount(ctx, email)
	if err != nil {
		return models.Subscription{}, err
	}
	if !account.Verified() {
		return models.Subscription{}, ErrEmailNotVerified
	}

	plan, err := s.catalog.Lookup(planType)
	if err != nil || plan.IsTrial() {
		return models.Subscription{}, ErrInvalidPlan
	}

	intent, err := s.provider.RetrieveIntent(ctx, paymentIntentID)
	if err != nil {
		s.log.Error("failed to retrieve payment intent", sl.Err(err))
		return models.Subscription{}, ErrUpstreamUnavailable
	}
	if !intent.Succeeded() {
		return models.Subscription{}, ErrPaymentNotCompleted
	}

	now := time.Now().UTC()
	endDate := now.Add(plan.Duration())
	sub := models.Subscription{
		Type:              plan.Type,
		Status:            models.StatusActive,
		MessageLimit:      plan.MessageLimit,
		RemainingMessages: plan.MessageLimit,
		CallSeconds:       plan.CallSeconds,
		StartDate:         now,
		EndDate:           endDate,
		Payment: &models.Payment{
			Amount:          plan.PriceMinorUnits,
			Method:          models.MethodCreditCard,
			LastPaymentDate: &now,
			NextPaymentDate: endDate,
		},
	}
	if err := s.repo.ReplaceSubscription(ctx, email, sub, false); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// Login проверяет пароль и возвращает сессионный JWT и роль.
//
// Отсутствующая учётная запись и неверный пароль дают одинаковую ошибку
// ErrInvalidCredentials. Проверка подтверждённого email включается опцией
// RequireVerifiedLogin и по умолчанию выключена.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, string, error) {
	const op = "lifecycle.Login"
	email = NormalizeEmail(email)

	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if !account.PasswordHash.IsSet() || !account.PasswordHash.Verify(rawPassword) {
		return "", "", ErrInvalidCredentials
	}
	if s.opts.RequireVerifiedLogin && !account.Verified() {
		return "", "", ErrEmailNotVerified
	}

	sessionToken, err := s.jwtMaker.GenerateToken(account.Email, account.Role, account.UID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return sessionToken, account.Role, nil
}

// GetProfile возвращает учётную запись по email.
func (s *Service) GetProfile(ctx context.Context, email string) (*models.Account, error) {
	return s.getAccount(ctx, NormalizeEmail(email))
}

// UpdateProfile применяет частичное обновление профиля подтверждённой учётки.
// Непустой newPassword хэшируется и заменяет текущий пароль, nil оставляет
// пароль без изменений.
func (s *Service) UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate, newPassword *string) (*models.Account, error) {
	const op = "lifecycle.UpdateProfile"
	email = NormalizeEmail(email)

	account, err := s.getAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	if !account.Verified() {
		return nil, ErrEmailNotVerified
	}

	if newPassword != nil {
		hash, err := password.New(*newPassword)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		upd.PasswordHash = &hash
	}

	updated, err := s.repo.UpdateProfile(ctx, email, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeleteAccount удаляет учётную запись по email (административная операция).
func (s *Service) DeleteAccount(ctx context.Context, email string) error {
	const op = "lifecycle.DeleteAccount"
	affected, err := s.repo.DeleteAccountByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) getAccount(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return account, nil
}
