package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taxai/account-service/internal/lib/password"
	"github.com/taxai/account-service/internal/models"
)

// accountColumns — единый список колонок учётной записи для SELECT-запросов.
const accountColumns = `uid, email, name, job_title, language, password_hash, role, stage,
			      verification_token, verification_expires_at, verification_sent_at, trial_used,
			      sub_type, sub_status, sub_message_limit, sub_remaining_messages, sub_call_seconds,
			      sub_start_date, sub_end_date,
			      pay_amount, pay_method, pay_last_payment_date, pay_next_payment_date,
			      created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var (
		language        sql.NullString
		passwordHash    string
		verifToken      sql.NullString
		verifExpiresAt  sql.NullTime
		verifSentAt     sql.NullTime
		payAmount       sql.NullInt64
		payMethod       sql.NullString
		payLastDate     sql.NullTime
		payNextDate     sql.NullTime
	)
	if err := row.Scan(&a.UID, &a.Email, &a.Name, &a.JobTitle, &language, &passwordHash,
		&a.Role, &a.Stage, &verifToken, &verifExpiresAt, &verifSentAt, &a.TrialUsed,
		&a.Subscription.Type, &a.Subscription.Status, &a.Subscription.MessageLimit,
		&a.Subscription.RemainingMessages, &a.Subscription.CallSeconds,
		&a.Subscription.StartDate, &a.Subscription.EndDate,
		&payAmount, &payMethod, &payLastDate, &payNextDate,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.PasswordHash = password.Hash(passwordHash)
	if language.Valid {
		a.Language = &language.String
	}
	if verifToken.Valid {
		a.VerificationToken = &verifToken.String
	}
	if verifExpiresAt.Valid {
		a.VerificationExpiresAt = &verifExpiresAt.Time
	}
	if verifSentAt.Valid {
		a.VerificationSentAt = &verifSentAt.Time
	}
	if payAmount.Valid {
		a.Subscription.Payment = &models.Payment{
			Amount:          int(payAmount.Int64),
			Method:          models.PaymentMethod(payMethod.String),
			NextPaymentDate: payNextDate.Time,
		}
		if payLastDate.Valid {
			a.Subscription.Payment.LastPaymentDate = &payLastDate.Time
		}
	}
	return a, nil
}

// GetAccountByEmail возвращает учётную запись по email или ErrAccountNotFound.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.GetAccountByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	account, err := scanAccount(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return account, nil
}

// VerifiedAccountExists сообщает, существует ли подтверждённая учётная запись
// с данным email. Placeholder-записи публичной проверкой занятости не считаются.
func (s *Storage) VerifiedAccountExists(ctx context.Context, email string) (bool, error) {
	const op = "storage.VerifiedAccountExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1 AND stage = $2)`
	if err := s.DB.QueryRowContext(ctx, query, email, models.StageVerified).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// FindOrCreatePlaceholder возвращает учётную запись по email, создавая при
// необходимости placeholder-запись с переданным uid. Вставка идемпотентна
// за счёт ON CONFLICT DO NOTHING по уникальному email.
func (s *Storage) FindOrCreatePlaceholder(ctx context.Context, uid, email string) (*models.Account, error) {
	const op = "storage.FindOrCreatePlaceholder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO accounts (uid, email, stage)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (email) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, uid, email, models.StagePlaceholder); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetAccountByEmail(ctx, email)
}

// SetVerificationToken перезаписывает токен верификации учётной записи.
// Предыдущий токен при этом перестаёт действовать.
func (s *Storage) SetVerificationToken(ctx context.Context, email, token string, expiresAt, sentAt time.Time) error {
	const op = "storage.SetVerificationToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET verification_token = $1, verification_expires_at = $2,
			      verification_sent_at = $3, updated_at = now()
			  WHERE email = $4`
	res, err := s.DB.ExecContext(ctx, query, token, expiresAt, sentAt, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}

// ConsumeVerificationToken атомарно подтверждает email: переводит запись в
// стадию verified и очищает поля токена одним условным UPDATE. Возвращает
// uid учётной записи и признак успеха. Ложный результат означает, что пара
// {email, токен} не совпала либо токен уже истёк.
func (s *Storage) ConsumeVerificationToken(ctx context.Context, email, tokenValue string, now time.Time) (string, bool, error) {
	const op = "storage.ConsumeVerificationToken"
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var uid string
	query := `UPDATE accounts
			  SET stage = $1, verification_token = NULL, verification_expires_at = NULL,
			      updated_at = now()
			  WHERE email = $2 AND verification_token = $3
			      AND stage = $4 AND verification_expires_at > $5
			  RETURNING uid`
	err := s.DB.QueryRowContext(ctx, query,
		models.StageVerified, email, tokenValue, models.StagePlaceholder, now).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return uid, true, nil
}

// ClearExpiredVerificationToken очищает совпавший, но истёкший токен, чтобы
// он не мог быть переиспользован. Возвращает true, если токен был очищен.
func (s *Storage) ClearExpiredVerificationToken(ctx context.Context, email, tokenValue string, now time.Time) (bool, error) {
	const op = "storage.ClearExpiredVerificationToken"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET verification_token = NULL, verification_expires_at = NULL, updated_at = now()
			  WHERE email = $1 AND verification_token = $2 AND verification_expires_at <= $3`
	res, err := s.DB.ExecContext(ctx, query, email, tokenValue, now)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// CompleteProfile записывает имя, должность и хэш пароля учётной записи.
func (s *Storage) CompleteProfile(ctx context.Context, email, name, jobTitle string, hash password.Hash) error {
	const op = "storage.CompleteProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET name = $1, job_title = $2, password_hash = $3, updated_at = now()
			  WHERE email = $4`
	res, err := s.DB.ExecContext(ctx, query, name, jobTitle, string(hash), email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}

// UpdateProfile применяет частичное обновление профиля и возвращает
// обновлённую учётную запись.
func (s *Storage) UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (*models.Account, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET name = COALESCE($1, name),
			      job_title = COALESCE($2, job_title),
			      language = COALESCE($3, language),
			      password_hash = COALESCE($4, password_hash),
			      updated_at = now()
			  WHERE email = $5
			  RETURNING ` + accountColumns
	account, err := scanAccount(s.DB.QueryRowContext(ctx, query,
		upd.Name, upd.JobTitle, upd.Language, (*string)(upd.PasswordHash), email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return account, nil
}

// ReplaceSubscription целиком заменяет подписку учётной записи одним UPDATE.
// markTrialUsed взводит одностороннюю защёлку trial_used, сбросить её нельзя.
func (s *Storage) ReplaceSubscription(ctx context.Context, email string, sub models.Subscription, markTrialUsed bool) error {
	const op = "storage.ReplaceSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		payAmount   sql.NullInt64
		payMethod   sql.NullString
		payLastDate sql.NullTime
		payNextDate sql.NullTime
	)
	if sub.Payment != nil {
		payAmount = sql.NullInt64{Int64: int64(sub.Payment.Amount), Valid: true}
		payMethod = sql.NullString{String: string(sub.Payment.Method), Valid: true}
		payNextDate = sql.NullTime{Time: sub.Payment.NextPaymentDate, Valid: true}
		if sub.Payment.LastPaymentDate != nil {
			payLastDate = sql.NullTime{Time: *sub.Payment.LastPaymentDate, Valid: true}
		}
	}

	query := `UPDATE accounts
			  SET sub_type = $1, sub_status = $2, sub_message_limit = $3,
			      sub_remaining_messages = $4, sub_call_seconds = $5,
			      sub_start_date = $6, sub_end_date = $7,
			      pay_amount = $8, pay_method = $9,
			      pay_last_payment_date = $10, pay_next_payment_date = $11,
			      trial_used = trial_used OR $12,
			      updated_at = now()
			  WHERE email = $13`
	res, err := s.DB.ExecContext(ctx, query,
		sub.Type, sub.Status, sub.MessageLimit, sub.RemainingMessages, sub.CallSeconds,
		sub.StartDate, sub.EndDate,
		payAmount, payMethod, payLastDate, payNextDate,
		markTrialUsed, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}

// DecrementRemainingMessages атомарно списывает одно сообщение из квоты.
// Условие sub_remaining_messages > 0 входит в сам UPDATE, поэтому при
// конкурентных вызовах квота не уходит ниже нуля и обновления не теряются.
// Возвращает остаток после списания и признак успеха.
func (s *Storage) DecrementRemainingMessages(ctx context.Context, email string) (int, bool, error) {
	const op = "storage.DecrementRemainingMessages"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var remaining int
	query := `UPDATE accounts
			  SET sub_remaining_messages = sub_remaining_messages - 1, updated_at = now()
			  WHERE email = $1 AND sub_remaining_messages > 0
			  RETURNING sub_remaining_messages`
	err := s.DB.QueryRowContext(ctx, query, email).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return remaining, true, nil
}

// MarkExpiredSubscriptions переводит просроченные подписки в статус expired.
// Возвращает количество обновлённых записей.
func (s *Storage) MarkExpiredSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.MarkExpiredSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET sub_status = $1, updated_at = now()
			  WHERE sub_status IN ($2, $3) AND sub_end_date < $4 AND sub_message_limit > 0`
	res, err := s.DB.ExecContext(ctx, query, models.StatusExpired, models.StatusPending, models.StatusActive, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// DeleteStalePlaceholders удаляет placeholder-записи, созданные до cutoff
// и так и не подтвердившие email. Возвращает количество удалённых записей.
func (s *Storage) DeleteStalePlaceholders(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "storage.DeleteStalePlaceholders"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM accounts WHERE stage = $1 AND created_at < $2`
	res, err := s.DB.ExecContext(ctx, query, models.StagePlaceholder, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// DeleteAccountByEmail удаляет учётную запись по email (административная
// операция). Возвращает количество удалённых записей.
func (s *Storage) DeleteAccountByEmail(ctx context.Context, email string) (int64, error) {
	const op = "storage.DeleteAccountByEmail"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM accounts WHERE email = $1`, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// FindSubscriptionsExpiringTomorrow возвращает активные подписки,
// заканчивающиеся в ближайшие сутки после завтрашнего начала дня.
func (s *Storage) FindSubscriptionsExpiringTomorrow(ctx context.Context, now time.Time) ([]*models.ExpiryNotice, error) {
	const op = "storage.FindSubscriptionsExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	from := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	to := from.Add(24 * time.Hour)
	query := `SELECT email, name, sub_type, sub_end_date
			  FROM accounts
			  WHERE stage = $1 AND sub_status = $2 AND sub_end_date >= $3 AND sub_end_date < $4`
	rows, err := s.DB.QueryContext(ctx, query, models.StageVerified, models.StatusActive, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.ExpiryNotice
	for rows.Next() {
		var item models.ExpiryNotice
		if err := rows.Scan(&item.Email, &item.Name, &item.SubType, &item.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
