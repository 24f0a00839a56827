package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taxai/account-service/internal/lib/jwt"
	"github.com/taxai/account-service/internal/lib/password"
	"github.com/taxai/account-service/internal/models"
	"github.com/taxai/account-service/internal/paymentprovider"
	"github.com/taxai/account-service/internal/plans"
	"github.com/taxai/account-service/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *RepoMock) VerifiedAccountExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) FindOrCreatePlaceholder(ctx context.Context, uid, email string) (*models.Account, error) {
	args := m.Called(ctx, uid, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *RepoMock) SetVerificationToken(ctx context.Context, email, token string, expiresAt, sentAt time.Time) error {
	return m.Called(ctx, email, token, expiresAt, sentAt).Error(0)
}

func (m *RepoMock) ConsumeVerificationToken(ctx context.Context, email, token string, now time.Time) (string, bool, error) {
	args := m.Called(ctx, email, token, now)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *RepoMock) ClearExpiredVerificationToken(ctx context.Context, email, token string, now time.Time) (bool, error) {
	args := m.Called(ctx, email, token, now)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) CompleteProfile(ctx context.Context, email, name, jobTitle string, hash password.Hash) error {
	return m.Called(ctx, email, name, jobTitle, hash).Error(0)
}

func (m *RepoMock) UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (*models.Account, error) {
	args := m.Called(ctx, email, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *RepoMock) ReplaceSubscription(ctx context.Context, email string, sub models.Subscription, markTrialUsed bool) error {
	return m.Called(ctx, email, sub, markTrialUsed).Error(0)
}

func (m *RepoMock) DeleteAccountByEmail(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

type TokenIssuerMock struct{ mock.Mock }

func (m *TokenIssuerMock) Issue() (string, time.Time, error) {
	args := m.Called()
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type EmailSenderMock struct{ mock.Mock }

func (m *EmailSenderMock) SendVerification(email, verificationURL string) error {
	return m.Called(email, verificationURL).Error(0)
}

func (m *EmailSenderMock) SendWelcome(email, name string) error {
	return m.Called(email, name).Error(0)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateIntent(ctx context.Context, req paymentprovider.CreateIntentRequest) (*paymentprovider.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Intent), args.Error(1)
}

func (m *ProviderMock) RetrieveIntent(ctx context.Context, id string) (*paymentprovider.Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Intent), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type serviceMocks struct {
	repo     *RepoMock
	tokens   *TokenIssuerMock
	emails   *EmailSenderMock
	provider *ProviderMock
}

func newTestService(opts Options) (*Service, *serviceMocks) {
	m := &serviceMocks{
		repo:     &RepoMock{},
		tokens:   &TokenIssuerMock{},
		emails:   &EmailSenderMock{},
		provider: &ProviderMock{},
	}
	jwtMaker := jwt.NewMaker("test-secret", time.Hour)
	svc := New(m.repo, m.tokens, m.emails, m.provider, jwtMaker, plans.NewCatalog(), opts, newNoopLogger())
	return svc, m
}

func verifiedAccount(email string) *models.Account {
	return &models.Account{
		UID:   "uid-123",
		Email: email,
		Name:  "Test User",
		Role:  "user",
		Stage: models.StageVerified,
	}
}

func placeholderAccount(email string) *models.Account {
	return &models.Account{
		UID:   "uid-123",
		Email: email,
		Role:  "user",
		Stage: models.StagePlaceholder,
	}
}

func TestRequestEmailVerification(t *testing.T) {
	const email = "user@example.com"

	t.Run("success for new email", func(t *testing.T) {
		svc, m := newTestService(Options{PublicBaseURL: "https://app.example.com"})
		expiresAt := time.Now().Add(24 * time.Hour)

		m.repo.On("VerifiedAccountExists", mock.Anything, email).Return(false, nil).Once()
		m.repo.On("FindOrCreatePlaceholder", mock.Anything, mock.Anything, email).
			Return(placeholderAccount(email), nil).Once()
		m.tokens.On("Issue").Return("deadbeef", expiresAt, nil).Once()
		m.repo.On("SetVerificationToken", mock.Anything, email, "deadbeef", expiresAt, mock.Anything).
			Return(nil).Once()
		m.emails.On("SendVerification", email, mock.MatchedBy(func(u string) bool {
			return strings.Contains(u, "https://app.example.com/verify-email?token=deadbeef")
		})).Return(nil).Once()

		err := svc.RequestEmailVerification(context.Background(), "  USER@example.com ")
		require.NoError(t, err)
		m.repo.AssertExpectations(t)
		m.emails.AssertExpectations(t)
	})

	t.Run("email taken by verified account", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("VerifiedAccountExists", mock.Anything, email).Return(true, nil).Once()

		err := svc.RequestEmailVerification(context.Background(), email)
		assert.ErrorIs(t, err, ErrEmailTaken)
		m.repo.AssertNotCalled(t, "FindOrCreatePlaceholder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cooldown active", func(t *testing.T) {
		svc, m := newTestService(Options{})
		sentAt := time.Now().UTC().Add(-20 * time.Second)
		account := placeholderAccount(email)
		account.VerificationSentAt = &sentAt

		m.repo.On("VerifiedAccountExists", mock.Anything, email).Return(false, nil).Once()
		m.repo.On("FindOrCreatePlaceholder", mock.Anything, mock.Anything, email).Return(account, nil).Once()

		err := svc.RequestEmailVerification(context.Background(), email)
		require.ErrorIs(t, err, ErrCooldownActive)

		var cooldownErr *CooldownError
		require.ErrorAs(t, err, &cooldownErr)
		assert.Greater(t, cooldownErr.RemainingSeconds, 0)
		assert.LessOrEqual(t, cooldownErr.RemainingSeconds, 60)
		m.repo.AssertNotCalled(t, "SetVerificationToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cooldown elapsed allows resend", func(t *testing.T) {
		svc, m := newTestService(Options{})
		sentAt := time.Now().UTC().Add(-2 * time.Minute)
		account := placeholderAccount(email)
		account.VerificationSentAt = &sentAt
		expiresAt := time.Now().Add(24 * time.Hour)

		m.repo.On("VerifiedAccountExists", mock.Anything, email).Return(false, nil).Once()
		m.repo.On("FindOrCreatePlaceholder", mock.Anything, mock.Anything, email).Return(account, nil).Once()
		m.tokens.On("Issue").Return("cafebabe", expiresAt, nil).Once()
		m.repo.On("SetVerificationToken", mock.Anything, email, "cafebabe", expiresAt, mock.Anything).Return(nil).Once()
		m.emails.On("SendVerification", email, mock.Anything).Return(nil).Once()

		err := svc.RequestEmailVerification(context.Background(), email)
		require.NoError(t, err)
		m.repo.AssertExpectations(t)
	})

	t.Run("smtp failure keeps token", func(t *testing.T) {
		svc, m := newTestService(Options{})
		expiresAt := time.Now().Add(24 * time.Hour)

		m.repo.On("VerifiedAccountExists", mock.Anything, email).Return(false, nil).Once()
		m.repo.On("FindOrCreatePlaceholder", mock.Anything, mock.Anything, email).
			Return(placeholderAccount(email), nil).Once()
		m.tokens.On("Issue").Return("deadbeef", expiresAt, nil).Once()
		m.repo.On("SetVerificationToken", mock.Anything, email, "deadbeef", expiresAt, mock.Anything).Return(nil).Once()
		m.emails.On("SendVerification", email, mock.Anything).Return(errors.New("smtp down")).Once()

		err := svc.RequestEmailVerification(context.Background(), email)
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		// Токен записан до попытки отправки и остаётся действительным.
		m.repo.AssertExpectations(t)
	})
}

func TestConfirmEmailVerification(t *testing.T) {
	const email = "user@example.com"

	t.Run("success returns session token", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("ConsumeVerificationToken", mock.Anything, email, "deadbeef", mock.Anything).
			Return("uid-123", true, nil).Once()

		sessionToken, err := svc.ConfirmEmailVerification(context.Background(), email, "deadbeef")
		require.NoError(t, err)

		claims, err := jwt.NewMaker("test-secret", time.Hour).ParseToken(sessionToken)
		require.NoError(t, err)
		assert.Equal(t, email, claims.Email)
		assert.Equal(t, "uid-123", claims.AccountUID)
	})

	t.Run("expired token", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("ConsumeVerificationToken", mock.Anything, email, "deadbeef", mock.Anything).
			Return("", false, nil).Once()
		m.repo.On("ClearExpiredVerificationToken", mock.Anything, email, "deadbeef", mock.Anything).
			Return(true, nil).Once()

		_, err := svc.ConfirmEmailVerification(context.Background(), email, "deadbeef")
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("ConsumeVerificationToken", mock.Anything, email, "wrong", mock.Anything).
			Return("", false, nil).Once()
		m.repo.On("ClearExpiredVerificationToken", mock.Anything, email, "wrong", mock.Anything).
			Return(false, nil).Once()

		_, err := svc.ConfirmEmailVerification(context.Background(), email, "wrong")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token is single use", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("ConsumeVerificationToken", mock.Anything, email, "deadbeef", mock.Anything).
			Return("uid-123", true, nil).Once()
		m.repo.On("ConsumeVerificationToken", mock.Anything, email, "deadbeef", mock.Anything).
			Return("", false, nil).Once()
		m.repo.On("ClearExpiredVerificationToken", mock.Anything, email, "deadbeef", mock.Anything).
			Return(false, nil).Once()

		_, err := svc.ConfirmEmailVerification(context.Background(), email, "deadbeef")
		require.NoError(t, err)

		_, err = svc.ConfirmEmailVerification(context.Background(), email, "deadbeef")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestCompleteProfile(t *testing.T) {
	const email = "user@example.com"

	t.Run("success hashes password once", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.repo.On("CompleteProfile", mock.Anything, email, "Анна", "Бухгалтер",
			mock.MatchedBy(func(h password.Hash) bool {
				return h.Verify("secret-password")
			})).Return(nil).Once()
		m.emails.On("SendWelcome", email, "Анна").Return(nil).Once()

		err := svc.CompleteProfile(context.Background(), email, "Анна", "Бухгалтер", "secret-password")
		require.NoError(t, err)
		m.repo.AssertExpectations(t)
	})

	t.Run("rejected for placeholder", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(placeholderAccount(email), nil).Once()

		err := svc.CompleteProfile(context.Background(), email, "Анна", "", "secret-password")
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("welcome email failure does not fail operation", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.repo.On("CompleteProfile", mock.Anything, email, "Анна", "", mock.Anything).Return(nil).Once()
		m.emails.On("SendWelcome", email, "Анна").Return(errors.New("smtp down")).Once()

		err := svc.CompleteProfile(context.Background(), email, "Анна", "", "secret-password")
		assert.NoError(t, err)
	})
}

func TestSelectPlan(t *testing.T) {
	const email = "user@example.com"

	t.Run("trial activates immediately", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.repo.On("ReplaceSubscription", mock.Anything, email,
			mock.MatchedBy(func(sub models.Subscription) bool {
				return sub.Status == models.StatusActive &&
					sub.Payment != nil &&
					sub.Payment.Method == models.MethodTrial &&
					sub.Payment.LastPaymentDate != nil &&
					sub.RemainingMessages == 50
			}), true).Return(nil).Once()

		sub, requiresPayment, err := svc.SelectPlan(context.Background(), email, models.SubscriptionTrial)
		require.NoError(t, err)
		assert.False(t, requiresPayment)
		assert.Equal(t, models.StatusActive, sub.Status)
		assert.Equal(t, sub.StartDate.Add(14*24*time.Hour), sub.EndDate)
	})

	t.Run("trial latch is checked", func(t *testing.T) {
		svc, m := newTestService(Options{})
		account := verifiedAccount(email)
		account.TrialUsed = true
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(account, nil).Once()

		_, _, err := svc.SelectPlan(context.Background(), email, models.SubscriptionTrial)
		assert.ErrorIs(t, err, ErrTrialAlreadyUsed)
		m.repo.AssertNotCalled(t, "ReplaceSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paid plan stays pending", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.repo.On("ReplaceSubscription", mock.Anything, email,
			mock.MatchedBy(func(sub models.Subscription) bool {
				return sub.Status == models.StatusPending &&
					sub.Payment != nil &&
					sub.Payment.Method == models.MethodCreditCard &&
					sub.Payment.LastPaymentDate == nil
			}), false).Return(nil).Once()

		sub, requiresPayment, err := svc.SelectPlan(context.Background(), email, models.SubscriptionMonthly)
		require.NoError(t, err)
		assert.True(t, requiresPayment)
		assert.Equal(t, models.StatusPending, sub.Status)
	})

	t.Run("paid plan can be reselected after trial", func(t *testing.T) {
		// Защёлка trial_used не мешает платным планам.
		svc, m := newTestService(Options{})
		account := verifiedAccount(email)
		account.TrialUsed = true
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(account, nil).Once()
		m.repo.On("ReplaceSubscription", mock.Anything, email, mock.Anything, false).Return(nil).Once()

		_, requiresPayment, err := svc.SelectPlan(context.Background(), email, models.SubscriptionYearly)
		require.NoError(t, err)
		assert.True(t, requiresPayment)
	})

	t.Run("unknown plan", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()

		_, _, err := svc.SelectPlan(context.Background(), email, "lifetime")
		assert.ErrorIs(t, err, ErrInvalidPlan)
	})

	t.Run("unverified account", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(placeholderAccount(email), nil).Once()

		_, _, err := svc.SelectPlan(context.Background(), email, models.SubscriptionMonthly)
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})
}

func TestCreatePaymentIntent(t *testing.T) {
	const email = "user@example.com"

	t.Run("success", func(t *testing.T) {
		svc, m := newTestService(Options{Currency: "usd"})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.provider.On("CreateIntent", mock.Anything, mock.MatchedBy(func(req paymentprovider.CreateIntentRequest) bool {
			return req.Amount == 9900 && req.Currency == "usd" && req.Metadata["plan_type"] == "monthly"
		})).Return(&paymentprovider.Intent{
			ID:           "pi_123",
			ClientSecret: "pi_123_secret",
			Status:       "requires_payment_method",
		}, nil).Once()

		secret, err := svc.CreatePaymentIntent(context.Background(), email, models.SubscriptionMonthly)
		require.NoError(t, err)
		assert.Equal(t, "pi_123_secret", secret)
	})

	t.Run("trial is not payable", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()

		_, err := svc.CreatePaymentIntent(context.Background(), email, models.SubscriptionTrial)
		assert.ErrorIs(t, err, ErrInvalidPlan)
		m.provider.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
	})

	t.Run("provider failure", func(t *testing.T) {
		svc, m := newTestService(Options{Currency: "usd"})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.provider.On("CreateIntent", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused")).Once()

		_, err := svc.CreatePaymentIntent(context.Background(), email, models.SubscriptionMonthly)
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})
}

func TestConfirmPayment(t *testing.T) {
	const email = "user@example.com"

	t.Run("succeeded intent activates subscription", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.provider.On("RetrieveIntent", mock.Anything, "pi_123").
			Return(&paymentprovider.Intent{ID: "pi_123", Status: "succeeded"}, nil).Once()
		m.repo.On("ReplaceSubscription", mock.Anything, email,
			mock.MatchedBy(func(sub models.Subscription) bool {
				return sub.Status == models.StatusActive &&
					sub.Payment != nil &&
					sub.Payment.LastPaymentDate != nil &&
					sub.Payment.Amount == 9900
			}), false).Return(nil).Once()

		sub, err := svc.ConfirmPayment(context.Background(), email, "pi_123", models.SubscriptionMonthly)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, sub.Status)
	})

	t.Run("unfinished intent leaves subscription pending", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.provider.On("RetrieveIntent", mock.Anything, "pi_123").
			Return(&paymentprovider.Intent{ID: "pi_123", Status: "processing"}, nil).Once()

		_, err := svc.ConfirmPayment(context.Background(), email, "pi_123", models.SubscriptionMonthly)
		assert.ErrorIs(t, err, ErrPaymentNotCompleted)
		m.repo.AssertNotCalled(t, "ReplaceSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider failure", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.provider.On("RetrieveIntent", mock.Anything, "pi_123").
			Return(nil, errors.New("timeout")).Once()

		_, err := svc.ConfirmPayment(context.Background(), email, "pi_123", models.SubscriptionMonthly)
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})
}

func TestLogin(t *testing.T) {
	const email = "user@example.com"

	accountWithPassword := func(raw string, stage models.AccountStage) *models.Account {
		hash, err := password.New(raw)
		if err != nil {
			panic(err)
		}
		account := verifiedAccount(email)
		account.Stage = stage
		account.PasswordHash = hash
		return account
	}

	t.Run("success", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).
			Return(accountWithPassword("secret-password", models.StageVerified), nil).Once()

		token, role, err := svc.Login(context.Background(), email, "secret-password")
		require.NoError(t, err)
		assert.Equal(t, "user", role)
		assert.NotEmpty(t, token)
	})

	t.Run("missing account and wrong password are indistinguishable", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, "missing@example.com").
			Return(nil, repository.ErrAccountNotFound).Once()
		m.repo.On("GetAccountByEmail", mock.Anything, email).
			Return(accountWithPassword("secret-password", models.StageVerified), nil).Once()

		_, _, errMissing := svc.Login(context.Background(), "missing@example.com", "whatever")
		_, _, errWrongPass := svc.Login(context.Background(), email, "wrong-password")

		assert.ErrorIs(t, errMissing, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
		assert.Equal(t, errMissing.Error(), errWrongPass.Error())
	})

	t.Run("placeholder without password", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(placeholderAccount(email), nil).Once()

		_, _, err := svc.Login(context.Background(), email, "anything")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("require verified login policy", func(t *testing.T) {
		svc, m := newTestService(Options{RequireVerifiedLogin: true})
		m.repo.On("GetAccountByEmail", mock.Anything, email).
			Return(accountWithPassword("secret-password", models.StagePlaceholder), nil).Once()

		_, _, err := svc.Login(context.Background(), email, "secret-password")
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})
}

func TestDeleteAccount(t *testing.T) {
	const email = "user@example.com"

	t.Run("success", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("DeleteAccountByEmail", mock.Anything, email).Return(int64(1), nil).Once()

		assert.NoError(t, svc.DeleteAccount(context.Background(), email))
	})

	t.Run("missing account", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("DeleteAccountByEmail", mock.Anything, email).Return(int64(0), nil).Once()

		assert.ErrorIs(t, svc.DeleteAccount(context.Background(), email), ErrNotFound)
	})
}

func TestUpdateProfile(t *testing.T) {
	const email = "user@example.com"

	t.Run("password change is rehashed through the vault", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.repo.On("UpdateProfile", mock.Anything, email, mock.MatchedBy(func(upd models.ProfileUpdate) bool {
			return upd.PasswordHash != nil && upd.PasswordHash.Verify("new-secret-password")
		})).Return(verifiedAccount(email), nil).Once()

		newPassword := "new-secret-password"
		_, err := svc.UpdateProfile(context.Background(), email, models.ProfileUpdate{}, &newPassword)
		require.NoError(t, err)
		m.repo.AssertExpectations(t)
	})

	t.Run("nil password leaves hash untouched", func(t *testing.T) {
		svc, m := newTestService(Options{})
		name := "Новое имя"
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(verifiedAccount(email), nil).Once()
		m.repo.On("UpdateProfile", mock.Anything, email, mock.MatchedBy(func(upd models.ProfileUpdate) bool {
			return upd.PasswordHash == nil && upd.Name != nil && *upd.Name == name
		})).Return(verifiedAccount(email), nil).Once()

		_, err := svc.UpdateProfile(context.Background(), email, models.ProfileUpdate{Name: &name}, nil)
		require.NoError(t, err)
	})

	t.Run("unverified account is rejected", func(t *testing.T) {
		svc, m := newTestService(Options{})
		m.repo.On("GetAccountByEmail", mock.Anything, email).Return(placeholderAccount(email), nil).Once()

		_, err := svc.UpdateProfile(context.Background(), email, models.ProfileUpdate{}, nil)
		assert.ErrorIs(t, err, ErrEmailNotVerified)
		m.repo.AssertNotCalled(t, "UpdateProfile")
	})
}
