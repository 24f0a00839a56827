package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxai/account-service/internal/models"
)

func TestLookupKnownPlans(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		planType     models.SubscriptionType
		messageLimit int
		callSeconds  int
		durationDays int
		price        int
	}{
		{models.SubscriptionTrial, 50, 300, 14, 0},
		{models.SubscriptionMonthly, 100, 1800, 30, 9900},
		{models.SubscriptionQuarterly, 300, 5400, 90, 25000},
		{models.SubscriptionYearly, 1200, 21600, 365, 89900},
	}

	for _, tt := range tests {
		t.Run(string(tt.planType), func(t *testing.T) {
			plan, err := catalog.Lookup(tt.planType)
			require.NoError(t, err)
			assert.Equal(t, tt.messageLimit, plan.MessageLimit)
			assert.Equal(t, tt.callSeconds, plan.CallSeconds)
			assert.Equal(t, tt.durationDays, plan.DurationDays)
			assert.Equal(t, tt.price, plan.PriceMinorUnits)
		})
	}
}

func TestLookupUnknownPlan(t *testing.T) {
	catalog := NewCatalog()

	_, err := catalog.Lookup("lifetime")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestIsTrial(t *testing.T) {
	catalog := NewCatalog()

	trial, err := catalog.Lookup(models.SubscriptionTrial)
	require.NoError(t, err)
	assert.True(t, trial.IsTrial())
	assert.Zero(t, trial.PriceMinorUnits)

	monthly, err := catalog.Lookup(models.SubscriptionMonthly)
	require.NoError(t, err)
	assert.False(t, monthly.IsTrial())
}

func TestDuration(t *testing.T) {
	catalog := NewCatalog()

	monthly, err := catalog.Lookup(models.SubscriptionMonthly)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, monthly.Duration())
}

func TestListOrderedByPrice(t *testing.T) {
	catalog := NewCatalog()

	list := catalog.List()
	require.Len(t, list, 4)
	for i := 1; i < len(list); i++ {
		assert.GreaterOrEqual(t, list[i].PriceMinorUnits, list[i-1].PriceMinorUnits)
	}
}
