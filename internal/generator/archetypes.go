package generator

import "github.com/kavya/transintelliflow/backend/internal/domain"

// archetype describes one red-flag fraud pattern. Field ranges are inclusive;
// an item drawn from an archetype samples uniformly within them.
type archetype struct {
	name          string
	minAccountAge int
	maxAccountAge int
	minAmount     float64
	maxAmount     float64
	channels      []domain.Channel
	hours         []int
}

// fraudArchetypes is the fixed catalogue of red-flag patterns. Every archetype
// forces KYCVerified to "No" and restricts hours to a late-night window.
func fraudArchetypes() []archetype {
	return []archetype{
		{
			name:          "high_value_new_account",
			minAccountAge: 1,
			maxAccountAge: 29,
			minAmount:     10000,
			maxAmount:     60000,
			channels:      []domain.Channel{domain.ChannelWeb, domain.ChannelMobile},
			hours:         []int{0, 1, 2, 3, 4, 5},
		},
		{
			name:          "unverified_kyc_high_amount",
			minAccountAge: 30,
			maxAccountAge: 180,
			minAmount:     5000,
			maxAmount:     30000,
			channels:      []domain.Channel{domain.ChannelWeb, domain.ChannelMobile},
			hours:         []int{22, 23, 0, 1, 2, 3},
		},
		{
			name:          "unusual_hour_burst",
			minAccountAge: 10,
			maxAccountAge: 120,
			minAmount:     3000,
			maxAmount:     15000,
			channels:      []domain.Channel{domain.ChannelWeb, domain.ChannelMobile, domain.ChannelPOS},
			hours:         []int{0, 1, 2, 3, 4, 5},
		},
		{
			name:          "extreme_fraud_pattern",
			minAccountAge: 1,
			maxAccountAge: 5,
			minAmount:     70000,
			maxAmount:     95000,
			channels:      []domain.Channel{domain.ChannelWeb, domain.ChannelMobile},
			hours:         []int{0, 1, 2, 3, 4},
		},
		{
			name:          "high_cash_withdrawal",
			minAccountAge: 15,
			maxAccountAge: 90,
			minAmount:     20000,
			maxAmount:     60000,
			channels:      []domain.Channel{domain.ChannelATM, domain.ChannelPOS},
			hours:         []int{22, 23, 0, 1, 2, 3, 4, 5},
		},
	}
}

// Legitimate item ranges: an established account, a modest amount, any
// channel, verified KYC and a business-hours timestamp.
const (
	legitMinAccountAge = 180
	legitMaxAccountAge = 2400
	legitMinAmount     = 100
	legitMaxAmount     = 5000
	legitMinHour       = 9
	legitMaxHour       = 17
)
