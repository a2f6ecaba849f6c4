package domain

import "time"

// Channel identifies the origin of a transaction.
type Channel string

// Supported transaction channels.
const (
	ChannelWeb    Channel = "Web"
	ChannelMobile Channel = "Mobile"
	ChannelPOS    Channel = "POS"
	ChannelATM    Channel = "ATM"
)

// Channels lists every supported channel in a stable order.
func Channels() []Channel {
	return []Channel{ChannelWeb, ChannelMobile, ChannelPOS, ChannelATM}
}

// TransactionRequest is a synthetic transaction produced by the generator.
// It is created once and immutable thereafter.
type TransactionRequest struct {
	ID             string
	CustomerID     string
	Amount         float64
	AccountAgeDays int
	Channel        Channel
	KYCVerified    string // "Yes" or "No"
	Hour           int
	Timestamp      time.Time
}
