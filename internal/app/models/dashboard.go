package models

import "time"

// Profile is the caller's account as returned by the marketplace
type Profile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	RoleType  RoleType  `json:"roleType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Wallet is the caller's balance
type Wallet struct {
	Balance        float64 `json:"balance"`
	PendingBalance float64 `json:"pendingBalance"`
	Currency       string  `json:"currency"`
}

// TransactionType is the direction of a wallet transaction
type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// Transaction is one wallet transaction
type Transaction struct {
	ID          int64           `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Dashboard aggregates the profile page
type Dashboard struct {
	Profile      Profile           `json:"profile"`
	Wallet       Wallet            `json:"wallet"`
	Transactions Page[Transaction] `json:"transactions"`
}
