package domain

import (
	"fmt"
	"time"
)

// AccountType classifies an account in the chart of accounts and derives
// its normal balance side.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// BalanceSide is the debit/credit direction that increases an account
// type's balance.
type BalanceSide string

const (
	BalanceSideDebit  BalanceSide = "debit"
	BalanceSideCredit BalanceSide = "credit"
)

// ParseAccountType validates a raw account type string.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeRevenue, AccountTypeExpense:
		return AccountType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAccountType, s)
	}
}

// NormalBalanceSide returns the side that increases this account type.
// Assets and expenses are debit-normal; liabilities and revenue are
// credit-normal.
func (t AccountType) NormalBalanceSide() BalanceSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return BalanceSideDebit
	default:
		return BalanceSideCredit
	}
}

// AllowsNegativeBalance reports whether this account type's stored balance
// may go below zero. Only asset accounts (customer wallets, cash) are
// forbidden from overdrawing.
func (t AccountType) AllowsNegativeBalance() bool {
	return t != AccountTypeAsset
}

// Account is one row of account_balances: the single mutable shared
// resource in the ledger. Only the posting engine, under an exclusive row
// lock, may change Balance.
type Account struct {
	ID        string
	TenantID  string
	Name      string
	Type      AccountType
	Currency  string
	Balance   int64 // minor units, signed per normal-balance convention
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks that debiting amount minor units would not take the
// account below zero where that is forbidden.
func (a *Account) ValidateDebit(amount int64) error {
	if a.Type.AllowsNegativeBalance() {
		return nil
	}

	if a.Balance-amount < 0 {
		return fmt.Errorf("%w: account %s balance %d, debit %d", ErrInsufficientFunds, a.ID, a.Balance, amount)
	}

	return nil
}

// ApplyEntry returns the balance after a signed entry delta: credits
// increase the stored balance, debits decrease it.
func (a *Account) ApplyEntry(direction Direction, amount int64) int64 {
	if direction == DirectionCredit {
		return a.Balance + amount
	}
	return a.Balance - amount
}

// BalanceMoney returns the stored balance as a Money value.
func (a *Account) BalanceMoney() Money {
	return NewMoney(a.Balance, a.Currency)
}
