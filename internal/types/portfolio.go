package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

type TransactionKind string

const (
	TransactionKindBuy  TransactionKind = "BUY"
	TransactionKindSell TransactionKind = "SELL"
)

// Transaction is one entry in the portfolio's transaction log.
type Transaction struct {
	ID       string          `yaml:"id" json:"id" validate:"required,uuid"`
	Kind     TransactionKind `yaml:"kind" json:"kind" validate:"required,oneof=BUY SELL"`
	Symbol   string          `yaml:"symbol" json:"symbol" validate:"required"`
	Quantity int64           `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	Time     time.Time       `yaml:"time" json:"time" validate:"required"`
	Price    decimal.Decimal `yaml:"price" json:"price"`
}

// Validate validates the Transaction struct.
func (t *Transaction) Validate() error {
	validate := validator.New()
	if err := validate.Struct(t); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid transaction", err)
	}

	return nil
}

// Portfolio is the trading state of a single trial: cash, signed share
// positions, and the ordered transaction log. A Portfolio value is owned by
// exactly one trial; ledger operations never mutate it in place, they return
// a new value, so a rejected order leaves the input untouched.
type Portfolio struct {
	Cash         decimal.Decimal   `yaml:"cash" json:"cash"`
	Positions    map[string]int64  `yaml:"positions" json:"positions"`
	Transactions []Transaction     `yaml:"transactions" json:"transactions"`
}

// NewPortfolio creates an empty portfolio holding the given cash.
func NewPortfolio(cash decimal.Decimal) Portfolio {
	return Portfolio{
		Cash:         cash,
		Positions:    map[string]int64{},
		Transactions: nil,
	}
}

// Position returns the signed share count held for symbol, zero if none.
func (p Portfolio) Position(symbol string) int64 {
	return p.Positions[symbol]
}

// Clone returns a deep copy. The positions map and transaction slice are
// copied so the result shares no mutable state with the receiver.
func (p Portfolio) Clone() Portfolio {
	positions := make(map[string]int64, len(p.Positions))
	for symbol, quantity := range p.Positions {
		positions[symbol] = quantity
	}

	transactions := make([]Transaction, len(p.Transactions))
	copy(transactions, p.Transactions)

	return Portfolio{
		Cash:         p.Cash,
		Positions:    positions,
		Transactions: transactions,
	}
}

// Apply returns a new portfolio with the transaction applied: cash moved by
// cashDelta, the position adjusted, and the transaction appended, as one
// atomic update.
func (p Portfolio) Apply(tx Transaction, cashDelta decimal.Decimal) Portfolio {
	next := p.Clone()
	next.Cash = next.Cash.Add(cashDelta)

	switch tx.Kind {
	case TransactionKindBuy:
		next.Positions[tx.Symbol] += tx.Quantity
	case TransactionKindSell:
		next.Positions[tx.Symbol] -= tx.Quantity
	}

	if next.Positions[tx.Symbol] == 0 {
		delete(next.Positions, tx.Symbol)
	}

	next.Transactions = append(next.Transactions, tx)

	return next
}
