// Package ledger implements portfolio accounting for simulated trades: buy
// and sell operations with a flat commission and full-fill semantics, and
// portfolio valuation against a price source.
//
// All operations are pure: they take a portfolio value and return a new one,
// never mutating the input. An order rejected by affordability or holdings
// constraints is a routine simulation outcome, not an error: the operation
// returns the input portfolio unchanged with a nil error. A missing quote is
// an error: it signals a data-window bug upstream, never a zero valuation.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-montecarlo/internal/types"
	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// QuoteSource answers floor lookups against an instrument's price history.
// *pricehistory.Store satisfies it.
type QuoteSource interface {
	MostRecentQuote(symbol string, t time.Time) optional.Option[types.QuoteRecord]
}

// fillPrice returns the close of the most recent quote at or before t.
func fillPrice(source QuoteSource, symbol string, t time.Time) (decimal.Decimal, error) {
	quote := source.MostRecentQuote(symbol, t)
	if quote.IsNone() {
		return decimal.Zero, errors.Newf(errors.ErrCodeNoQuote, "no quote at or before %v for %s", t, symbol)
	}

	return decimal.NewFromFloat(quote.Unwrap().Close), nil
}

// BuyMaxAffordable buys floor((cash - commission) / price) shares of symbol
// at the current fill price. When that count is zero or negative the order
// is a no-op and the input portfolio is returned unchanged.
func BuyMaxAffordable(portfolio types.Portfolio, commission decimal.Decimal, symbol string, t time.Time, source QuoteSource) (types.Portfolio, error) {
	price, err := fillPrice(source, symbol, t)
	if err != nil {
		return portfolio, err
	}

	available := portfolio.Cash.Sub(commission)
	if available.Sign() <= 0 || price.Sign() <= 0 {
		return portfolio, nil
	}

	quantity := available.Div(price).Floor().IntPart()
	if quantity <= 0 {
		return portfolio, nil
	}

	return buy(portfolio, commission, symbol, quantity, t, price), nil
}

// BuyShares buys quantity shares of symbol. The order is rejected (no-op)
// when the resulting cash would go negative and margin is disallowed.
func BuyShares(portfolio types.Portfolio, commission decimal.Decimal, symbol string, quantity int64, t time.Time, source QuoteSource, allowMargin bool) (types.Portfolio, error) {
	if quantity <= 0 {
		return portfolio, errors.Newf(errors.ErrCodeInvalidQuantity, "buy quantity must be positive, got %d", quantity)
	}

	price, err := fillPrice(source, symbol, t)
	if err != nil {
		return portfolio, err
	}

	cost := price.Mul(decimal.NewFromInt(quantity)).Add(commission)
	if portfolio.Cash.Sub(cost).Sign() < 0 && !allowMargin {
		return portfolio, nil
	}

	return buy(portfolio, commission, symbol, quantity, t, price), nil
}

// SellShares sells quantity shares of symbol. The order is rejected (no-op)
// when quantity exceeds current holdings, or when the commission outweighs
// the proceeds enough to push cash negative, unless short-selling is
// allowed.
func SellShares(portfolio types.Portfolio, commission decimal.Decimal, symbol string, quantity int64, t time.Time, source QuoteSource, allowShort bool) (types.Portfolio, error) {
	if quantity <= 0 {
		return portfolio, errors.Newf(errors.ErrCodeInvalidQuantity, "sell quantity must be positive, got %d", quantity)
	}

	if quantity > portfolio.Position(symbol) && !allowShort {
		return portfolio, nil
	}

	price, err := fillPrice(source, symbol, t)
	if err != nil {
		return portfolio, err
	}

	proceeds := price.Mul(decimal.NewFromInt(quantity)).Sub(commission)

	// A commission above the sale proceeds would drain cash below zero.
	if portfolio.Cash.Add(proceeds).Sign() < 0 && !allowShort {
		return portfolio, nil
	}

	tx := types.Transaction{
		ID:       uuid.New().String(),
		Kind:     types.TransactionKindSell,
		Symbol:   symbol,
		Quantity: quantity,
		Time:     t,
		Price:    price,
	}

	return portfolio.Apply(tx, proceeds), nil
}

// SellAll sells the entire current holding of symbol, short disallowed. With
// no holding it is a no-op.
func SellAll(portfolio types.Portfolio, commission decimal.Decimal, symbol string, t time.Time, source QuoteSource) (types.Portfolio, error) {
	quantity := portfolio.Position(symbol)
	if quantity <= 0 {
		return portfolio, nil
	}

	return SellShares(portfolio, commission, symbol, quantity, t, source, false)
}

// PortfolioValue returns cash plus the mark-to-market value of every held
// position at t. A held instrument with no quote at or before t is an
// error, not a zero: permitting it would hide a window-computation bug.
func PortfolioValue(portfolio types.Portfolio, t time.Time, source QuoteSource) (decimal.Decimal, error) {
	value := portfolio.Cash

	for symbol, quantity := range portfolio.Positions {
		price, err := fillPrice(source, symbol, t)
		if err != nil {
			return decimal.Zero, errors.Wrapf(errors.ErrCodeValuationFailed, err,
				"cannot value position in %s at %v", symbol, t)
		}

		value = value.Add(price.Mul(decimal.NewFromInt(quantity)))
	}

	return value, nil
}

func buy(portfolio types.Portfolio, commission decimal.Decimal, symbol string, quantity int64, t time.Time, price decimal.Decimal) types.Portfolio {
	cost := price.Mul(decimal.NewFromInt(quantity)).Add(commission)

	tx := types.Transaction{
		ID:       uuid.New().String(),
		Kind:     types.TransactionKindBuy,
		Symbol:   symbol,
		Quantity: quantity,
		Time:     t,
		Price:    price,
	}

	return portfolio.Apply(tx, cost.Neg())
}
