package domain

// Currency is an ISO 4217 code. Amounts are labelled with it, never converted.
type Currency string

const (
	CurrencyPLN Currency = "PLN"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyCHF Currency = "CHF"
)

// BaseCurrency is used when a caller does not name one.
const BaseCurrency = CurrencyPLN

// Valid reports whether the currency is supported.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyPLN, CurrencyEUR, CurrencyUSD, CurrencyGBP, CurrencyCHF:
		return true
	default:
		return false
	}
}
