// market/instruments.go
package market

type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string

	// PricePrecision is the number of decimals quoted by the venue.
	PricePrecision int32
}

var Instruments = map[string]InstrumentMeta{
	"BTC_USD": {
		Name:           "BTC_USD",
		BaseCurrency:   "BTC",
		QuoteCurrency:  "USD",
		PricePrecision: 2,
	},
	"ETH_USD": {
		Name:           "ETH_USD",
		BaseCurrency:   "ETH",
		QuoteCurrency:  "USD",
		PricePrecision: 2,
	},
	"EUR_USD": {
		Name:           "EUR_USD",
		BaseCurrency:   "EUR",
		QuoteCurrency:  "USD",
		PricePrecision: 5,
	},
	"USD_JPY": {
		Name:           "USD_JPY",
		BaseCurrency:   "USD",
		QuoteCurrency:  "JPY",
		PricePrecision: 3,
	},
}

// Precision returns the quoted decimals for instrument, 2 when unknown.
func Precision(instrument string) int32 {
	if meta, ok := Instruments[instrument]; ok {
		return meta.PricePrecision
	}
	return 2
}
