package domain

// Instrument is a tradable symbol as listed by the exchange.
type Instrument struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"base_asset"`
	QuoteAsset string `json:"quote_asset"`
	Status     string `json:"status"`
	TickSize   string `json:"tick_size"`
}

// Ticker is one row of the exchange's 24h rolling statistics. Numeric fields
// stay as the decimal strings the exchange publishes.
type Ticker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}
