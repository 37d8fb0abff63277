package domain

import "time"

type Category string

const (
	CategoryHot     Category = "hot"
	CategoryGainers Category = "gainers"
	CategoryLosers  Category = "losers"
)

var Categories = []Category{CategoryHot, CategoryGainers, CategoryLosers}

// ParseCategory maps unknown values to hot.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryGainers:
		return CategoryGainers
	case CategoryLosers:
		return CategoryLosers
	default:
		return CategoryHot
	}
}

func (c Category) Title() string {
	switch c {
	case CategoryGainers:
		return "Top Gainers"
	case CategoryLosers:
		return "Top Losers"
	default:
		return "Hot Markets"
	}
}

// SortKey names a numeric Ticker field. Empty means unsorted.
type SortKey string

const (
	SortNone               SortKey = ""
	SortLastPrice          SortKey = "lastPrice"
	SortPriceChangePercent SortKey = "priceChangePercent"
	SortQuoteVolume        SortKey = "quoteVolume"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortLastPrice, SortPriceChangePercent, SortQuoteVolume:
		return true
	}
	return false
}

// Field returns the raw value of the column k on t.
func (k SortKey) Field(t Ticker) string {
	switch k {
	case SortLastPrice:
		return t.LastPrice
	case SortPriceChangePercent:
		return t.PriceChangePercent
	case SortQuoteVolume:
		return t.QuoteVolume
	}
	return ""
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortConfig struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

// MarketViews holds the three ranked lists derived from one snapshot.
type MarketViews struct {
	Hot     []Ticker `json:"hot"`
	Gainers []Ticker `json:"gainers"`
	Losers  []Ticker `json:"losers"`
}

func (v MarketViews) View(c Category) []Ticker {
	switch c {
	case CategoryGainers:
		return v.Gainers
	case CategoryLosers:
		return v.Losers
	default:
		return v.Hot
	}
}

// FetchRecord is one snapshot fetch as seen by the market service.
type FetchRecord struct {
	ID        int64     `json:"id"`
	Total     int       `json:"total"`
	Filtered  int       `json:"filtered"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
	CreatedAt time.Time `json:"created_at"`
}
