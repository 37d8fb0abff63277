package usecase

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_market_overview/internal/domain"
)

const (
	DefaultListLength  = 20
	DefaultQuoteSuffix = "USDT"
)

var (
	DefaultMinQuoteVolume = decimal.NewFromInt(1_000_000)

	ErrUnknownSortKey = errors.New("unknown sort key")
)

// Ranker filters a ticker snapshot by liquidity and quote asset and builds
// the ranked views.
type Ranker struct {
	MinQuoteVolume decimal.Decimal
	QuoteSuffix    string
	ListLength     int
}

func NewRanker() *Ranker {
	return &Ranker{
		MinQuoteVolume: DefaultMinQuoteVolume,
		QuoteSuffix:    DefaultQuoteSuffix,
		ListLength:     DefaultListLength,
	}
}

var defaultRanker = NewRanker()

// Rank applies the default ranker.
func Rank(snapshot []domain.Ticker) domain.MarketViews {
	return defaultRanker.Rank(snapshot)
}

// Filter keeps tickers whose quote volume is strictly above the minimum and
// whose symbol ends with the quote suffix. Unparseable volumes are dropped.
func (r *Ranker) Filter(snapshot []domain.Ticker) []domain.Ticker {
	out := make([]domain.Ticker, 0, len(snapshot))
	for _, t := range snapshot {
		if !strings.HasSuffix(t.Symbol, r.QuoteSuffix) {
			continue
		}
		qv, ok := parseDecimal(t.QuoteVolume)
		if !ok || !qv.GreaterThan(r.MinQuoteVolume) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (r *Ranker) Rank(snapshot []domain.Ticker) domain.MarketViews {
	return r.RankFiltered(r.Filter(snapshot))
}

// RankFiltered builds the views from rows that already passed Filter.
func (r *Ranker) RankFiltered(filtered []domain.Ticker) domain.MarketViews {
	return domain.MarketViews{
		Hot:     r.top(SortRows(filtered, domain.SortConfig{Key: domain.SortQuoteVolume, Direction: domain.SortDesc})),
		Gainers: r.top(SortRows(filtered, domain.SortConfig{Key: domain.SortPriceChangePercent, Direction: domain.SortDesc})),
		Losers:  r.top(SortRows(filtered, domain.SortConfig{Key: domain.SortPriceChangePercent, Direction: domain.SortAsc})),
	}
}

// top cuts rows to ListLength, falling back to DefaultListLength when it is
// not a positive value no larger than the default.
func (r *Ranker) top(rows []domain.Ticker) []domain.Ticker {
	n := r.ListLength
	if n <= 0 || n > DefaultListLength {
		n = DefaultListLength
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// RequestSort returns the sort config after the user asks to sort by key:
// the same key while ascending flips to descending, anything else starts
// ascending.
func RequestSort(current domain.SortConfig, key domain.SortKey) domain.SortConfig {
	if current.Key == key && current.Direction == domain.SortAsc {
		return domain.SortConfig{Key: key, Direction: domain.SortDesc}
	}
	return domain.SortConfig{Key: key, Direction: domain.SortAsc}
}

// Resort computes the next sort config for key and returns the view sorted by it.
func Resort(view []domain.Ticker, key domain.SortKey, current domain.SortConfig) ([]domain.Ticker, domain.SortConfig, error) {
	if !key.Valid() {
		return nil, current, ErrUnknownSortKey
	}
	next := RequestSort(current, key)
	return SortRows(view, next), next, nil
}

// SortRows returns a sorted copy of rows. The sort is stable and values that
// do not parse go last in either direction.
func SortRows(rows []domain.Ticker, cfg domain.SortConfig) []domain.Ticker {
	out := make([]domain.Ticker, len(rows))
	copy(out, rows)
	if cfg.Key == domain.SortNone {
		return out
	}

	type keyed struct {
		row domain.Ticker
		val decimal.Decimal
		ok  bool
	}
	ks := make([]keyed, len(out))
	for i, t := range out {
		v, ok := parseDecimal(cfg.Key.Field(t))
		ks[i] = keyed{row: t, val: v, ok: ok}
	}

	desc := cfg.Direction == domain.SortDesc
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok {
			return false
		}
		if desc {
			return a.val.GreaterThan(b.val)
		}
		return a.val.LessThan(b.val)
	})

	for i := range ks {
		out[i] = ks[i].row
	}
	return out
}

var (
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
	ten      = decimal.NewFromInt(10)
	one      = decimal.NewFromInt(1)
)

// FormatPrice renders a decimal string with precision chosen by magnitude.
// Non-numeric input renders as "-".
func FormatPrice(price string) string {
	d, ok := parseDecimal(price)
	if !ok {
		return "-"
	}
	switch {
	case d.GreaterThanOrEqual(thousand):
		return d.StringFixed(2)
	case d.GreaterThanOrEqual(hundred):
		return d.StringFixed(3)
	case d.GreaterThanOrEqual(ten):
		return d.StringFixed(4)
	case d.GreaterThanOrEqual(one):
		return d.StringFixed(5)
	default:
		return d.StringFixed(8)
	}
}

// FormatPercent renders a percent change with two decimals.
func FormatPercent(pct string) string {
	d, ok := parseDecimal(pct)
	if !ok {
		return "-"
	}
	return d.StringFixed(2)
}

// ChangeClass is the table cell class for a percent change.
func ChangeClass(pct string) string {
	if d, ok := parseDecimal(pct); ok && !d.IsNegative() {
		return "gain"
	}
	return "loss"
}

func SortIcon(cfg domain.SortConfig, key domain.SortKey) string {
	if cfg.Key == key {
		if cfg.Direction == domain.SortAsc {
			return " ▲"
		}
		return " ▼"
	}
	return " ↕"
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
