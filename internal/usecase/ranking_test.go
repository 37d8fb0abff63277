package usecase

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_market_overview/internal/domain"
)

func ticker(symbol, price, pct, qv string) domain.Ticker {
	return domain.Ticker{Symbol: symbol, LastPrice: price, PriceChangePercent: pct, QuoteVolume: qv}
}

// 30 liquid USDT pairs plus noise that must never show up.
func sampleSnapshot() []domain.Ticker {
	var snap []domain.Ticker
	for i := 1; i <= 30; i++ {
		snap = append(snap, ticker(
			fmt.Sprintf("C%02dUSDT", i),
			fmt.Sprintf("%d.5", i),
			fmt.Sprintf("%d.25", i-15),
			fmt.Sprintf("%d", 1_000_000+i*1000),
		))
	}
	snap = append(snap,
		ticker("ETHBTC", "0.05", "99", "5000000000"),
		ticker("LOWUSDT", "1", "50", "999999"),
		ticker("EDGEUSDT", "1", "60", "1000000"),
		ticker("BADUSDT", "1", "70", "abc"),
		ticker("EMPTYUSDT", "1", "80", ""),
	)
	return snap
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestRank_EveryRowPassesFilter(t *testing.T) {
	views := Rank(sampleSnapshot())
	limit := decimal.NewFromInt(1_000_000)

	for name, view := range map[string][]domain.Ticker{"hot": views.Hot, "gainers": views.Gainers, "losers": views.Losers} {
		assert.Len(t, view, 20, name)
		for _, row := range view {
			assert.True(t, strings.HasSuffix(row.Symbol, "USDT"), "%s: %s", name, row.Symbol)
			assert.True(t, decimalOf(t, row.QuoteVolume).GreaterThan(limit), "%s: %s", name, row.Symbol)
		}
	}
}

func TestRank_Ordering(t *testing.T) {
	views := Rank(sampleSnapshot())

	require.NotEmpty(t, views.Hot)
	assert.Equal(t, "C30USDT", views.Hot[0].Symbol)
	assert.Equal(t, "C30USDT", views.Gainers[0].Symbol)
	assert.Equal(t, "C01USDT", views.Losers[0].Symbol)

	for i := 1; i < len(views.Hot); i++ {
		prev, cur := decimalOf(t, views.Hot[i-1].QuoteVolume), decimalOf(t, views.Hot[i].QuoteVolume)
		assert.True(t, prev.GreaterThanOrEqual(cur), "hot not descending at %d", i)
	}
	for i := 1; i < len(views.Gainers); i++ {
		prev, cur := decimalOf(t, views.Gainers[i-1].PriceChangePercent), decimalOf(t, views.Gainers[i].PriceChangePercent)
		assert.True(t, prev.GreaterThanOrEqual(cur), "gainers not descending at %d", i)
	}
	for i := 1; i < len(views.Losers); i++ {
		prev, cur := decimalOf(t, views.Losers[i-1].PriceChangePercent), decimalOf(t, views.Losers[i].PriceChangePercent)
		assert.True(t, prev.LessThanOrEqual(cur), "losers not ascending at %d", i)
	}
}

func TestRank_FewerThanListLength(t *testing.T) {
	snap := []domain.Ticker{
		ticker("AUSDT", "1", "1", "2000000"),
		ticker("BUSDT", "1", "-2", "3000000"),
		ticker("CBUSD", "1", "5", "9000000"),
	}
	views := Rank(snap)

	assert.Len(t, views.Hot, 2)
	assert.Len(t, views.Gainers, 2)
	assert.Len(t, views.Losers, 2)
	assert.Equal(t, "BUSDT", views.Hot[0].Symbol)
	assert.Equal(t, "AUSDT", views.Gainers[0].Symbol)
	assert.Equal(t, "BUSDT", views.Losers[0].Symbol)
}

func TestRank_EmptySnapshot(t *testing.T) {
	views := Rank(nil)
	assert.Empty(t, views.Hot)
	assert.Empty(t, views.Gainers)
	assert.Empty(t, views.Losers)
}

func TestRanker_CustomThresholds(t *testing.T) {
	r := &Ranker{MinQuoteVolume: decimal.NewFromInt(10), QuoteSuffix: "BTC", ListLength: 1}
	views := r.Rank([]domain.Ticker{
		ticker("ETHBTC", "0.05", "1", "20"),
		ticker("SOLBTC", "0.001", "3", "15"),
		ticker("ETHUSDT", "3000", "2", "5000000"),
	})
	require.Len(t, views.Hot, 1)
	assert.Equal(t, "ETHBTC", views.Hot[0].Symbol)
	assert.Equal(t, "SOLBTC", views.Gainers[0].Symbol)
}

func TestRanker_ListLengthNeverExceedsCap(t *testing.T) {
	for _, n := range []int{-1, 0, 25} {
		r := NewRanker()
		r.ListLength = n
		views := r.Rank(sampleSnapshot())
		assert.Len(t, views.Hot, DefaultListLength, "ListLength %d", n)
		assert.Len(t, views.Gainers, DefaultListLength, "ListLength %d", n)
		assert.Len(t, views.Losers, DefaultListLength, "ListLength %d", n)
	}
}

func TestRanker_RankFilteredMatchesRank(t *testing.T) {
	r := NewRanker()
	snapshot := sampleSnapshot()

	filtered := r.Filter(snapshot)
	assert.Len(t, filtered, 30)
	assert.Equal(t, r.Rank(snapshot), r.RankFiltered(filtered))
}

func TestRequestSort(t *testing.T) {
	initial := domain.SortConfig{Direction: domain.SortAsc}

	first := RequestSort(initial, domain.SortLastPrice)
	assert.Equal(t, domain.SortConfig{Key: domain.SortLastPrice, Direction: domain.SortAsc}, first)

	second := RequestSort(first, domain.SortLastPrice)
	assert.Equal(t, domain.SortConfig{Key: domain.SortLastPrice, Direction: domain.SortDesc}, second)

	// desc on the same key goes back to asc
	third := RequestSort(second, domain.SortLastPrice)
	assert.Equal(t, domain.SortAsc, third.Direction)

	other := RequestSort(second, domain.SortPriceChangePercent)
	assert.Equal(t, domain.SortConfig{Key: domain.SortPriceChangePercent, Direction: domain.SortAsc}, other)
}

func TestResort(t *testing.T) {
	view := []domain.Ticker{
		ticker("AUSDT", "3", "0", "2000000"),
		ticker("BUSDT", "1", "0", "2000000"),
		ticker("CUSDT", "2", "0", "2000000"),
	}
	original := append([]domain.Ticker(nil), view...)

	rows, cfg, err := Resort(view, domain.SortLastPrice, domain.SortConfig{Direction: domain.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, domain.SortAsc, cfg.Direction)
	assert.Equal(t, []string{"BUSDT", "CUSDT", "AUSDT"}, symbols(rows))

	rows, cfg, err = Resort(view, domain.SortLastPrice, cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.SortDesc, cfg.Direction)
	assert.Equal(t, []string{"AUSDT", "CUSDT", "BUSDT"}, symbols(rows))

	assert.Equal(t, original, view, "input must not be mutated")

	_, _, err = Resort(view, "symbol", cfg)
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestSortRows_StableAndUnparseableLast(t *testing.T) {
	rows := []domain.Ticker{
		ticker("AUSDT", "abc", "1", ""),
		ticker("BUSDT", "2", "1", ""),
		ticker("CUSDT", "1", "1", ""),
		ticker("DUSDT", "2", "1", ""),
		ticker("EUSDT", "", "1", ""),
	}

	asc := SortRows(rows, domain.SortConfig{Key: domain.SortLastPrice, Direction: domain.SortAsc})
	assert.Equal(t, []string{"CUSDT", "BUSDT", "DUSDT", "AUSDT", "EUSDT"}, symbols(asc))

	desc := SortRows(rows, domain.SortConfig{Key: domain.SortLastPrice, Direction: domain.SortDesc})
	assert.Equal(t, []string{"BUSDT", "DUSDT", "CUSDT", "AUSDT", "EUSDT"}, symbols(desc))

	same := SortRows(rows, domain.SortConfig{Key: domain.SortPriceChangePercent, Direction: domain.SortDesc})
	assert.Equal(t, symbols(rows), symbols(same))

	unsorted := SortRows(rows, domain.SortConfig{})
	assert.Equal(t, symbols(rows), symbols(unsorted))
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1500", "1500.00"},
		{"150", "150.000"},
		{"15", "15.0000"},
		{"1.5", "1.50000"},
		{"0.00012345", "0.00012345"},
		{"1000", "1000.00"},
		{"99.9999", "99.9999"},
		{"64250.12000000", "64250.12"},
		{"abc", "-"},
		{"", "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.in), "FormatPrice(%q)", tt.in)
	}
}

func TestFormatPercentAndClass(t *testing.T) {
	assert.Equal(t, "2.50", FormatPercent("2.5"))
	assert.Equal(t, "-3.46", FormatPercent("-3.456"))
	assert.Equal(t, "-", FormatPercent("n/a"))

	assert.Equal(t, "gain", ChangeClass("0"))
	assert.Equal(t, "gain", ChangeClass("1.2"))
	assert.Equal(t, "loss", ChangeClass("-0.01"))
	assert.Equal(t, "loss", ChangeClass("n/a"))
}

func TestSortIcon(t *testing.T) {
	cfg := domain.SortConfig{Key: domain.SortLastPrice, Direction: domain.SortAsc}
	assert.Equal(t, " ▲", SortIcon(cfg, domain.SortLastPrice))
	assert.Equal(t, " ↕", SortIcon(cfg, domain.SortPriceChangePercent))

	cfg.Direction = domain.SortDesc
	assert.Equal(t, " ▼", SortIcon(cfg, domain.SortLastPrice))
}

func symbols(rows []domain.Ticker) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Symbol
	}
	return out
}
