package usecase

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

const (
	DefaultSymbol      = "BTCUSDT"
	chartPathPrefix    = "/chart/"
	chartKeyPrefix     = "tv-chart-"
	chartContainerID   = "chart_container"
	defaultLocale      = "en"
	defaultInterval    = "60"
	defaultTheme       = "light"
	defaultTimezone    = "Etc/UTC"
	defaultLibrary     = "/scripts/charting_library/"
	defaultDatafeedURL = "/api/udf"
)

var ErrUnrecognizedPayload = errors.New("unrecognized symbol change payload")

type ExtractionKind int

const (
	ExtractUnrecognized ExtractionKind = iota
	ExtractPlain
	ExtractTagged
)

func (k ExtractionKind) String() string {
	switch k {
	case ExtractPlain:
		return "plain"
	case ExtractTagged:
		return "tagged"
	default:
		return "unrecognized"
	}
}

// Extraction is the symbol pulled out of a chart widget symbol-change event.
// Exchange is set only for tagged symbols such as "BINANCE:ETHUSDT".
type Extraction struct {
	Kind     ExtractionKind
	Symbol   string
	Exchange string
}

// ExtractSymbol reads a symbol from a widget payload. The widget reports
// either a plain string or an object with a "name" or "ticker" field; both
// may carry an "EXCHANGE:" prefix.
func ExtractSymbol(payload any) Extraction {
	var raw string
	switch p := payload.(type) {
	case string:
		raw = p
	case map[string]any:
		raw = firstString(p["name"], p["ticker"])
	case map[string]string:
		raw = firstString(p["name"], p["ticker"])
	default:
		return Extraction{Kind: ExtractUnrecognized}
	}
	return splitTagged(strings.TrimSpace(raw))
}

func firstString(vals ...any) string {
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func splitTagged(raw string) Extraction {
	if raw == "" {
		return Extraction{Kind: ExtractUnrecognized}
	}
	exchange, symbol, found := strings.Cut(raw, ":")
	if !found {
		return Extraction{Kind: ExtractPlain, Symbol: raw}
	}
	// "EX:SYM:rest" keeps only SYM
	symbol, _, _ = strings.Cut(symbol, ":")
	if symbol == "" {
		return Extraction{Kind: ExtractUnrecognized}
	}
	return Extraction{Kind: ExtractTagged, Symbol: symbol, Exchange: exchange}
}

// Navigation is a location change the page has to perform.
type Navigation struct {
	Path string `json:"path"`
	Push bool   `json:"push"`
}

func ChartPath(symbol string) string {
	return chartPathPrefix + symbol
}

// ChartKey identifies a widget instance; a new key means a fresh widget.
func ChartKey(symbol string) string {
	return chartKeyPrefix + symbol
}

func InitialSymbol(param string) string {
	if param = strings.TrimSpace(param); param != "" {
		return param
	}
	return DefaultSymbol
}

// ChartState keeps the chart page's current symbol in step with the URL and
// the widget.
type ChartState struct {
	CurrentSymbol string
}

func NewChartState(param string) ChartState {
	return ChartState{CurrentSymbol: InitialSymbol(param)}
}

func (s ChartState) Key() string {
	return ChartKey(s.CurrentSymbol)
}

// OnRouteChange follows an external URL change. It never navigates. Every
// navigation here is a full page load, so the remount applies it through
// NewChartState.
func (s ChartState) OnRouteChange(param string) ChartState {
	if param = strings.TrimSpace(param); param != "" {
		s.CurrentSymbol = param
	}
	return s
}

// OnWidgetSymbolChange handles a symbol picked inside the widget. A new
// symbol yields exactly one push navigation; an unreadable payload yields
// ErrUnrecognizedPayload and leaves the state as it was.
func (s ChartState) OnWidgetSymbolChange(payload any) (ChartState, *Navigation, error) {
	ext := ExtractSymbol(payload)
	if ext.Kind == ExtractUnrecognized {
		return s, nil, ErrUnrecognizedPayload
	}
	if ext.Symbol == s.CurrentSymbol {
		return s, nil, nil
	}
	s.CurrentSymbol = ext.Symbol
	return s, &Navigation{Path: ChartPath(ext.Symbol), Push: true}, nil
}

// ChartDefaults are the widget options that do not depend on the symbol.
type ChartDefaults struct {
	DatafeedURL      string
	LibraryPath      string
	DisabledFeatures []string
	Interval         string
	Theme            string
	Timezone         string
	Debug            bool
}

func NewChartDefaults() ChartDefaults {
	return ChartDefaults{
		DatafeedURL:      defaultDatafeedURL,
		LibraryPath:      defaultLibrary,
		DisabledFeatures: []string{"timeframes_toolbar", "header_undo_redo"},
		Interval:         defaultInterval,
		Theme:            defaultTheme,
		Timezone:         defaultTimezone,
	}
}

// WidgetOptions is the configuration object handed to the charting widget.
type WidgetOptions struct {
	Key               string   `json:"key"`
	ContainerID       string   `json:"container_id"`
	DatafeedURL       string   `json:"datafeed_url"`
	LibraryPath       string   `json:"library_path"`
	DisabledFeatures  []string `json:"disabled_features"`
	Locale            string   `json:"locale"`
	Debug             bool     `json:"debug"`
	Fullscreen        bool     `json:"fullscreen"`
	Symbol            string   `json:"symbol"`
	Interval          string   `json:"interval"`
	Theme             string   `json:"theme"`
	AllowSymbolChange bool     `json:"allow_symbol_change"`
	Timezone          string   `json:"timezone"`
	Autosize          bool     `json:"autosize"`
}

func (d ChartDefaults) Options(symbol, locale string) WidgetOptions {
	if locale == "" {
		locale = defaultLocale
	}
	features := make([]string, len(d.DisabledFeatures))
	copy(features, d.DisabledFeatures)
	return WidgetOptions{
		Key:               ChartKey(symbol),
		ContainerID:       chartContainerID,
		DatafeedURL:       d.DatafeedURL,
		LibraryPath:       d.LibraryPath,
		DisabledFeatures:  features,
		Locale:            locale,
		Debug:             d.Debug,
		Fullscreen:        false,
		Symbol:            symbol,
		Interval:          d.Interval,
		Theme:             d.Theme,
		AllowSymbolChange: true,
		Timezone:          d.Timezone,
		Autosize:          true,
	}
}

// LocaleFromAcceptLanguage returns the base language of the highest
// weighted Accept-Language entry, "en" when there is none.
func LocaleFromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return defaultLocale
	}
	base, conf := tags[0].Base()
	if conf == language.No || base.String() == "und" {
		return defaultLocale
	}
	return base.String()
}
