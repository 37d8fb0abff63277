package web

import (
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/vitos/crypto_market_overview/internal/domain"
	"github.com/vitos/crypto_market_overview/internal/usecase"
	"go.uber.org/zap"
)

// Templates
var templates *template.Template

func InitTemplates(dir string) error {
	var err error
	templates, err = template.ParseGlob(filepath.Join(dir, "*.html"))
	return err
}

type tabView struct {
	Title  string
	Href   string
	Active bool
}

type headerView struct {
	Label string
	Href  string
	Icon  string
}

type rowView struct {
	Symbol      string
	Href        string
	Change      string
	ChangeClass string
	Price       string
}

type categoriesPage struct {
	Status  usecase.PageStatus
	Message string
	Tabs    []tabView
	Headers []headerView
	Rows    []rowView
}

func categoriesHref(c domain.Category, sort domain.SortConfig) string {
	q := url.Values{}
	q.Set("category", string(c))
	if sort.Key != domain.SortNone {
		q.Set("sort", string(sort.Key))
		q.Set("dir", string(sort.Direction))
	}
	return "/?" + q.Encode()
}

func newCategoriesPage(state usecase.CategoriesState) categoriesPage {
	page := categoriesPage{Status: state.Status()}

	for _, c := range domain.Categories {
		page.Tabs = append(page.Tabs, tabView{
			Title:  c.Title(),
			Href:   categoriesHref(c, domain.SortConfig{}),
			Active: c == state.Category,
		})
	}

	switch page.Status {
	case usecase.StatusLoading:
		page.Message = "Loading markets..."
		return page
	case usecase.StatusError:
		page.Message = state.Err
		return page
	case usecase.StatusEmpty:
		page.Message = usecase.MsgNoMarkets
		return page
	}

	for _, h := range []struct {
		label string
		key   domain.SortKey
	}{
		{"% Change (24h)", domain.SortPriceChangePercent},
		{"Price ($)", domain.SortLastPrice},
	} {
		next := state.RequestSort(h.key)
		page.Headers = append(page.Headers, headerView{
			Label: h.label,
			Href:  categoriesHref(state.Category, next.Sort),
			Icon:  usecase.SortIcon(state.Sort, h.key),
		})
	}

	for _, t := range state.Rows() {
		page.Rows = append(page.Rows, rowView{
			Symbol:      t.Symbol,
			Href:        usecase.ChartPath(t.Symbol),
			Change:      usecase.FormatPercent(t.PriceChangePercent),
			ChangeClass: usecase.ChangeClass(t.PriceChangePercent),
			Price:       usecase.FormatPrice(t.LastPrice),
		})
	}
	return page
}

// handleCategories is one page mount: one snapshot fetch, then the category
// and sort carried in the query are applied.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := s.marketService.Load(r.Context()).
		SelectCategory(domain.ParseCategory(q.Get("category"))).
		WithSort(sortFromQuery(q))

	if err := templates.ExecuteTemplate(w, "categories.html", newCategoriesPage(state)); err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

type chartPage struct {
	Symbol  string
	Key     string
	Options usecase.WidgetOptions
}

func (s *Server) handleChartDefault(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, usecase.ChartPath(usecase.DefaultSymbol), http.StatusFound)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	state := usecase.NewChartState(r.PathValue("symbol"))
	locale := usecase.LocaleFromAcceptLanguage(r.Header.Get("Accept-Language"))

	data := chartPage{
		Symbol:  state.CurrentSymbol,
		Key:     state.Key(),
		Options: s.chartDefaults.Options(state.CurrentSymbol, locale),
	}
	if err := templates.ExecuteTemplate(w, "chart.html", data); err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func sortFromQuery(q url.Values) domain.SortConfig {
	return domain.SortConfig{
		Key:       domain.SortKey(q.Get("sort")),
		Direction: domain.SortDirection(q.Get("dir")),
	}
}
