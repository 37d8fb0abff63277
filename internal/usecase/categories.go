package usecase

import "github.com/vitos/crypto_market_overview/internal/domain"

const (
	MsgLoadFailed = "Failed to load market data."
	MsgNoMarkets  = "No markets available for this category."
)

type PageStatus string

const (
	StatusLoading PageStatus = "loading"
	StatusError   PageStatus = "error"
	StatusEmpty   PageStatus = "empty"
	StatusReady   PageStatus = "ready"
)

// CategoriesState is the state of the market overview page. Every
// transition returns a new value and leaves the receiver untouched.
type CategoriesState struct {
	Category domain.Category
	Sort     domain.SortConfig
	Views    domain.MarketViews
	Loading  bool
	Err      string
}

func NewCategoriesState() CategoriesState {
	return CategoriesState{
		Category: domain.CategoryHot,
		Sort:     domain.SortConfig{Direction: domain.SortAsc},
		Loading:  true,
	}
}

func (s CategoriesState) Loaded(views domain.MarketViews) CategoriesState {
	s.Views = views
	s.Loading = false
	s.Err = ""
	return s
}

func (s CategoriesState) Failed() CategoriesState {
	s.Views = domain.MarketViews{}
	s.Loading = false
	s.Err = MsgLoadFailed
	return s
}

// SelectCategory switches the active tab and clears any column sort.
func (s CategoriesState) SelectCategory(c domain.Category) CategoriesState {
	s.Category = domain.ParseCategory(string(c))
	s.Sort = domain.SortConfig{Direction: domain.SortAsc}
	return s
}

// RequestSort ignores keys that are not ticker columns.
func (s CategoriesState) RequestSort(key domain.SortKey) CategoriesState {
	if !key.Valid() {
		return s
	}
	s.Sort = RequestSort(s.Sort, key)
	return s
}

// WithSort restores a sort config carried in a URL. Invalid keys clear it.
func (s CategoriesState) WithSort(cfg domain.SortConfig) CategoriesState {
	if !cfg.Key.Valid() {
		s.Sort = domain.SortConfig{Direction: domain.SortAsc}
		return s
	}
	if cfg.Direction != domain.SortDesc {
		cfg.Direction = domain.SortAsc
	}
	s.Sort = cfg
	return s
}

// Rows returns the active view, re-sorted when a column sort is set.
func (s CategoriesState) Rows() []domain.Ticker {
	return SortRows(s.Views.View(s.Category), s.Sort)
}

func (s CategoriesState) Status() PageStatus {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Err != "":
		return StatusError
	case len(s.Views.View(s.Category)) == 0:
		return StatusEmpty
	default:
		return StatusReady
	}
}
