package listing

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// ViewState is the table state a console tab holds between renders
type ViewState struct {
	Search   string            `json:"search"`
	Filters  map[string]string `json:"filters"`
	Sort     SortState         `json:"sort"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// NewViewState returns a state on page 1 with every filter inactive
func NewViewState(pageSize int) ViewState {
	pageSize = clampPageSize(pageSize)
	return ViewState{
		Filters:  map[string]string{},
		Sort:     SortState{Direction: Asc},
		Page:     1,
		PageSize: pageSize,
	}
}

// Filter returns the value of a dropdown filter, All when unset
func (v *ViewState) Filter(name string) string {
	if value, ok := v.Filters[name]; ok && !Inactive(value) {
		return value
	}
	return All
}

// SetSearch changes the search term and returns to page 1
func (v *ViewState) SetSearch(term string) {
	v.Search = term
	v.Page = 1
}

// SetFilter changes one dropdown filter and returns to page 1
func (v *ViewState) SetFilter(name, value string) {
	if v.Filters == nil {
		v.Filters = map[string]string{}
	}
	if Inactive(value) {
		value = All
	}
	v.Filters[name] = value
	v.Page = 1
}

// SetPageSize changes the page size and returns to page 1
func (v *ViewState) SetPageSize(size int) {
	v.PageSize = clampPageSize(size)
	v.Page = 1
}

// ToggleSort applies a header click for key
func (v *ViewState) ToggleSort(key string) {
	v.Sort = v.Sort.Toggle(key)
}

// GoTo moves to page, ignoring pages below 1
func (v *ViewState) GoTo(page int) {
	if page >= 1 {
		v.Page = page
	}
}

// Reset returns every filter to All, clears the search and goes back to page 1
func (v *ViewState) Reset() {
	v.Search = ""
	for name := range v.Filters {
		v.Filters[name] = All
	}
	v.Page = 1
}

// Fingerprint identifies the filter set (search, filters, page size) but not page or sort.
func (v *ViewState) Fingerprint() string {
	names := make([]string, 0, len(v.Filters))
	for name := range v.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(v.Search))))
	for _, name := range names {
		h.Write([]byte{0})
		h.Write([]byte(name + "=" + strings.ToUpper(v.Filter(name))))
	}
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(v.PageSize)))
	return strconv.FormatUint(h.Sum64(), 36)
}

// Sync resets to page 1 when the filter set differs from the one previous was taken from
func (v *ViewState) Sync(previous string) {
	if previous != "" && previous != v.Fingerprint() {
		v.Page = 1
	}
}
