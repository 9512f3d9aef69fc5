package helpers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
)

const (
	DefaultPage = 1 // pages are 1-based
)

// ParseViewState reads the table state of a tab from the query string:
//
//	search, page, size, sort, order, toggle, view, reset and one parameter per filter name.
//
// Unparsable page or size values fall back to defaults. When view carries the
// fingerprint of a different filter set the page is reset to 1.
func ParseViewState(c *gin.Context, defaultSize int, filters ...string) listing.ViewState {
	state := listing.NewViewState(defaultSize)

	state.Search = strings.TrimSpace(c.Query("search"))
	for _, name := range filters {
		state.SetFilter(name, c.Query(name))
	}

	if sizeStr := c.Query("size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err == nil {
			state.SetPageSize(size)
		}
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	state.GoTo(page)

	state.Sort = listing.SortState{
		Key:       strings.TrimSpace(c.Query("sort")),
		Direction: listing.ParseDirection(c.Query("order")),
	}
	if key := strings.TrimSpace(c.Query("toggle")); key != "" {
		state.ToggleSort(key)
	}

	if reset, _ := strconv.ParseBool(c.Query("reset")); reset {
		state.Reset()
		return state
	}

	state.Sync(c.Query("view"))
	return state
}

// ParseIDParam parses a positive integer path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError("invalid " + name + " parameter")
	}
	return id, nil
}
