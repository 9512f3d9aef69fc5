package dto

import (
	"time"

	"github.com/yigit/projecthub/internal/pkg/listing"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Message   string       `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// PaginationInfo is the table footer: "showing From–To of TotalItems"
type PaginationInfo struct {
	CurrentPage int  `json:"currentPage" example:"2"`
	TotalPages  int  `json:"totalPages" example:"3"`
	PageSize    int  `json:"pageSize" example:"10"`
	TotalItems  int  `json:"totalItems" example:"25"`
	From        int  `json:"from" example:"11"`
	To          int  `json:"to" example:"20"`
	HasPrevious bool `json:"hasPrevious" example:"true"`
	HasNext     bool `json:"hasNext" example:"true"`
}

// ViewInfo echoes the table state so the console can send it back with the next request
type ViewInfo struct {
	Search      string            `json:"search"`
	Filters     map[string]string `json:"filters"`
	Sort        string            `json:"sort,omitempty" example:"name"`
	Order       string            `json:"order" example:"asc"`
	Fingerprint string            `json:"view" example:"3k1x0f9q2m"`
}

// ListResponse is one page of a console table
type ListResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
	View       ViewInfo       `json:"view"`
}

// NewListResponse builds a ListResponse from a page and the view state that produced it
func NewListResponse[T any](page listing.Page[T], view listing.ViewState) ListResponse[T] {
	return ListResponse[T]{
		Items: page.Items,
		Pagination: PaginationInfo{
			CurrentPage: page.CurrentPage,
			TotalPages:  page.TotalPages,
			PageSize:    page.PageSize,
			TotalItems:  page.TotalItems,
			From:        page.From,
			To:          page.To,
			HasPrevious: page.HasPrevious,
			HasNext:     page.HasNext,
		},
		View: ViewInfo{
			Search:      view.Search,
			Filters:     view.Filters,
			Sort:        view.Sort.Key,
			Order:       string(view.Sort.Direction),
			Fingerprint: view.Fingerprint(),
		},
	}
}
