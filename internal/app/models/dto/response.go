package dto

import "time"

// APIResponse is the envelope of every BFF response
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

// NewFailureResponse wraps an error detail in an envelope
func NewFailureResponse(detail *ErrorDetail) APIResponse {
	return APIResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	}
}

// PaginationInfo describes the position of a page in a listing
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	PageSize    int   `json:"pageSize" example:"12"`
	TotalItems  int64 `json:"totalItems" example:"120"`
	TotalPages  int   `json:"totalPages" example:"10"`
}

// QueryLinks are canonical query strings for the current, next and previous page
type QueryLinks struct {
	Canonical string `json:"canonicalQuery" example:"categoryId=3&level=BEGINNER"`
	Next      string `json:"nextQuery,omitempty" example:"categoryId=3&level=BEGINNER&pageNumber=2"`
	Prev      string `json:"prevQuery,omitempty"`
}

// PaginatedResponse represents a paginated list with metadata and query links
type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
	Query      QueryLinks     `json:"query"`
}

// QueryChangeRequest carries toolbar changes to apply to the current query string
type QueryChangeRequest struct {
	Query   string            `json:"query" example:"categoryId=3&pageNumber=4"`
	Changes map[string]string `json:"changes" binding:"required" example:"level:ADVANCED"`
}

// QueryChangeResponse is the query string to navigate to
type QueryChangeResponse struct {
	Query string `json:"query" example:"categoryId=3&level=ADVANCED"`
}
