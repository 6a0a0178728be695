package models

import "time"

// APIResponse is the envelope for every HTTP response
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// PaginationMeta describes a window over a listing
type PaginationMeta struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// PaginatedResponse is a generic page of results
type PaginatedResponse[T any] struct {
	Data []T           `json:"data"`
	Meta PaginationMeta `json:"meta"`
}
