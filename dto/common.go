package dto

import "lablinc/response"

// PaginatedResponse wraps a page of items for swagger docs.
type PaginatedResponse[T any] struct {
	Data       T                   `json:"data"`
	Pagination response.Pagination `json:"pagination"`
}

type IDResponse struct {
	ID uint `json:"id"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
