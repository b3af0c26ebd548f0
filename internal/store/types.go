package store

import "gorm.io/gorm"

// Scope narrows a query. Filters and visibility rules are both expressed as scopes.
type Scope = func(*gorm.DB) *gorm.DB

// ListOptions controls one page of a list query.
type ListOptions struct {
	Scopes   []Scope
	Page     int // 1-based
	PageSize int
}

func (o ListOptions) offset() int {
	if o.Page < 1 {
		return 0
	}
	return (o.Page - 1) * o.PageSize
}

// Page is one page of results together with the size of the full result set.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Total    int64
}

// ResyncResult reports how many child records were re-saved.
type ResyncResult struct {
	Maintenance int `json:"maintenance"`
	Claims      int `json:"claims"`
}
