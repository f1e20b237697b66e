package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is a zero-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return p.Page * p.Limit
}

// ParsePage reads page and limit from the query string.
func ParsePage(c *gin.Context) Page {
	p := Page{Page: 0, Limit: DefaultPageLimit}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v >= 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}
