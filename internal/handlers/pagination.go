package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type pageParams struct {
	Page int
	Size int
}

func (p pageParams) Offset() int { return (p.Page - 1) * p.Size }

func parsePage(c *gin.Context) (pageParams, error) {
	p := pageParams{Page: 1, Size: defaultPageSize}

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("invalid page %q", v)
		}
		p.Page = n
	}
	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("invalid page_size %q", v)
		}
		p.Size = min(n, maxPageSize)
	}
	return p, nil
}

// pageLinks builds the absolute next/previous URLs of a paginated
// response, keeping the other query parameters of the request.
func pageLinks(c *gin.Context, p pageParams, total int) (next, previous *string) {
	link := func(page int) *string {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		q := c.Request.URL.Query()
		q.Set("page", strconv.Itoa(page))
		u := url.URL{
			Scheme:   scheme,
			Host:     c.Request.Host,
			Path:     c.Request.URL.Path,
			RawQuery: q.Encode(),
		}
		s := u.String()
		return &s
	}

	if p.Page*p.Size < total {
		next = link(p.Page + 1)
	}
	if p.Page > 1 {
		previous = link(p.Page - 1)
	}
	return next, previous
}
