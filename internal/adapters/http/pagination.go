package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info. Total counts store-side
// matches, so the last page of a radius search can shrink after exact-distance
// refinement.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses. Filter
// parameters from the current request are preserved so a filtered search
// pages through the same result set.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	pageURL := func(offset int) string {
		args := []string{fmt.Sprintf("offset=%d&limit=%d", offset, p.Limit)}
		c.Context().QueryArgs().VisitAll(func(key, value []byte) {
			k := string(key)
			if k == "offset" || k == "limit" {
				return
			}
			args = append(args, k+"="+string(value))
		})
		return c.Path() + "?" + strings.Join(args, "&")
	}

	links := []string{fmt.Sprintf(`<%s>; rel="first"`, pageURL(0))}

	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, pageURL(prev)))
	}

	if p.Offset+p.Limit < p.Total {
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, pageURL(p.Offset+p.Limit)))
	}

	lastOffset := p.Total - p.Limit
	if lastOffset < 0 {
		lastOffset = 0
	}
	links = append(links, fmt.Sprintf(`<%s>; rel="last"`, pageURL(lastOffset)))

	c.Set("Link", strings.Join(links, ", "))
}
