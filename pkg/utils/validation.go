package utils

import (
	"strconv"
	"strings"

	"engagehub/pkg/models"
)

// Pagination is a validated limit/offset window
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads raw limit and offset query values. Empty values fall
// back to defaultLimit and zero; limits above maxLimit are clamped.
func ParsePagination(rawLimit, rawOffset string, defaultLimit, maxLimit int) (Pagination, error) {
	p := Pagination{Limit: defaultLimit}

	if s := strings.TrimSpace(rawLimit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return p, models.NewValidationError("limit", "limit must be a positive integer")
		}
		p.Limit = n
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	if s := strings.TrimSpace(rawOffset); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return p, models.NewValidationError("offset", "offset must be a non-negative integer")
		}
		p.Offset = n
	}
	return p, nil
}

// Window returns the slice bounds of p over n items and whether more remain
func (p Pagination) Window(n int) (start, end int, hasMore bool) {
	start = min(p.Offset, n)
	end = min(start+p.Limit, n)
	return start, end, end < n
}

// OptionalString trims s and returns nil when nothing is left
func OptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
