package core

import "strings"

// MatchesSearch reports whether every character of term occurs somewhere in
// title, ignoring case. Order and repetition are not considered, so "cdo"
// matches "Code". An empty term matches everything.
func MatchesSearch(title, term string) bool {
	if term == "" {
		return true
	}
	lower := strings.ToLower(title)
	for _, r := range strings.ToLower(term) {
		if !strings.ContainsRune(lower, r) {
			return false
		}
	}
	return true
}

type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns the bounds of the 1-based page within total items.
// Pages below 1 become 1, pages past the end clamp to the last page.
func Paginate(total, page, pageSize int) (start, end int, info PageInfo) {
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start = (page - 1) * pageSize
	if start > total {
		start = total
	}
	end = start + pageSize
	if end > total {
		end = total
	}

	return start, end, PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
