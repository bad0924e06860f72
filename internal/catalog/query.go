package catalog

import "strings"

// AllCategories is the category sentinel that disables category filtering
const AllCategories = "all"

// Query selects and paginates formats. Empty strings mean "no filter" and a
// nil Limit returns every match.
type Query struct {
	Category string
	Platform string
	Search   string
	Limit    *int
	Offset   int
}

// Page is one slice of a filtered result set
type Page struct {
	Formats []Format
	Total   int
	Offset  int
	Limit   *int
	HasMore bool
}

// Filter returns the formats matching every filter in q, in catalog order
func Filter(formats []Format, q Query) []Format {
	category := q.Category
	if category == AllCategories {
		category = ""
	}
	platform := strings.ToLower(q.Platform)
	search := strings.ToLower(q.Search)

	matched := make([]Format, 0, len(formats))
	for _, f := range formats {
		if category != "" && f.Category != category {
			continue
		}
		if platform != "" && !strings.Contains(strings.ToLower(f.Platform), platform) {
			continue
		}
		if search != "" && !matchesSearch(f, search) {
			continue
		}
		matched = append(matched, f)
	}
	return matched
}

func matchesSearch(f Format, term string) bool {
	return strings.Contains(strings.ToLower(f.Name), term) ||
		strings.Contains(strings.ToLower(f.Platform), term) ||
		strings.Contains(strings.ToLower(f.Description), term)
}

// Apply filters formats and then cuts the requested page. Total counts the
// matches before pagination. A non-positive Limit is treated as absent and a
// negative Offset as zero.
func Apply(formats []Format, q Query) Page {
	matched := Filter(formats, q)
	total := len(matched)

	offset := max(q.Offset, 0)
	page := Page{
		Formats: matched,
		Total:   total,
		Offset:  offset,
	}

	if q.Limit == nil || *q.Limit <= 0 {
		return page
	}

	// Compare against the remaining count so huge limits cannot overflow
	limit := *q.Limit
	start := min(offset, total)
	remaining := total - start
	end := total
	if limit < remaining {
		end = start + limit
	}

	page.Formats = matched[start:end]
	page.Limit = &limit
	page.HasMore = limit < remaining
	return page
}
