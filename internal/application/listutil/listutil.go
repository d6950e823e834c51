package listutil

import (
	"net/url"
	"strings"
)

// CenterIDParams lists the query parameter names accepted for a center id,
// in lookup order. Older links use the alternate spellings.
var CenterIDParams = []string{"id", "ID", "Id", "hnID", "lnID"}

// MaxSearchLength bounds the free-text query.
const MaxSearchLength = 200

// FilterParams carries the directory's search and center filter.
type FilterParams struct {
	Search   string // free-text query, trimmed
	CenterID string // exact center filter; empty means all centers
}

// ParseFilterParams extracts q and center from URL query or form values.
// PRE: none
// POST: Search is trimmed and at most MaxSearchLength bytes on a rune boundary
func ParseFilterParams(q url.Values) FilterParams {
	search := strings.TrimSpace(q.Get("q"))
	if len(search) > MaxSearchLength {
		search = strings.ToValidUTF8(search[:MaxSearchLength], "")
	}
	return FilterParams{
		Search:   search,
		CenterID: strings.TrimSpace(q.Get("center")),
	}
}

// Values encodes the filter back into query values, omitting blanks.
func (f FilterParams) Values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	if f.CenterID != "" {
		v.Set("center", f.CenterID)
	}
	return v
}

// DirectoryURL returns the directory link for this filter, optionally
// anchored at a center's section.
func (f FilterParams) DirectoryURL(anchor string) string {
	u := url.URL{Path: "/directory", RawQuery: f.Values().Encode()}
	if anchor != "" {
		u.Fragment = anchor
	}
	return u.String()
}

// ParseCenterID returns the first non-blank center id among CenterIDParams.
// PRE: none
// POST: returns "" when no alias carries a value
func ParseCenterID(q url.Values) string {
	for _, key := range CenterIDParams {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return v
		}
	}
	return ""
}
