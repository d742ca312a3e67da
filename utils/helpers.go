package utils

import (
	"regexp"
	"strings"
)

var (
	mentionRe  = regexp.MustCompile(`@(\w+)`)
	hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	nonWordRe  = regexp.MustCompile(`[^\w\s-]`)
	spaceRe    = regexp.MustCompile(`[\s_-]+`)
)

// ExtractMentions returns every @username token found in text, without the
// leading @. Tokens are not resolved here; callers look them up.
func ExtractMentions(text string) []string {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		mentions = append(mentions, m[1])
	}
	return mentions
}

// ValidateHexColor reports whether color is a #RRGGBB string.
func ValidateHexColor(color string) bool {
	return hexColorRe.MatchString(color)
}

// Slugify lowercases text and collapses whitespace and punctuation into
// single hyphens.
func Slugify(text string) string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}

// Truncate shortens text to at most maxLength runes, ending in "..." when
// there is room for the suffix.
func Truncate(text string, maxLength int) string {
	const suffix = "..."
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength <= len(suffix) {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-len(suffix)]) + suffix
}

// MaskEmail hides the middle of the local part: jdoe@x.com -> j**e@x.com.
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local, domain := parts[0], parts[1]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + "@" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + "@" + domain
}

// PageInfo describes one page of a paginated listing.
type PageInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Paginate slices items down to the requested page, clamping page into the
// valid range.
func Paginate[T any](items []T, page, perPage int) ([]T, PageInfo) {
	if perPage < 1 {
		perPage = 20
	}
	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	return items[start:end], PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
