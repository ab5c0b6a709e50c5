package resource

import "strings"

// categories is the fixed label set accepted for main_category and
// other_categories. Legacy dotted labels and their newer spellings are both
// listed, and a few labels appear twice; order matches what the admin UI shows.
var categories = []string{
	"Art.Entertainment.Music.Movies",
	"Auto",
	"Business",
	"Crypto.BTC",
	"Dating",
	"Adult",
	"Edu",
	"Family.Personal",
	"Finance",
	"Food",
	"Gambling",
	"Games",
	"General",
	"Green.Eco",
	"Health.Beauty.Fitness",
	"Home Improvements",
	"Law",
	"Lifestyle",
	"News",
	"Pets",
	"Real Estate",
	"Seo. Web Design",
	"Shopping.Fashion",
	"Sport",
	"Tech.Mobile",
	"Travel",
	"Automotive",
	"Construction",
	"Entertainment",
	"Food & Beverages",
	"Gambling & Casinos",
	"Hospitality",
	"Health & Beauty",
	"Marketing",
	"Real Estate",
	"Retail",
	"Sports",
	"Fashion",
	"Technology",
	"Computer & IT",
	"General",
	"Language",
}

var categorySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return set
}()

// IsValidCategory reports whether name is one of the known categories.
// The comparison is exact: casing and spacing must match.
func IsValidCategory(name string) bool {
	_, ok := categorySet[name]
	return ok
}

// ValidCategories checks a comma-separated category list. Members are compared
// verbatim, so "Auto, Business" fails on " Business". An empty list is valid.
// When the list is invalid the first offending member is returned.
func ValidCategories(csv string) (string, bool) {
	if csv == "" {
		return "", true
	}
	for _, c := range strings.Split(csv, ",") {
		if !IsValidCategory(c) {
			return c, false
		}
	}
	return "", true
}

// Categories returns the distinct category labels in display order.
func Categories() []string {
	out := make([]string, 0, len(categorySet))
	seen := make(map[string]bool, len(categorySet))
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
