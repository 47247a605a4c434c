package activities

import (
	"fmt"
	"strings"
)

// Category is the display tag of an activity.
type Category string

const (
	CategoryAll        Category = "all"
	CategorySports     Category = "sports"
	CategoryArts       Category = "arts"
	CategoryAcademic   Category = "academic"
	CategoryCommunity  Category = "community"
	CategoryTechnology Category = "technology"
)

// Categories lists every filterable value, "all" first.
var Categories = []Category{
	CategoryAll,
	CategorySports,
	CategoryArts,
	CategoryAcademic,
	CategoryCommunity,
	CategoryTechnology,
}

// ParseCategory validates a user supplied category. Empty means all.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryAll, nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q (available: %s)", s, joinCategories())
}

func joinCategories() string {
	parts := make([]string, len(Categories))
	for i, c := range Categories {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

type keywordRule struct {
	category    Category
	name        []string
	description []string
}

// classificationRules is evaluated top to bottom, first match wins.
var classificationRules = []keywordRule{
	{
		category:    CategorySports,
		name:        []string{"soccer", "basketball", "sport", "fitness"},
		description: []string{"team", "game", "athletic"},
	},
	{
		category:    CategoryArts,
		name:        []string{"art", "music", "theater", "drama"},
		description: []string{"creative", "paint"},
	},
	{
		category:    CategoryAcademic,
		name:        []string{"science", "math", "academic", "study", "olympiad"},
		description: []string{"learning", "education", "competition"},
	},
	{
		category:    CategoryCommunity,
		name:        []string{"volunteer", "community"},
		description: []string{"service", "volunteer"},
	},
	{
		category:    CategoryTechnology,
		name:        []string{"computer", "coding", "tech", "robotics"},
		description: []string{"programming", "technology", "digital", "robot"},
	},
}

// Classify maps an activity name and description to its category.
// Activities matching no rule are academic.
func Classify(name, description string) Category {
	lowerName := strings.ToLower(name)
	lowerDesc := strings.ToLower(description)

	for _, rule := range classificationRules {
		if containsAny(lowerName, rule.name) || containsAny(lowerDesc, rule.description) {
			return rule.category
		}
	}
	return CategoryAcademic
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
