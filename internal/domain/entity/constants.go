package entity

// ExpenseCategory is the closed set of expense categories
type ExpenseCategory string

// Expense category constants
const (
	CategoryTransport     ExpenseCategory = "TRANSPORT"     // 交通
	CategoryAccommodation ExpenseCategory = "ACCOMMODATION" // 住宿
	CategoryFood          ExpenseCategory = "FOOD"          // 餐饮
	CategorySightseeing   ExpenseCategory = "SIGHTSEEING"   // 景点门票
	CategoryShopping      ExpenseCategory = "SHOPPING"      // 购物
	CategoryOther         ExpenseCategory = "OTHER"         // 其他
)

// AllCategories lists categories in scoring priority order. OTHER is last.
var AllCategories = []ExpenseCategory{
	CategoryTransport,
	CategoryAccommodation,
	CategoryFood,
	CategorySightseeing,
	CategoryShopping,
	CategoryOther,
}

// Valid reports whether c is one of the known categories
func (c ExpenseCategory) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

var categoryLabels = map[ExpenseCategory]string{
	CategoryTransport:     "交通",
	CategoryAccommodation: "住宿",
	CategoryFood:          "餐饮",
	CategorySightseeing:   "景点门票",
	CategoryShopping:      "购物",
	CategoryOther:         "其他",
}

// Label returns the display name of the category
func (c ExpenseCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryOther]
}

// ParseCategory normalizes a category name, returning OTHER for unknown values
func ParseCategory(s string) ExpenseCategory {
	c := ExpenseCategory(upper(s))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// TravelStyle describes how the traveler wants to spend
type TravelStyle string

// Travel style constants
const (
	StyleBudget   TravelStyle = "budget"   // 穷游
	StyleStandard TravelStyle = "standard" // 普通
	StyleComfort  TravelStyle = "comfort"  // 舒适
	StyleLuxury   TravelStyle = "luxury"   // 豪华
)

// ParseTravelStyle normalizes a style name, returning standard for unknown values
func ParseTravelStyle(s string) TravelStyle {
	switch TravelStyle(lower(s)) {
	case StyleBudget:
		return StyleBudget
	case StyleComfort:
		return StyleComfort
	case StyleLuxury:
		return StyleLuxury
	default:
		return StyleStandard
	}
}

// Trip status constants
const (
	TripStatusDraft     = "draft"
	TripStatusPlanned   = "planned"
	TripStatusCompleted = "completed"
)

// Draft source constants
const (
	SourceLLM       = "llm"
	SourceHeuristic = "heuristic"
)

// DefaultCurrency is used when the user has not picked one
const DefaultCurrency = "CNY"
