package parser

import (
	"strings"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
)

// ExactMatchBonus is added to a category when the whole utterance equals one of its keywords
const ExactMatchBonus = 3

// categoryKeywords is ordered by tie-break priority
var categoryKeywords = []struct {
	category entity.ExpenseCategory
	keywords []string
}{
	{entity.CategoryTransport, []string{
		"打车", "出租车", "的士", "滴滴", "网约车", "地铁", "公交", "巴士", "大巴", "高铁", "动车",
		"火车", "飞机", "机票", "航班", "车票", "船票", "轮渡", "租车", "加油", "油费", "停车",
		"过路费", "交通", "taxi", "uber", "subway", "metro", "bus", "train", "flight", "airfare",
		"ferry", "parking", "fuel", "transport",
	}},
	{entity.CategoryAccommodation, []string{
		"酒店", "宾馆", "旅馆", "民宿", "住宿", "客栈", "青旅", "房费", "住", "hotel", "hostel",
		"airbnb", "lodging", "accommodation",
	}},
	{entity.CategoryFood, []string{
		"吃", "饭", "餐", "早餐", "午餐", "晚餐", "夜宵", "小吃", "美食", "咖啡", "奶茶", "饮料",
		"水果", "零食", "火锅", "烧烤", "外卖", "food", "meal", "breakfast", "lunch", "dinner",
		"coffee", "restaurant", "snack", "drink",
	}},
	{entity.CategorySightseeing, []string{
		"门票", "景点", "景区", "博物馆", "公园", "游览", "观光", "导游", "索道", "缆车", "演出",
		"展览", "游船", "sightseeing", "museum", "tour", "admission", "ticket", "show",
	}},
	{entity.CategoryShopping, []string{
		"买", "购物", "纪念品", "特产", "礼物", "手信", "衣服", "商场", "超市", "免税",
		"shopping", "souvenir", "gift", "mall",
	}},
}

// ScoreCategories counts keyword occurrences per category in text.
// Matching is case-insensitive; an utterance equal to a keyword earns ExactMatchBonus.
func ScoreCategories(text string) map[entity.ExpenseCategory]int {
	lowered := strings.ToLower(normalize(text))
	scores := make(map[entity.ExpenseCategory]int, len(categoryKeywords))

	for _, entry := range categoryKeywords {
		score := 0
		for _, keyword := range entry.keywords {
			score += strings.Count(lowered, keyword)
			if lowered == keyword {
				score += ExactMatchBonus
			}
		}
		scores[entry.category] = score
	}
	return scores
}

// Categorize returns the highest scoring category, OTHER when nothing scores.
// Ties go to the category listed first.
func Categorize(text string) entity.ExpenseCategory {
	scores := ScoreCategories(text)

	best := entity.CategoryOther
	bestScore := 0
	for _, entry := range categoryKeywords {
		if scores[entry.category] > bestScore {
			best = entry.category
			bestScore = scores[entry.category]
		}
	}
	return best
}
