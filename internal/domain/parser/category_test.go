package parser

import (
	"testing"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		text string
		want entity.ExpenseCategory
	}{
		{"打车花了50元", entity.CategoryTransport},
		{"买了80元纪念品", entity.CategoryShopping},
		{"随便说点什么", entity.CategoryOther},
		{"在酒店吃饭", entity.CategoryFood},
		{"民宿两晚", entity.CategoryAccommodation},
		{"Taxi to the airport", entity.CategoryTransport},
		{"故宫门票", entity.CategorySightseeing},
		// ties go to the earlier category
		{"买机票", entity.CategoryTransport},
		{"买门票", entity.CategorySightseeing},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.text))
		})
	}
}

func TestScoreCategories_ExactMatchBonus(t *testing.T) {
	exact := ScoreCategories("打车")
	substring := ScoreCategories("今天打车去机场")

	assert.Equal(t, 1+ExactMatchBonus, exact[entity.CategoryTransport])
	assert.Equal(t, 1, substring[entity.CategoryTransport])
	assert.Greater(t, exact[entity.CategoryTransport], substring[entity.CategoryTransport])
}

func TestScoreCategories_CaseInsensitive(t *testing.T) {
	assert.Equal(t, ScoreCategories("hotel"), ScoreCategories("HOTEL"))
	assert.Equal(t, entity.CategoryAccommodation, Categorize("Hotel"))
}

func TestCategorize_Idempotent(t *testing.T) {
	for _, text := range []string{"打车花了50元", "买了80元纪念品", "随便说点什么", "买机票"} {
		first := Categorize(text)
		assert.Equal(t, first, Categorize(text))
		assert.Equal(t, ScoreCategories(text), ScoreCategories(text))
	}
}

func TestScoreCategories_AllZero(t *testing.T) {
	for category, score := range ScoreCategories("随便说点什么") {
		assert.Zero(t, score, "category %s", category)
	}
}
