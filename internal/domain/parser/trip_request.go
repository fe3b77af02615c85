package parser

import (
	"regexp"
	"strings"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const cnNumberExpr = `(\d+|[一二两三四五六七八九十]+)`

var (
	destinationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:想去|去|到|前往|飞往)\s*([\p{Han}A-Za-z]{2,12}?)(?:玩|旅游|旅行|游玩|度假|看看|逛逛|待|呆|住|过|[一二两三四五六七八九十]|\d|[,.;!?\s]|$)`),
		regexp.MustCompile(`([\p{Han}]{2,10}?)(?:旅游|旅行|游玩|自由行|之旅|游)`),
		regexp.MustCompile(`(?i)(?:trip to|travel to|visit|visiting|going to|go to)\s+([A-Za-z][A-Za-z ]{1,30}?)(?:\s+for|\s+with|\s+in|\s+on|[,.;!?]|\s*$)`),
	}
	durationSuffix     = regexp.MustCompile(`[一二两三四五六七八九十\d]+[日天]$`)
	destinationFillers = []string{"我们", "我", "想要", "想", "要", "打算", "计划", "准备", "一起"}

	durationDayPatterns = []*regexp.Regexp{
		regexp.MustCompile(cnNumberExpr + `\s*(?:天|日游|晚)`),
		regexp.MustCompile(`(?i)(\d+)\s*days?`),
	}
	durationWeekPatterns = []*regexp.Regexp{
		regexp.MustCompile(cnNumberExpr + `\s*(?:周|个星期|星期)`),
		regexp.MustCompile(`(?i)(\d+)\s*weeks?`),
	}

	budgetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`预算\s*(?:是|为|大概|大约|约|在|有)?\s*` + numberExpr),
		regexp.MustCompile(numberExpr + `\s*(?:元|块)?\s*(?:的|左右的?)?\s*预算`),
		regexp.MustCompile(`(?i)budget\s*(?:of|is|:)?\s*[$¥]?\s*(\d+(?:,\d{3})*(?:\.\d+)?)\s*(k)?`),
	}

	travelerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`一家` + cnNumberExpr + `口`),
		regexp.MustCompile(cnNumberExpr + `\s*(?:个)?\s*(?:人|位|大人)`),
		regexp.MustCompile(`(?i)(\d+)\s*(?:people|persons|travelers|travellers|adults)`),
	}
	pairWords = []string{"情侣", "两个人", "和女朋友", "和男朋友", "和老婆", "和老公", "蜜月", "couple", "honeymoon"}
	soloWords = []string{"一个人", "独自", "自己去", "solo", "alone"}

	clauseSplitter = regexp.MustCompile(`[,.;!?，。；！？\n]+`)
)

// styleKeywords is checked in order; the first style with a hit wins
var styleKeywords = []struct {
	style    entity.TravelStyle
	keywords []string
}{
	{entity.StyleLuxury, []string{"豪华", "奢华", "高端", "五星", "luxury"}},
	{entity.StyleComfort, []string{"舒适", "品质", "轻松", "comfortable", "comfort"}},
	{entity.StyleBudget, []string{"穷游", "省钱", "经济", "便宜", "学生", "cheap", "backpacking"}},
}

// preferenceKeywords maps preference tags to trigger words
var preferenceKeywords = []struct {
	tag      string
	keywords []string
}{
	{"美食", []string{"美食", "吃", "小吃", "food"}},
	{"购物", []string{"购物", "买买买", "shopping"}},
	{"自然风光", []string{"自然", "风景", "爬山", "徒步", "海边", "nature", "hiking", "beach"}},
	{"历史文化", []string{"历史", "文化", "古迹", "博物馆", "history", "culture", "museum"}},
	{"动漫", []string{"动漫", "二次元", "anime"}},
	{"亲子", []string{"亲子", "孩子", "小孩", "儿童", "kids", "family"}},
	{"艺术", []string{"艺术", "美术馆", "展览", "art"}},
	{"夜生活", []string{"夜生活", "酒吧", "nightlife"}},
	{"摄影", []string{"摄影", "拍照", "photography"}},
}

// requirementWords mark clauses that describe special needs
var requirementWords = []string{
	"孩子", "小孩", "儿童", "老人", "父母", "轮椅", "无障碍", "素食", "清真", "过敏", "孕", "宠物",
	"wheelchair", "vegetarian", "allergy", "allergic", "kids", "elderly", "pet",
}

// ParseTripRequest extracts a best-effort trip request from text.
// Fields that cannot be found are left zero, except TravelStyle (standard)
// and TravelerCount (1).
func ParseTripRequest(text string) *entity.TripRequestDraft {
	text = normalize(text)
	lowered := strings.ToLower(text)

	draft := &entity.TripRequestDraft{
		Destination:         parseDestination(text),
		DurationDays:        parseDuration(text),
		BudgetAmount:        parseBudget(text),
		TravelStyle:         parseStyle(lowered),
		TravelerCount:       parseTravelers(text, lowered),
		Preferences:         parsePreferences(lowered),
		SpecialRequirements: parseRequirements(text),
		Source:              entity.SourceHeuristic,
	}
	return draft
}

func parseDestination(text string) string {
	for _, re := range destinationPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		dest := strings.TrimSpace(durationSuffix.ReplaceAllString(m[1], ""))
		for _, filler := range destinationFillers {
			dest = strings.TrimPrefix(dest, filler)
		}
		if len([]rune(dest)) >= 2 {
			return dest
		}
	}
	return ""
}

func parseDuration(text string) int {
	for _, re := range durationDayPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n := parseSmallNumber(m[1]); n > 0 {
				return n
			}
		}
	}
	for _, re := range durationWeekPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n := parseSmallNumber(m[1]); n > 0 {
				return n * 7
			}
		}
	}
	return 0
}

func parseBudget(text string) decimal.Decimal {
	for _, re := range budgetPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		multiplier := m[2]
		if strings.EqualFold(multiplier, "k") {
			multiplier = "千"
		}
		if amount, ok := parseAmount(m[1], multiplier); ok {
			return amount
		}
	}
	return decimal.Zero
}

func parseStyle(lowered string) entity.TravelStyle {
	for _, entry := range styleKeywords {
		if containsAny(lowered, entry.keywords) {
			return entry.style
		}
	}
	return entity.StyleStandard
}

func parseTravelers(text, lowered string) int {
	for _, re := range travelerPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n := parseSmallNumber(m[1]); n > 0 {
				return n
			}
		}
	}
	if containsAny(lowered, pairWords) {
		return 2
	}
	if containsAny(lowered, soloWords) {
		return 1
	}
	return 1
}

func parsePreferences(lowered string) []string {
	prefs := []string{}
	for _, entry := range preferenceKeywords {
		if containsAny(lowered, entry.keywords) {
			prefs = append(prefs, entry.tag)
		}
	}
	return prefs
}

func parseRequirements(text string) string {
	var clauses []string
	for _, clause := range clauseSplitter.Split(text, -1) {
		clause = strings.TrimSpace(clause)
		if clause != "" && containsAny(strings.ToLower(clause), requirementWords) {
			clauses = append(clauses, clause)
		}
	}
	return strings.Join(clauses, "；")
}

// containsAny reports whether s contains one of the words.
// ASCII words must stand alone so "art" does not match "start".
func containsAny(s string, words []string) bool {
	for _, w := range words {
		if isASCII(w) {
			if containsWord(s, w) {
				return true
			}
			continue
		}
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		if (i == 0 || !isWordByte(s[i-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
