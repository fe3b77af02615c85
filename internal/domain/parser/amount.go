package parser

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoAmount is returned when an utterance carries no usable amount
var ErrNoAmount = errors.New("no amount found in text")

// AmountMatch is the result of amount extraction
type AmountMatch struct {
	Amount      decimal.Decimal
	Description string
	Pattern     string
}

const (
	numberExpr = `(?P<num>\d+(?:,\d{3})*(?:\.\d+)?)\s*(?P<mult>万|千)?`
	unitExpr   = `(?P<unit>元|块钱|块|yuan|rmb|cny)`
	descExpr   = `(?P<desc>.*)$`
)

// ambiguousVerbs also introduce durations and headcounts ("用了20分钟",
// "一共3个人"), so after them the number needs a unit or currency sign
var ambiguousVerbs = map[string]bool{"用了": true, "一共": true, "总共": true, "共计": true}

// counters are measure words that mark a number as something other than money
var counters = regexp.MustCompile(`(?i)^\s*(?:分钟|小时|天|个|人|位|晚|次|张|间|公里|km|min|hours?|days?|nights?|people|persons?)`)

// refund matches refunds and negative amounts, which are not expenses
var refund = regexp.MustCompile(`(?i)退款|退费|退回|退了|返现|refund|(?:^|[^0-9A-Za-z])[-−]\s*\d`)

// amountPattern is one ordered extraction rule
type amountPattern struct {
	name  string
	regex *regexp.Regexp
}

// amountPatterns are tried in order; the first acceptable match wins
var amountPatterns = []amountPattern{
	{
		// 花了50元在超市买水 / spent 120 yuan on dinner
		name: "verb",
		regex: regexp.MustCompile(`(?i)(?P<verb>花了|花费了?|用了|消费了?|付了|支付了?|共计|一共|总共|spent|paid|cost)\s*(?P<cur>¥|￥)?\s*` +
			numberExpr + `\s*` + unitExpr + `?\s*(?:在|买了?|用于|(?:on|for)\s)?\s*` + descExpr),
	},
	{
		// ¥35 奶茶
		name:  "currency_prefix",
		regex: regexp.MustCompile(`(?i)(?:¥|￥|rmb|cny)\s*` + numberExpr + `\s*` + descExpr),
	},
	{
		// 买了80元纪念品 / 门票120块
		name:  "unit",
		regex: regexp.MustCompile(`(?i)` + numberExpr + `\s*` + unitExpr + `\s*(?:的|(?:on|for)\s)?\s*` + descExpr),
	},
}

// firstNumber is the last resort: the first bare positive number that is not a count
var firstNumber = regexp.MustCompile(numberExpr)

// ExtractAmount pulls an amount and a description fragment from text.
// It returns false when the text has no digits, mentions a refund or a
// negative amount, or no pattern yields a positive amount.
func ExtractAmount(text string) (AmountMatch, bool) {
	text = normalize(text)
	if !hasDigit(text) || refund.MatchString(text) {
		return AmountMatch{}, false
	}

	for _, p := range amountPatterns {
		if m, ok := p.find(text); ok {
			return m, true
		}
	}

	for _, loc := range firstNumber.FindAllStringSubmatchIndex(text, -1) {
		if counters.MatchString(text[loc[1]:]) {
			continue
		}
		amount, ok := parseAmount(group(firstNumber, text, loc, "num"), group(firstNumber, text, loc, "mult"))
		if !ok {
			continue
		}
		return AmountMatch{Amount: amount, Description: text, Pattern: "first_number"}, true
	}
	return AmountMatch{}, false
}

// find scans text left to right, skipping matches whose number is not money
func (p amountPattern) find(text string) (AmountMatch, bool) {
	numIdx := p.regex.SubexpIndex("num")
	multIdx := p.regex.SubexpIndex("mult")

	for start := 0; start < len(text); {
		loc := p.regex.FindStringSubmatchIndex(text[start:])
		if loc == nil {
			return AmountMatch{}, false
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += start
			}
		}

		// resume right after the number on rejection
		numEnd := loc[2*numIdx+1]
		if loc[2*multIdx+1] > numEnd {
			numEnd = loc[2*multIdx+1]
		}

		amount, ok := parseAmount(group(p.regex, text, loc, "num"), group(p.regex, text, loc, "mult"))
		if !ok || !p.isMoney(text, loc, numEnd) {
			start = numEnd
			continue
		}

		description := trimFragment(group(p.regex, text, loc, "desc"))
		if description == "" {
			description = trimFragment(text[:loc[0]])
		}
		return AmountMatch{Amount: amount, Description: description, Pattern: p.name}, true
	}
	return AmountMatch{}, false
}

// isMoney rejects numbers followed by a counter, and numbers after an
// ambiguous verb that carry neither a unit nor a currency sign
func (p amountPattern) isMoney(text string, loc []int, numEnd int) bool {
	unit := group(p.regex, text, loc, "unit")
	if unit == "" && counters.MatchString(text[numEnd:]) {
		return false
	}
	verb := group(p.regex, text, loc, "verb")
	if ambiguousVerbs[verb] && unit == "" && group(p.regex, text, loc, "cur") == "" {
		return false
	}
	return true
}

// parseAmount converts the number and optional 万/千 multiplier into a positive decimal
func parseAmount(number, multiplier string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(number, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	switch multiplier {
	case "万":
		amount = amount.Mul(decimal.NewFromInt(10000))
	case "千":
		amount = amount.Mul(decimal.NewFromInt(1000))
	}
	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// group returns the named group of a FindStringSubmatchIndex result, or ""
// when the regex has no such group or it did not participate
func group(re *regexp.Regexp, text string, loc []int, name string) string {
	i := re.SubexpIndex(name)
	if i <= 0 || 2*i+1 >= len(loc) || loc[2*i] < 0 {
		return ""
	}
	return text[loc[2*i]:loc[2*i+1]]
}
