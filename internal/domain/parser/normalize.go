package parser

import (
	"strings"
	"unicode"
)

// fullWidth maps full-width digits and punctuation produced by Chinese IMEs
// and speech engines to their ASCII forms.
var fullWidth = strings.NewReplacer(
	"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
	"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
	"．", ".", "，", ",", "：", ":", "　", " ",
)

// normalize prepares an utterance for matching
func normalize(text string) string {
	text = fullWidth.Replace(text)
	text = strings.ReplaceAll(text, "人民币", "元")
	return strings.TrimSpace(text)
}

// hasDigit reports whether s contains an ASCII digit
func hasDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

// trimFragment strips separators and filler words around a description fragment
func trimFragment(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '的' || r == '了'
	})
	for _, filler := range []string{"我今天", "今天", "刚刚", "刚才", "我们", "我", "买了", "在"} {
		s = strings.TrimPrefix(s, filler)
	}
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

// cnDigits maps single Chinese numerals
var cnDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseSmallNumber parses ASCII digits or Chinese numerals up to 99.
// It returns 0 when s is not a number.
func parseSmallNumber(s string) int {
	if s == "" {
		return 0
	}
	if hasDigit(s) {
		n := 0
		for _, r := range s {
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + int(r-'0')
		}
		return n
	}

	runes := []rune(s)
	switch {
	case len(runes) == 1 && runes[0] == '十':
		return 10
	case len(runes) == 1:
		return cnDigits[runes[0]]
	case len(runes) == 2 && runes[0] == '十':
		return 10 + cnDigits[runes[1]]
	case len(runes) == 2 && runes[1] == '十':
		return cnDigits[runes[0]] * 10
	case len(runes) == 3 && runes[1] == '十':
		return cnDigits[runes[0]]*10 + cnDigits[runes[2]]
	}
	return 0
}
