package export

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	cnDigits   = []string{"零", "壹", "贰", "叁", "肆", "伍", "陆", "柒", "捌", "玖"}
	cnUnits    = []string{"", "拾", "佰", "仟"}
	cnBigUnits = []string{"", "万", "亿", "万亿"}
	pow10      = []int64{1, 10, 100, 1000}
)

// ErrAmountOutOfRange is returned for amounts of 10^16 yuan (一万万亿) or more
var ErrAmountOutOfRange = errors.New("amount too large for capitalized Chinese")

var chineseAmountLimit = decimal.New(1, 16)

// ChineseAmount writes an amount in capitalized Chinese (大写金额), rounded to fen
func ChineseAmount(amount decimal.Decimal) (string, error) {
	if amount.IsNegative() {
		s, err := ChineseAmount(amount.Neg())
		if err != nil {
			return "", err
		}
		return "负" + s, nil
	}
	rounded := amount.Round(2)
	if rounded.GreaterThanOrEqual(chineseAmountLimit) {
		return "", ErrAmountOutOfRange
	}

	fen := rounded.Shift(2).IntPart()
	yuan := fen / 100
	jiao := (fen / 10) % 10
	cents := fen % 10

	if fen == 0 {
		return "零元整", nil
	}

	var b strings.Builder
	if yuan > 0 {
		b.WriteString(integerToChinese(yuan))
		b.WriteString("元")
	}

	if jiao == 0 && cents == 0 {
		b.WriteString("整")
		return b.String(), nil
	}
	if jiao != 0 {
		b.WriteString(cnDigits[jiao])
		b.WriteString("角")
	}
	if cents != 0 {
		if jiao == 0 && yuan > 0 {
			b.WriteString("零")
		}
		b.WriteString(cnDigits[cents])
		b.WriteString("分")
	}
	return b.String(), nil
}

// integerToChinese converts 0 < n < 10^16 in groups of four digits
func integerToChinese(n int64) string {
	var groups []int64
	for n > 0 {
		groups = append(groups, n%10000)
		n /= 10000
	}

	var b strings.Builder
	zeroPending := false
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			zeroPending = true
			continue
		}
		if b.Len() > 0 && (zeroPending || g < 1000) {
			b.WriteString("零")
		}
		b.WriteString(groupToChinese(g))
		b.WriteString(cnBigUnits[i])
		zeroPending = false
	}
	return b.String()
}

// groupToChinese converts 1..9999
func groupToChinese(g int64) string {
	var b strings.Builder
	started, zero := false, false
	for pos := 3; pos >= 0; pos-- {
		d := g / pow10[pos] % 10
		if d == 0 {
			if started {
				zero = true
			}
			continue
		}
		if zero {
			b.WriteString("零")
			zero = false
		}
		b.WriteString(cnDigits[d])
		b.WriteString(cnUnits[pos])
		started = true
	}
	return b.String()
}
