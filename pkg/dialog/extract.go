package dialog

import (
	"regexp"
	"strconv"
	"strings"
)

// Local slot extraction. Callers state bounds in free speech ("до двух
// миллионов", "не выше пятого этажа"), and round-tripping those through the
// language model costs a second of latency, so the common shapes are parsed
// here. Anything the patterns miss still reaches the model untouched.

var (
	floorRe = regexp.MustCompile(`(не выше|не ниже|выше|ниже|с|со|на)?\s*([0-9]+|[а-яё]+)(?:-?(?:м|го|й|ом))?\s+этаж[а-яё]*`)
	areaRe  = regexp.MustCompile(`(от|до|не меньше|не менее|не больше|не более|минимум|максимум)?\s*([0-9]+|[а-яё]+)\s*(?:кв\.?\s*м[а-яё]*|квадрат[а-яё]*|метр[а-яё]*)`)
	priceRe = regexp.MustCompile(`(от|до|не дороже|не дешевле|дешевле|дороже|максимум|минимум|в пределах)?\s*([0-9][0-9 ]*|[а-яё]+)\s*(миллион[а-яё]*|млн|тысяч[а-яё]*|тыс)`)
	// Bare six-digit-plus amounts ("за 1500000", "1 800 000 рублей").
	bareRe = regexp.MustCompile(`(от|до|не дороже|не дешевле|максимум|минимум|в пределах)?\s*([0-9]{1}[0-9 ]{5,})`)
)

// wordNumbers maps spoken Russian numerals (including the case forms heard
// in bound phrases) to their values.
var wordNumbers = map[string]int{
	"один": 1, "одного": 1, "первом": 1, "первого": 1,
	"два": 2, "две": 2, "двух": 2, "втором": 2, "второго": 2,
	"три": 3, "трех": 3, "трёх": 3, "третьем": 3, "третьего": 3,
	"четыре": 4, "четырех": 4, "четырёх": 4, "четвертом": 4, "четвёртом": 4,
	"пять": 5, "пяти": 5, "пятом": 5, "пятого": 5,
	"шесть": 6, "шести": 6, "шестом": 6, "шестого": 6,
	"семь": 7, "семи": 7, "седьмом": 7, "седьмого": 7,
	"восемь": 8, "восьми": 8, "восьмом": 8, "восьмого": 8,
	"девять": 9, "девяти": 9, "девятом": 9, "девятого": 9,
	"десять": 10, "десяти": 10, "десятом": 10, "десятого": 10,
	"двадцать": 20, "двадцати": 20,
	"тридцать": 30, "тридцати": 30,
	"сорок": 40, "сорока": 40,
	"пятьдесят": 50, "пятидесяти": 50,
	"шестьдесят": 60, "шестидесяти": 60,
	"семьдесят": 70, "семидесяти": 70,
	"восемьдесят": 80, "восьмидесяти": 80,
	"девяносто": 90, "девяноста": 90,
	"сто": 100, "ста": 100,
}

// ExtractParams parses search bounds out of a transcribed utterance.
// Directionless prices read as a ceiling (callers state budgets), and
// directionless areas read as a floor (callers state minimum size).
// A floor mention without direction pins both bounds.
func ExtractParams(text string) Params {
	lower := strings.ToLower(text)
	var p Params

	lower = extractFloor(lower, &p)
	lower = extractArea(lower, &p)
	lower = extractPrice(lower, &p)
	extractBarePrice(lower, &p)

	return p
}

// extractFloor parses floor bounds and blanks the matched span so the
// number is not re-read as a price.
func extractFloor(lower string, p *Params) string {
	m := floorRe.FindStringSubmatchIndex(lower)
	if m == nil {
		return lower
	}
	dir := group(lower, m, 1)
	n, ok := parseNumber(group(lower, m, 2))
	if !ok || n <= 0 || n > 100 {
		return lower
	}
	switch dir {
	case "не выше", "ниже", "до":
		p.FloorMax = Int(n)
	case "не ниже", "выше", "с", "со", "от":
		p.FloorMin = Int(n)
	default:
		p.FloorMin = Int(n)
		p.FloorMax = Int(n)
	}
	return blank(lower, m[0], m[1])
}

func extractArea(lower string, p *Params) string {
	out := lower
	for _, m := range areaRe.FindAllStringSubmatchIndex(lower, -1) {
		dir := group(lower, m, 1)
		n, ok := parseNumber(group(lower, m, 2))
		if !ok || n <= 0 || n > 1000 {
			continue
		}
		switch dir {
		case "до", "не больше", "не более", "максимум":
			p.AreaMax = Int(n)
		default:
			p.AreaMin = Int(n)
		}
		out = blank(out, m[0], m[1])
	}
	return out
}

func extractPrice(lower string, p *Params) string {
	out := lower
	for _, m := range priceRe.FindAllStringSubmatchIndex(lower, -1) {
		dir := group(lower, m, 1)
		scale := scaleOf(group(lower, m, 3))
		amount, ok := parseAmount(group(lower, m, 2), scale)
		if !ok {
			continue
		}
		applyPriceBound(p, dir, amount)
		out = blank(out, m[0], m[1])
	}
	return out
}

func extractBarePrice(lower string, p *Params) {
	for _, m := range bareRe.FindAllStringSubmatchIndex(lower, -1) {
		dir := group(lower, m, 1)
		raw := strings.ReplaceAll(group(lower, m, 2), " ", "")
		n, err := strconv.Atoi(raw)
		if err != nil || n < 100000 {
			continue
		}
		applyPriceBound(p, dir, n)
	}
}

func applyPriceBound(p *Params, dir string, amount int) {
	switch dir {
	case "от", "не дешевле", "дороже", "минимум":
		p.PriceMin = Int(amount)
	default:
		// "до", "не дороже", "максимум", "в пределах" and bare budget
		// statements all read as a ceiling.
		p.PriceMax = Int(amount)
	}
}

// parseAmount resolves a numeric or word amount against a scale word.
// "полтора миллиона" is the one fractional form callers actually use.
func parseAmount(raw string, scale int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "полтора" || raw == "полутора" {
		return scale + scale/2, true
	}
	n, ok := parseNumber(raw)
	if !ok {
		return 0, false
	}
	return n * scale, true
}

func parseNumber(raw string) (int, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, " ", ""))
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	n, ok := wordNumbers[raw]
	return n, ok
}

func scaleOf(word string) int {
	switch {
	case strings.HasPrefix(word, "миллион"), word == "млн":
		return 1000000
	case strings.HasPrefix(word, "тысяч"), word == "тыс":
		return 1000
	default:
		return 1
	}
}

func group(s string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}

func blank(s string, from, to int) string {
	return s[:from] + strings.Repeat(" ", to-from) + s[to:]
}
