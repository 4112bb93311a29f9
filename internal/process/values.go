package process

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// DefaultLanguageColor is used for languages missing from the color table.
const DefaultLanguageColor = "#6c757d"

// UnknownLanguage replaces an empty or missing language.
const UnknownLanguage = "Unknown"

const maxDescription = 200

var languageColors = map[string]string{
	"JavaScript": "#f1e05a",
	"Python":     "#3572A5",
	"Java":       "#b07219",
	"TypeScript": "#2b7489",
	"C++":        "#f34b7d",
	"C":          "#555555",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"Ruby":       "#701516",
	"PHP":        "#4F5D95",
	"Swift":      "#ffac45",
	"Kotlin":     "#A97BFF",
	"HTML":       "#e34c26",
	"CSS":        "#563d7c",
	"Vue":        "#41b883",
	"React":      "#61dafb",
	"Shell":      "#89e051",
	"Dockerfile": "#384d54",
	"Unknown":    "#6c757d",
}

// LanguageColor returns the display color of a language.
func LanguageColor(language string) string {
	if c, ok := languageColors[language]; ok {
		return c
	}
	return DefaultLanguageColor
}

// SafeInt converts a loosely typed count to an int. Strings may carry
// thousands separators and a fractional part, which is truncated. Anything
// that does not convert, including nil, NaN and infinities, yields 0.
func SafeInt(v any) int {
	switch s := v.(type) {
	case string:
		v = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	case json.Number:
		v = string(s)
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		v = f
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// FormatCount renders a count the way the listing shows it: 1.2K, 2.5M, 42.
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1e3)
	default:
		return strconv.Itoa(n)
	}
}

// CleanDescription flattens line breaks and truncates to 200 characters.
func CleanDescription(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxDescription {
		s = string(r[:maxDescription-3]) + "..."
	}
	return s
}
