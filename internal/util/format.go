package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatRating formats a 0-5 rating as "4.5" or "—" when unrated.
func FormatRating(rating float64) string {
	if rating <= 0 {
		return "—"
	}
	return formatRatingNumber(rating)
}

// FormatRatingWithStar formats a rating as "4.5 ★" for display.
func FormatRatingWithStar(rating float64) string {
	if rating <= 0 {
		return "—"
	}
	return formatRatingNumber(rating) + " ★"
}

// FormatRatingStars formats a rating as stars (e.g., "★★★★☆").
func FormatRatingStars(rating float64) string {
	stars := int(math.Round(rating))
	if stars < 0 {
		stars = 0
	}
	if stars > 5 {
		stars = 5
	}
	return strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars)
}

// FormatReviews renders "4.5 out of 1,234 reviews".
func FormatReviews(rating float64, count int) string {
	if count <= 0 {
		return "No reviews yet"
	}
	noun := "reviews"
	if count == 1 {
		noun = "review"
	}
	return fmt.Sprintf("%s out of %s %s", FormatRating(rating), humanize.Comma(int64(count)), noun)
}

// FormatDistance renders "1.2 km from the center", or "" without a distance.
func FormatDistance(km *float64) string {
	if km == nil {
		return ""
	}
	return strconv.FormatFloat(*km, 'f', 1, 64) + " km from the center"
}

// FormatRadius renders meters as "800 m" or "1.5 km".
func FormatRadius(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", meters)
	}
	return strings.TrimSuffix(strconv.FormatFloat(float64(meters)/1000, 'f', 1, 64), ".0") + " km"
}

// FormatSavedAt renders a favorite's age, e.g. "3 days ago".
func FormatSavedAt(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return humanize.Time(t)
}

func formatRatingNumber(v float64) string {
	// Keep one decimal at most, but avoid trailing .0 for whole values.
	s := strconv.FormatFloat(v, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
