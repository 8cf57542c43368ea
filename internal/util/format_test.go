package util

import (
	"testing"
	"time"
)

func TestFormatReviews(t *testing.T) {
	tests := []struct {
		rating float64
		count  int
		want   string
	}{
		{4.5, 1234, "4.5 out of 1,234 reviews"},
		{4.0, 1, "4 out of 1 review"},
		{0, 0, "No reviews yet"},
	}
	for _, tt := range tests {
		if got := FormatReviews(tt.rating, tt.count); got != tt.want {
			t.Errorf("FormatReviews(%v, %d) = %q, want %q", tt.rating, tt.count, got, tt.want)
		}
	}
}

func TestFormatDistance(t *testing.T) {
	if got := FormatDistance(nil); got != "" {
		t.Errorf("nil distance = %q", got)
	}
	d := 1.25
	if got := FormatDistance(&d); got != "1.2 km from the center" && got != "1.3 km from the center" {
		t.Errorf("FormatDistance = %q", got)
	}
	d = 3
	if got := FormatDistance(&d); got != "3.0 km from the center" {
		t.Errorf("FormatDistance = %q", got)
	}
}

func TestFormatRadius(t *testing.T) {
	tests := map[int]string{500: "500 m", 1000: "1 km", 1500: "1.5 km", 40000: "40 km"}
	for in, want := range tests {
		if got := FormatRadius(in); got != want {
			t.Errorf("FormatRadius(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRatingStars(t *testing.T) {
	tests := map[float64]string{0: "☆☆☆☆☆", 3.6: "★★★★☆", 5: "★★★★★", 9: "★★★★★"}
	for in, want := range tests {
		if got := FormatRatingStars(in); got != want {
			t.Errorf("FormatRatingStars(%v) = %q, want %q", in, got, want)
		}
	}
	if FormatRatingWithStar(0) != "—" || FormatRatingWithStar(4.2) != "4.2 ★" {
		t.Error("FormatRatingWithStar")
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("Senso-ji Temple", 8); got != "Senso..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestFormatSavedAt(t *testing.T) {
	if FormatSavedAt(time.Time{}) != "—" {
		t.Error("zero time")
	}
	if got := FormatSavedAt(time.Now().Add(-72 * time.Hour)); got != "3 days ago" {
		t.Errorf("got %q", got)
	}
}
