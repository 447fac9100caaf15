// Package util provides utility functions for formatting and common operations.
package util

import (
	"fmt"
	"math"
	"strconv"
)

// FormatDecibels formats a PSNR value with four decimals.
// Non-finite values use the lowercase spellings inf, -inf and nan.
func FormatDecibels(db float64) string {
	switch {
	case math.IsInf(db, 1):
		return "inf"
	case math.IsInf(db, -1):
		return "-inf"
	case math.IsNaN(db):
		return "nan"
	default:
		return fmt.Sprintf("%.4f", db)
	}
}

// FormatDuration formats seconds as HH:MM:SS.
func FormatDuration(seconds float64) string {
	if seconds < 0 || seconds != seconds { // NaN check
		return "??:??:??"
	}

	totalSecs := int64(seconds)
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// FormatDurationFromSecs formats seconds as HH:MM:SS from an int64.
func FormatDurationFromSecs(secs int64) string {
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatFPS formats a frame rate, dropping trailing zeros (24, 29.97).
func FormatFPS(fps float64) string {
	return strconv.FormatFloat(math.Round(fps*1000)/1000, 'f', -1, 64)
}

// ParseRational parses an ffprobe rational such as "30000/1001" or a plain
// number. A zero denominator yields ok=false.
func ParseRational(s string) (float64, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '/' {
			continue
		}
		num, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, false
		}
		den, err := strconv.ParseFloat(s[i+1:], 64)
		if err != nil || den == 0 {
			return 0, false
		}
		return num / den, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
