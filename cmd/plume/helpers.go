package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"plume/internal/project"
)

func parseSectionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid section id %q", arg)
	}
	return id, nil
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func formatMetric(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *value)
}

func truncateCell(value string, max int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}

func suggestionCount(s *project.Suggestions) int {
	if s == nil {
		return 0
	}
	return len(s.ContentHints) + len(s.WritingPrompts) + len(s.StyleAdvice) + len(s.CitationCues)
}

func splitWords(text string) []string {
	return strings.Fields(text)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func plural(count int, singular, pluralForm string) string {
	if count == 1 {
		return singular
	}
	return pluralForm
}
