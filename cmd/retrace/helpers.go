package main

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"retrace/internal/mistake"
)

var titleCaser = cases.Title(language.English)

// displayLabel renders a snake_case enum value as a human heading, e.g.
// "data_structures" becomes "Data Structures".
func displayLabel(value string) string {
	if value == "" {
		return "-"
	}
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

func subjectLabel(s mistake.Subject) string {
	return displayLabel(string(s))
}

func errorTypeLabel(e mistake.ErrorType) string {
	return displayLabel(string(e))
}

func statusLabel(s mistake.Status) string {
	return displayLabel(string(s))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// truncateText shortens value to max runes. Question text is frequently
// CJK, so byte slicing would cut characters in half.
func truncateText(value string, max int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if max <= 3 || len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func formatDue(due time.Time, now time.Time) string {
	if due.IsZero() {
		return "-"
	}
	if !due.After(now) {
		return "due now"
	}
	days := int(due.Sub(now).Hours() / 24)
	if days == 0 {
		return "later today"
	}
	if days == 1 {
		return "in 1 day"
	}
	return fmt.Sprintf("in %d days", days)
}

// matchRecordID accepts a full identifier or an unambiguous prefix.
func matchRecordID(records []*mistake.Record, token string) (*mistake.Record, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("record id required")
	}
	var found *mistake.Record
	for _, rec := range records {
		if rec.ID == token {
			return rec, nil
		}
		if strings.HasPrefix(rec.ID, token) {
			if found != nil {
				return nil, fmt.Errorf("record id prefix %q is ambiguous", token)
			}
			found = rec
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no record matches %q", token)
	}
	return found, nil
}
