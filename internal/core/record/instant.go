package record

import (
	"fmt"
	"strings"
	"time"
)

// InstantLayout は API 境界で使用する ISO-8601 の時刻表現です (例: 2024-08-01T00:00:00.000Z)。
const InstantLayout = "2006-01-02T15:04:05.000Z07:00"

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatInstant は時刻を UTC の ISO-8601 文字列に変換します。
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

// ParseInstant は ISO-8601 の時刻またはカレンダー日付 (YYYY-MM-DD) を UTC の時刻に変換します。
// タイムゾーンを持たない入力は UTC として解釈します。
func ParseInstant(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty instant", ErrValidation)
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid instant %q", ErrValidation, raw)
}

// normalizeDates はコレクションの日付フィールドを正規の ISO-8601 文字列に揃えます。
// nil は削除指定として扱うためそのまま残します。空文字は nil に置き換えます。
func normalizeDates(c Collection, doc Document) error {
	for _, path := range c.DateFields {
		value, ok := doc.Lookup(path)
		if !ok || value == nil {
			continue
		}
		raw, ok := value.(string)
		if !ok {
			return fieldError(path, "must be a date string")
		}
		if strings.TrimSpace(raw) == "" {
			doc.set(path, nil)
			continue
		}
		t, err := ParseInstant(raw)
		if err != nil {
			return fieldError(path, "must be an ISO-8601 instant or calendar date")
		}
		doc.set(path, FormatInstant(t))
	}
	return nil
}

func checkRequiredDates(c Collection, doc Document) error {
	for _, path := range c.RequiredDates {
		value, ok := doc.Lookup(path)
		if !ok || value == nil {
			return fieldError(path, "is required")
		}
	}
	return nil
}
