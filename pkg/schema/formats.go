package schema

import "time"

const dateLayout = "2006-01-02"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate interpreta uma data no formato YYYY-MM-DD.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	return t, err == nil
}

// ParseDateTime interpreta um instante RFC 3339 (com ou sem fuso).
func ParseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TruncateDate descarta o horário de t, mantendo o dia no fuso original.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// detectFormat devolve o formato comum a todas as amostras de texto.
func detectFormat(samples []string) string {
	if len(samples) == 0 {
		return ""
	}
	allDate, allDateTime := true, true
	for _, s := range samples {
		if _, ok := ParseDate(s); !ok {
			allDate = false
		}
		if _, ok := ParseDateTime(s); !ok {
			allDateTime = false
		}
	}
	switch {
	case allDate:
		return FormatDate
	case allDateTime:
		return FormatDateTime
	}
	return ""
}

func validFormat(format, s string) bool {
	switch format {
	case FormatDate:
		_, ok := ParseDate(s)
		return ok
	case FormatDateTime:
		_, ok := ParseDateTime(s)
		return ok
	}
	return true
}
