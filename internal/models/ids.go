package models

import (
	"fmt"
	"strconv"
	"strings"
)

// На проводе идентификаторы числовые; локально используются строковые
// с фиксированным префиксом и нулевым дополнением. Преобразование должно
// быть биективным на всем используемом диапазоне.

const (
	incidentIDPrefix = "INC-"
	reportIDPrefix   = "RPT-"
)

// FormatIncidentID преобразует числовой идентификатор инцидента в канонический вид (INC-00007)
func FormatIncidentID(n int64) string {
	return fmt.Sprintf("%s%05d", incidentIDPrefix, n)
}

// FormatReportID преобразует числовой идентификатор репорта в канонический вид (RPT-00042)
func FormatReportID(n int64) string {
	return fmt.Sprintf("%s%05d", reportIDPrefix, n)
}

// ParseIncidentID возвращает числовой идентификатор из канонического вида
func ParseIncidentID(id string) (int64, error) {
	return parseID(id, incidentIDPrefix)
}

// ParseReportID возвращает числовой идентификатор из канонического вида
func ParseReportID(id string) (int64, error) {
	return parseID(id, reportIDPrefix)
}

func parseID(id, prefix string) (int64, error) {
	if !strings.HasPrefix(id, prefix) {
		return 0, fmt.Errorf("malformed id %q: expected prefix %q", id, prefix)
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(id, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed id %q: %w", id, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("malformed id %q: negative numeric part", id)
	}
	return n, nil
}
