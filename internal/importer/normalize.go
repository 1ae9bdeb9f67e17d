// Package importer implements the bulk-import pipeline: cell normalization,
// column mapping and the create-vs-update reconciliation of employee rows.
package importer

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var dniRe = regexp.MustCompile(`^\d{7,8}$`)

var acentos = strings.NewReplacer(
	"á", "a", "à", "a", "ä", "a", "â", "a",
	"é", "e", "è", "e", "ë", "e", "ê", "e",
	"í", "i", "ì", "i", "ï", "i", "î", "i",
	"ó", "o", "ò", "o", "ö", "o", "ô", "o",
	"ú", "u", "ù", "u", "ü", "u", "û", "u",
	"ñ", "n",
)

// NormalizarTexto lowercases and strips diacritics. It is used for
// case/accent-insensitive matching of estado and boolean tokens, never for
// stored display values.
func NormalizarTexto(s string) string {
	if s == "" {
		return ""
	}
	return acentos.Replace(strings.ToLower(s))
}

// ValidarDNI reports whether the trimmed value is a 7 or 8 digit national id.
func ValidarDNI(v string) bool {
	return dniRe.MatchString(strings.TrimSpace(v))
}

var layoutsFecha = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// NormalizarFecha parses a date cell and truncates it to UTC midnight so that
// date-only and date-time representations of the same calendar day compare
// equal. An unparseable value returns an error; the caller decides whether
// that invalidates the row.
func NormalizarFecha(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("fecha vacía")
	}
	for _, layout := range layoutsFecha {
		if t, err := time.Parse(layout, v); err == nil {
			return diaUTC(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida: %q", v)
}

// DiaMilis truncates a unix-milli timestamp to its UTC midnight, the
// granularity at which hire dates are compared and stored.
func DiaMilis(ms int64) int64 {
	return diaUTC(time.UnixMilli(ms).UTC()).UnixMilli()
}

// FormatearFecha renders a unix-milli timestamp as DD/MM/YYYY for change-log
// descriptions.
func FormatearFecha(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("02/01/2006")
}

func diaUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizarEstado coerces a cell to one of the accepted estado tokens,
// defaulting to "activo" when the input is empty or unrecognized.
func NormalizarEstado(v string) string {
	switch NormalizarTexto(strings.TrimSpace(v)) {
	case "inactivo":
		return "inactivo"
	default:
		return "activo"
	}
}

// NormalizarBool interprets the affirmative tokens accepted by the importer;
// everything else is false.
func NormalizarBool(v string) bool {
	switch NormalizarTexto(strings.TrimSpace(v)) {
	case "si", "true", "verdadero", "1":
		return true
	default:
		return false
	}
}
