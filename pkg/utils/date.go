package utils

import "time"

const dateLayout = "2006-01-02"

// FormatDate formata a data no padrão usado pela plataforma de anúncios.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// TruncateToDay remove a componente de hora, mantendo apenas a data em UTC.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
