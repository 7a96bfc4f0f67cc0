// utils/dates.go
package utils

import "time"

// Weekday names in pt-BR, indexed by time.Weekday (Sunday = 0). A static
// table instead of locale state, so formatting does not depend on the host.
var weekdaysPTBR = [7]string{
	"domingo",
	"segunda-feira",
	"terça-feira",
	"quarta-feira",
	"quinta-feira",
	"sexta-feira",
	"sábado",
}

func WeekdayPTBR(t time.Time) string {
	return weekdaysPTBR[int(t.Weekday())]
}

func FormatDateBR(t time.Time) string {
	return t.Format("02/01/2006")
}

func FormatTimeBR(t time.Time) string {
	return t.Format("15:04")
}

// FriendlyDateBR renders "15/09/2025, segunda-feira" for template parameters.
func FriendlyDateBR(t time.Time) string {
	return FormatDateBR(t) + ", " + WeekdayPTBR(t)
}

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
