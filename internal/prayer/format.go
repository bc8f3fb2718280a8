package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Display modes for FormatOutput.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// FormatData is the data passed to custom templates.
type FormatData struct {
	Name      string // "Asr"
	ShortName string // "A"
	Label     string // "العصر" with lang=ar, otherwise Name
	Time      string // "15:30" or "3:30 PM"
	Remaining string // "2:30"
	Hours     int
	Minutes   int
}

// FormatOutput renders a Result for a status bar. timeLayout is "15:04"
// or "3:04 PM". A mode containing "{{" is executed as a Go template over
// FormatData, e.g. "{{.Name}} in {{.Remaining}}".
func FormatOutput(r Result, mode, timeLayout, lang string) string {
	timeStr := FormatClock(r.Time, timeLayout)
	short := ShortNames[r.Name]
	name := Label(r.Name, lang)

	if strings.Contains(mode, "{{") {
		return formatCustom(mode, FormatData{
			Name:      r.Name,
			ShortName: short,
			Label:     name,
			Time:      timeStr,
			Remaining: r.Remaining,
			Hours:     r.Minutes / 60,
			Minutes:   r.Minutes % 60,
		})
	}

	switch mode {
	case FormatTimeRemaining:
		return r.Remaining
	case FormatNextPrayerTime:
		return timeStr
	case FormatNameAndRemaining:
		return fmt.Sprintf("%s %s", name, r.Remaining)
	case FormatShortNameAndTime:
		return fmt.Sprintf("%s %s", short, timeStr)
	case FormatShortNameAndRemain:
		return fmt.Sprintf("%s %s", short, r.Remaining)
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", name, timeStr, r.Remaining)
	default:
		return fmt.Sprintf("%s %s", name, timeStr)
	}
}

func formatCustom(tmpl string, data FormatData) string {
	t, err := template.New("custom").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}
	return buf.String()
}
