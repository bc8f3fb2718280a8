package display

import (
	"fmt"
	"time"

	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
)

// Text holds the fixed strings of the live view and web page.
type Text struct {
	Title           string
	NextPrayer      string
	In              string // precedes the remaining time
	Loading         string
	FetchFailed     string
	ConnectionError string
	InvalidTimings  string
	Dir             string // "ltr" or "rtl"
}

var texts = map[string]Text{
	prayer.LangEnglish: {
		Title:           "Prayer Times",
		NextPrayer:      "Next prayer",
		In:              "in",
		Loading:         "Loading...",
		FetchFailed:     "Failed to fetch prayer times",
		ConnectionError: "Connection error",
		InvalidTimings:  "Invalid prayer times received",
		Dir:             "ltr",
	},
	prayer.LangArabic: {
		Title:           "مواقيت الصلاة",
		NextPrayer:      "الصلاة القادمة",
		In:              "بعد",
		Loading:         "جاري التحميل...",
		FetchFailed:     "فشل في جلب مواقيت الصلاة",
		ConnectionError: "حدث خطأ في الاتصال",
		InvalidTimings:  "مواقيت الصلاة المستلمة غير صالحة",
		Dir:             "rtl",
	},
}

// TextFor returns the strings for lang, English when lang is unknown.
func TextFor(lang string) Text {
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts[prayer.LangEnglish]
}

var arabicWeekdays = [...]string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت"}

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// FormatDate renders the long date shown under the clock, for example
// "Monday, 19 October 2026" or "الاثنين، 19 أكتوبر 2026".
func FormatDate(t time.Time, lang string) string {
	if lang == prayer.LangArabic {
		return fmt.Sprintf("%s، %d %s %d", arabicWeekdays[t.Weekday()], t.Day(), arabicMonths[t.Month()-1], t.Year())
	}
	return t.Format("Monday, 2 January 2006")
}
