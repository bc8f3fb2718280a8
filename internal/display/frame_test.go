package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smokyabdulrahman/salah-clock/internal/clock"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
	"github.com/smokyabdulrahman/salah-clock/internal/watch"
)

func sampleUpdate(t *testing.T) watch.Update {
	t.Helper()
	timings := []prayer.Timing{
		{Name: "Fajr", Time: "05:00"},
		{Name: "Sunrise", Time: "06:15"},
		{Name: "Dhuhr", Time: "12:10"},
		{Name: "Asr", Time: "15:30"},
		{Name: "Maghrib", Time: "18:05"},
		{Name: "Isha", Time: "19:35"},
	}
	r := clock.ReadingAt(time.Date(2026, 10, 19, 13, 0, 7, 0, time.UTC))
	res, err := prayer.Resolve(timings, r)
	if err != nil {
		t.Fatal(err)
	}
	return watch.Update{Reading: r, Result: res, Timings: timings}
}

func TestRenderFrame_English(t *testing.T) {
	SetEnabled(false)

	got := RenderFrame(Frame{Update: sampleUpdate(t), Lang: prayer.LangEnglish, Place: "Riyadh"})

	for _, want := range []string{
		"Prayer Times",
		"13:00:07",
		"Monday, 19 October 2026",
		"Riyadh",
		"Next prayer",
		"🌤️ Asr  15:30",
		"in 2:30",
		"Fajr",
		"19:35",
	} {
		assert.Contains(t, got, want)
	}
}

func TestRenderFrame_Arabic(t *testing.T) {
	SetEnabled(false)

	got := RenderFrame(Frame{Update: sampleUpdate(t), Lang: prayer.LangArabic, TimeLayout: "3:04 PM", Hijri: "7 جمادى الأولى 1448 هـ"})

	for _, want := range []string{
		"مواقيت الصلاة",
		"الصلاة القادمة",
		"العصر",
		"3:30 PM",
		"بعد 2:30",
		"الاثنين، 19 أكتوبر 2026",
		"هـ",
	} {
		assert.Contains(t, got, want)
	}
}

func TestRenderFrame_HighlightsNext(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	got := RenderFrame(Frame{Update: sampleUpdate(t)})

	var asrLine string
	for _, l := range strings.Split(got, "\n") {
		if strings.Contains(l, "15:30") && strings.Contains(l, "🌤️") && !strings.Contains(l, "Asr\033") {
			asrLine = l
		}
	}
	assert.Contains(t, asrLine, "\033[1;36m")
}

func TestRenderFrame_Error(t *testing.T) {
	SetEnabled(false)

	u := sampleUpdate(t)
	u.Err = prayer.ErrOutOfOrder
	got := RenderFrame(Frame{Update: u})

	assert.Contains(t, got, "error: timings are not in chronological order")
	assert.NotContains(t, got, "Next prayer")
}

func TestLiveView(t *testing.T) {
	SetEnabled(false)

	var buf bytes.Buffer
	v := NewLiveView(&buf, Frame{Lang: prayer.LangArabic}, true)

	v.Loading()
	assert.Equal(t, clearScreen+"  جاري التحميل...\n", buf.String())

	buf.Reset()
	v.Send(sampleUpdate(t))
	assert.True(t, strings.HasPrefix(buf.String(), clearScreen))
	assert.Contains(t, buf.String(), "العصر")
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Friday, 23 October 2026", FormatDate(d, prayer.LangEnglish))
	assert.Equal(t, "الجمعة، 23 أكتوبر 2026", FormatDate(d, prayer.LangArabic))
}

func TestTextFor_UnknownFallsBack(t *testing.T) {
	assert.Equal(t, "Prayer Times", TextFor("fr").Title)
	assert.Equal(t, "rtl", TextFor(prayer.LangArabic).Dir)
}
