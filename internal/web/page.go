package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/clock"
	"github.com/smokyabdulrahman/salah-clock/internal/display"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
)

// pageState is the state the page renders in.
type pageState string

const (
	stateLoading pageState = "loading"
	stateError   pageState = "error"
	stateReady   pageState = "ready"
)

type nextView struct {
	Label     string
	Icon      string
	Time      string
	Remaining string
}

type pageData struct {
	Lang    string
	Text    display.Text
	State   pageState
	Message string
	Clock   string
	Date    string
	Hijri   string
	Place   string
	Next    *nextView
	Timings []timingView
}

func (s *Server) pageData(snap snapshot, lang string) pageData {
	d := pageData{
		Lang:  lang,
		Text:  display.TextFor(lang),
		State: stateLoading,
	}

	now := time.Now()
	if snap.last != nil {
		d.Clock = clockText(snap.last.Reading)
		now = snap.last.Reading.At
	}
	d.Date = display.FormatDate(now, lang)

	if snap.err != nil {
		d.State = stateError
		d.Message = errorText(snap.err, d.Text)
		return d
	}
	if snap.day == nil {
		return d
	}

	d.State = stateReady
	d.Hijri = hijri(snap.day.Date.Hijri, lang)
	d.Place = place(snap.day)

	next := ""
	if snap.last != nil {
		if snap.last.Err != nil {
			s.opts.Log.Warn().Err(snap.last.Err).Msg("rendering invalid timings")
			d.State = stateError
			d.Message = d.Text.InvalidTimings
			return d
		}
		res := snap.last.Result
		next = res.Name
		d.Next = &nextView{
			Label:     prayer.Label(res.Name, lang),
			Icon:      prayer.Icons[res.Name],
			Time:      prayer.FormatClock(res.Time, s.opts.TimeLayout),
			Remaining: res.Remaining,
		}
	}
	d.Timings = s.timingViews(snap.day.Timings, next, lang)
	return d
}

// errorText maps a fetch error to the page's message. Errors where no
// response arrived are connection errors.
func errorText(err error, txt display.Text) string {
	var fe *api.FetchError
	if errors.As(err, &fe) && fe.StatusCode == 0 && fe.Code == 0 {
		return txt.ConnectionError
	}
	return txt.FetchFailed
}

func hijri(h api.HijriDate, lang string) string {
	if lang == prayer.LangArabic {
		return h.FormatArabic()
	}
	return h.Format()
}

func place(d *Day) string {
	loc := d.Location
	var p string
	switch {
	case loc.City != "" && loc.Country != "":
		p = loc.City + ", " + loc.Country
	case loc.City != "":
		p = loc.City
	default:
		p = fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
	}
	if d.Fallback {
		p += " *"
	}
	return p
}

func clockText(r clock.Reading) string {
	return fmt.Sprintf("%02d:%02d:%02d", r.Hour, r.Minute, r.Second)
}
