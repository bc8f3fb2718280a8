package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
	"github.com/smokyabdulrahman/salah-clock/internal/watch"
)

// Frame is one screen of the live countdown.
type Frame struct {
	Update     watch.Update
	Lang       string
	TimeLayout string // "15:04" or "3:04 PM"
	Hijri      string // optional second date line
	Place      string // optional location line
}

// RenderFrame draws the header clock, the next-prayer card and the
// day's timings, or the error state when the update carries an error.
func RenderFrame(f Frame) string {
	txt := TextFor(f.Lang)
	r := f.Update.Reading

	var sb strings.Builder
	sb.WriteString("  " + Bold(txt.Title) + "\n")
	sb.WriteString("  " + Cyan(fmt.Sprintf("%02d:%02d:%02d", r.Hour, r.Minute, r.Second)) + "\n")
	if !r.At.IsZero() {
		sb.WriteString("  " + Dim(FormatDate(r.At, f.Lang)) + "\n")
	}
	if f.Hijri != "" {
		sb.WriteString("  " + Dim(f.Hijri) + "\n")
	}
	if f.Place != "" {
		sb.WriteString("  " + Gray(f.Place) + "\n")
	}
	sb.WriteString("\n")

	if err := f.Update.Err; err != nil {
		sb.WriteString("  " + Red("error: "+err.Error()) + "\n")
		return sb.String()
	}

	res := f.Update.Result
	layout := f.TimeLayout
	if layout == "" {
		layout = "15:04"
	}

	sb.WriteString("  " + Dim(txt.NextPrayer) + "\n")
	sb.WriteString(fmt.Sprintf("  %s %s  %s\n",
		prayer.Icons[res.Name],
		Accent(prayer.Label(res.Name, f.Lang)),
		Bold(prayer.FormatClock(res.Time, layout))))
	sb.WriteString("  " + Yellow(txt.In+" "+res.Remaining) + "\n\n")

	tbl := NewTable([]string{"", "", ""})
	tbl.HideHeader()
	for i, t := range f.Update.Timings {
		tbl.AddRow([]string{prayer.Icons[t.Name], prayer.Label(t.Name, f.Lang), prayer.FormatClock(t.Time, layout)})
		if t.Name == res.Name {
			tbl.SetHighlightRow(i)
		}
	}
	sb.WriteString(tbl.Render())

	return sb.String()
}

// RenderLoading is the frame shown before the first timing set arrives.
func RenderLoading(lang string) string {
	return "  " + Dim(TextFor(lang).Loading) + "\n"
}

const clearScreen = "\033[H\033[2J"

// LiveView redraws the terminal on every update. It implements watch.Sink.
type LiveView struct {
	mu    sync.Mutex
	w     io.Writer
	frame Frame
	clear bool
}

// NewLiveView writes frames to w. When clear is set, each frame first
// clears the screen.
func NewLiveView(w io.Writer, base Frame, clear bool) *LiveView {
	return &LiveView{w: w, frame: base, clear: clear}
}

// Loading draws the loading state.
func (v *LiveView) Loading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.write(RenderLoading(v.frame.Lang))
}

// Send implements watch.Sink.
func (v *LiveView) Send(u watch.Update) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f := v.frame
	f.Update = u
	v.write(RenderFrame(f))
}

func (v *LiveView) write(s string) {
	if v.clear {
		s = clearScreen + s
	}
	io.WriteString(v.w, s)
}
