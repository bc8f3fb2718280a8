// Package web serves the prayer times page, its JSON API and a live
// server-sent event stream of the countdown.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/display"
	"github.com/smokyabdulrahman/salah-clock/internal/geo"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
	"github.com/smokyabdulrahman/salah-clock/internal/watch"
)

//go:embed templates/*.html
var templateFS embed.FS

// Day is the timing set the server is showing.
type Day struct {
	Timings  []prayer.Timing
	Date     api.DateInfo
	Location geo.Location
	Fallback bool
}

// Options configures a Server.
type Options struct {
	Lang       string // default page language
	TimeLayout string // "15:04" or "3:04 PM"
	Log        zerolog.Logger
}

// Server holds the page state. It is a watch.Sink: the session feeds it
// every tick and it forwards ticks to stream subscribers.
type Server struct {
	engine *gin.Engine
	hub    *Hub
	opts   Options

	mu   sync.RWMutex
	day  *Day
	err  error
	last *watch.Update
}

// NewServer builds the router. The page shows the loading state until
// SetDay or SetError is called.
func NewServer(opts Options) *Server {
	if !prayer.ValidLanguage(opts.Lang) {
		opts.Lang = prayer.LangEnglish
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = "15:04"
	}

	s := &Server{hub: NewHub(), opts: opts}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Log))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods:    []string{"GET", "OPTIONS", "HEAD"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Cache-Control"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/timings", s.handleTimings)
		apiGroup.GET("/next", s.handleNext)
		apiGroup.GET("/stream", s.handleStream)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Hub returns the stream hub.
func (s *Server) Hub() *Hub { return s.hub }

// SetDay replaces the day being shown and clears any error.
func (s *Server) SetDay(d Day) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = &d
	s.err = nil
}

// SetError puts the page in the error state.
func (s *Server) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Send implements watch.Sink.
func (s *Server) Send(u watch.Update) {
	s.mu.Lock()
	s.last = &u
	if s.day != nil && u.Err == nil {
		s.day.Timings = u.Timings
	}
	s.mu.Unlock()

	s.hub.Send(u)
}

type snapshot struct {
	day  *Day
	err  error
	last *watch.Update
}

func (s *Server) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{err: s.err}
	if s.day != nil {
		d := *s.day
		snap.day = &d
	}
	if s.last != nil {
		u := *s.last
		snap.last = &u
	}
	return snap
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) lang(c *gin.Context) string {
	if l := c.Query("lang"); prayer.ValidLanguage(l) {
		return l
	}
	return s.opts.Lang
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "subscribers": s.hub.Len()})
}

func (s *Server) handleIndex(c *gin.Context) {
	lang := s.lang(c)
	c.HTML(http.StatusOK, "index.html", s.pageData(s.snapshot(), lang))
}

func (s *Server) handleNext(c *gin.Context) {
	snap := s.snapshot()
	switch {
	case snap.err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": snap.err.Error()})
	case snap.last == nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
	case snap.last.Err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": snap.last.Err.Error()})
	default:
		c.JSON(http.StatusOK, snap.last.Result)
	}
}

type timingView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Time  string `json:"time"`
	Icon  string `json:"icon"`
	Next  bool   `json:"next"`
}

type timingsResponse struct {
	Date     string         `json:"date"`
	Hijri    string         `json:"hijri"`
	Location geo.Location   `json:"location"`
	Fallback bool           `json:"fallback"`
	Timings  []timingView   `json:"timings"`
	Next     *prayer.Result `json:"next,omitempty"`
}

func (s *Server) handleTimings(c *gin.Context) {
	snap := s.snapshot()
	if snap.err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": snap.err.Error()})
		return
	}
	if snap.day == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}

	lang := s.lang(c)
	resp := timingsResponse{
		Date:     snap.day.Date.Readable,
		Hijri:    hijri(snap.day.Date.Hijri, lang),
		Location: snap.day.Location,
		Fallback: snap.day.Fallback,
	}
	next := ""
	if snap.last != nil && snap.last.Err == nil {
		resp.Next = &snap.last.Result
		next = snap.last.Result.Name
	}
	resp.Timings = s.timingViews(snap.day.Timings, next, lang)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) timingViews(timings []prayer.Timing, next, lang string) []timingView {
	views := make([]timingView, len(timings))
	for i, t := range timings {
		views[i] = timingView{
			Name:  t.Name,
			Label: prayer.Label(t.Name, lang),
			Time:  prayer.FormatClock(t.Time, s.opts.TimeLayout),
			Icon:  prayer.Icons[t.Name],
			Next:  t.Name == next,
		}
	}
	return views
}

// streamEvent is the payload of each "tick" event.
type streamEvent struct {
	Clock     string `json:"clock"`
	Name      string `json:"name,omitempty"`
	Label     string `json:"label,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Time      string `json:"time,omitempty"`
	Remaining string `json:"remaining,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) event(u watch.Update, lang string) streamEvent {
	ev := streamEvent{Clock: clockText(u.Reading)}
	if u.Err != nil {
		ev.Error = display.TextFor(lang).InvalidTimings
		return ev
	}
	ev.Name = u.Result.Name
	ev.Label = prayer.Label(u.Result.Name, lang)
	ev.Icon = prayer.Icons[u.Result.Name]
	ev.Time = prayer.FormatClock(u.Result.Time, s.opts.TimeLayout)
	ev.Remaining = u.Result.Remaining
	return ev
}

func (s *Server) handleStream(c *gin.Context) {
	lang := s.lang(c)
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	if snap := s.snapshot(); snap.last != nil {
		c.SSEvent("tick", s.event(*snap.last, lang))
		c.Writer.Flush()
	}

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case u := <-ch:
			c.SSEvent("tick", s.event(u, lang))
			return true
		}
	})
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}
