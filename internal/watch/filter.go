package watch

import "sync"

// OnChange wraps sink so it only sees updates whose next prayer or
// remaining minutes differ from the previous one. Errors always pass.
func OnChange(sink Sink) Sink {
	var (
		mu   sync.Mutex
		seen bool
		prev Update
	)
	return SinkFunc(func(u Update) {
		mu.Lock()
		changed := !seen || u.Err != nil ||
			u.Result.Name != prev.Result.Name ||
			u.Result.Minutes != prev.Result.Minutes
		seen, prev = true, u
		mu.Unlock()

		if changed {
			sink.Send(u)
		}
	})
}
