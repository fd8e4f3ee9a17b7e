package notify

import (
	"fmt"

	zlog "github.com/rs/zerolog/log"

	"github.com/llehouerou/resona/internal/playback"
)

const nowPlayingTimeout = 5000 // ms

// Watcher follows playback state changes and raises a "now playing"
// notification on every track change. Consecutive notifications replace
// each other so rapid skipping does not stack popups.
type Watcher struct {
	notifier Notifier
	sub      *playback.Subscription

	lastPath string
	lastID   uint32
	done     chan struct{}
}

// NewWatcher subscribes to the service and starts notifying. Returns nil
// when the notifier is nil (notifications disabled).
func NewWatcher(notifier Notifier, service playback.Service) *Watcher {
	if notifier == nil {
		return nil
	}
	w := &Watcher{
		notifier: notifier,
		sub:      service.Subscribe(),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Stop ends the watch loop. The subscription itself is torn down by the
// service on Close.
func (w *Watcher) Stop() {
	if w == nil {
		return
	}
	close(w.done)
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case <-w.sub.Done:
			return
		case st, ok := <-w.sub.States:
			if !ok {
				return
			}
			w.onState(st)
		}
	}
}

func (w *Watcher) onState(st playback.State) {
	if st.Track == nil || !st.Playing {
		return
	}
	if st.Track.Path == w.lastPath {
		return
	}
	w.lastPath = st.Track.Path

	id, err := w.notifier.Notify(Notification{
		Title:      st.Track.Title,
		Body:       fmt.Sprintf("%s · %s", st.Track.Artist, st.Track.Album),
		Icon:       st.Track.ArtworkPath,
		Timeout:    nowPlayingTimeout,
		ReplacesID: w.lastID,
		Urgency:    UrgencyLow,
	})
	if err != nil {
		zlog.Debug().Err(err).Msg("now-playing notification failed")
		return
	}
	w.lastID = id
}
