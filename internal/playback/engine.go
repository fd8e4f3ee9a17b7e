package playback

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/llehouerou/resona/internal/errmsg"
	"github.com/llehouerou/resona/internal/library"
	"github.com/llehouerou/resona/internal/player"
	"github.com/llehouerou/resona/internal/playlist"
	"github.com/llehouerou/resona/internal/store"
)

// Command errors. Both are recoverable: the caller may retry once a queue
// is loaded / initialization completes.
var (
	ErrNoCurrentTrack     = errors.New("no current track")
	ErrDecoderUnavailable = errors.New("decoder not initialized")
)

// DecoderFactory creates a fresh decoder adapter. The engine calls it at
// Start and again whenever the failure supervisor forces a
// reinitialization.
type DecoderFactory func() (player.Interface, error)

// Options tunes the engine. Zero values use defaults.
type Options struct {
	FailureThreshold int           // consecutive decoder errors before reinit (default 5)
	FastTick         time.Duration // position cadence while playing (default 100ms)
	SlowTick         time.Duration // position cadence while paused (default 500ms)
	ExtendBatchSize  int           // tracks appended by auto-extend (default 10)
}

const (
	defaultFailureThreshold = 5
	defaultExtendBatchSize  = 10
)

func (o Options) withDefaults() Options {
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = defaultFailureThreshold
	}
	if o.FastTick <= 0 {
		o.FastTick = defaultFastTick
	}
	if o.SlowTick <= 0 {
		o.SlowTick = defaultSlowTick
	}
	if o.ExtendBatchSize <= 0 {
		o.ExtendBatchSize = defaultExtendBatchSize
	}
	return o
}

// Verify engine implements Service at compile time.
var _ Service = (*engine)(nil)

// engine is the playback state synchronizer: the single writer of State.
//
// Every mutation happens under mu. Decoder signals and ticker ticks are
// funnelled through goroutines that take mu before touching anything, so
// no two writers ever race on the state; user commands serialize on the
// same mutex. A queue rebuild holds mu for its whole duration, which is
// the "rebuild runs to completion before another begins" policy.
type engine struct {
	mu sync.Mutex

	st         store.Interface
	newDecoder DecoderFactory
	builder    *playlist.Builder
	opts       Options

	dec     player.Interface
	queue   *playlist.PlayingQueue
	catalog []library.Track

	repeat   RepeatMode
	shuffle  bool
	speed    float64
	volume   float64
	settings store.Settings

	playing    bool
	optimistic bool // playing flag is a guess awaiting decoder confirmation
	position   time.Duration
	duration   time.Duration
	buffered   time.Duration

	ticker *ticker
	sleep  *sleepTimer
	sup    supervisor

	subs   []*Subscription
	subsMu sync.RWMutex

	queueSaves chan store.QueueSnapshot

	done   chan struct{}
	closed bool
}

// New creates the playback engine. Call Start before issuing commands.
func New(st store.Interface, factory DecoderFactory, opts Options) Service {
	e := &engine{
		st:         st,
		newDecoder: factory,
		builder:    playlist.NewBuilder(),
		opts:       opts.withDefaults(),
		queue:      playlist.NewQueue(),
		speed:      1.0,
		volume:     1.0,
		queueSaves: make(chan store.QueueSnapshot, 1),
		done:       make(chan struct{}),
	}
	e.ticker = newTicker(e.opts.FastTick, e.opts.SlowTick, e.onTick)
	e.sleep = newSleepTimer(e.onSleepExpired)
	e.sup.threshold = e.opts.FailureThreshold
	e.sup.cond = sync.NewCond(&e.sup.mu)
	go e.queueSaver()
	return e
}

// NewWithBuilder is New with a custom queue builder (used by tests to skip
// on-disk track validation).
func NewWithBuilder(st store.Interface, factory DecoderFactory, b *playlist.Builder, opts Options) Service {
	e := New(st, factory, opts).(*engine)
	e.builder = b
	return e
}

// Start runs the initialization sequence: create the decoder, load
// settings, restore the persisted queue, begin consuming signals.
func (e *engine) Start() error {
	return e.initialize()
}

// Close shuts the engine down and releases the decoder.
func (e *engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.ticker.shutdown()
	e.sleep.Cancel()
	dec := e.dec
	e.dec = nil
	// Enqueue the final snapshot before signalling done, so the saver
	// flushes it on its way out.
	e.persistQueueLocked()
	close(e.done)
	e.mu.Unlock()

	if dec != nil {
		_ = dec.Close()
	}

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()
	return nil
}

// --- playback control ---

func (e *engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	cur := e.queue.Current()
	if cur == nil {
		zlog.Warn().Msg("play requested with no current track")
		return ErrNoCurrentTrack
	}

	// After a natural end (or a stop) the decoder sits in a terminal
	// state; play must restart from the top of the current track rather
	// than no-op.
	if st := e.dec.State(); st == player.Completed || st == player.Idle {
		if err := e.dec.Seek(0, e.queue.CurrentIndex()); err != nil {
			return errors.Wrap(err, string(errmsg.OpPlay))
		}
		e.position = 0
	}

	// Optimistic: flip the flag before the decoder confirms so the UI
	// responds immediately; the next authoritative signal reconciles.
	e.playing = true
	e.optimistic = true
	e.publishLocked()

	if err := e.dec.Play(); err != nil {
		e.playing = false
		e.optimistic = false
		e.publishLocked()
		e.sendError(errmsg.OpPlay, err)
		return errors.Wrap(err, string(errmsg.OpPlay))
	}
	return nil
}

func (e *engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	if e.queue.Current() == nil {
		zlog.Warn().Msg("pause requested with no current track")
		return ErrNoCurrentTrack
	}

	wasPlaying := e.playing
	e.playing = false
	e.optimistic = true
	e.publishLocked()

	if err := e.dec.Pause(); err != nil {
		e.playing = wasPlaying
		e.optimistic = false
		e.publishLocked()
		e.sendError(errmsg.OpPause, err)
		return errors.Wrap(err, string(errmsg.OpPause))
	}
	return nil
}

func (e *engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	if err := e.dec.Stop(); err != nil {
		e.sendError(errmsg.OpStop, err)
		return errors.Wrap(err, string(errmsg.OpStop))
	}
	e.playing = false
	e.optimistic = false
	e.position = 0
	e.publishLocked()
	return nil
}

func (e *engine) Toggle() error {
	e.mu.Lock()
	playing := e.playing
	e.mu.Unlock()
	if playing {
		return e.Pause()
	}
	return e.Play()
}

func (e *engine) SeekTo(position time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	if e.queue.Current() == nil {
		return ErrNoCurrentTrack
	}
	if position < 0 {
		position = 0
	}

	prev := e.position
	e.position = position
	e.publishLocked()

	if err := e.dec.Seek(position, -1); err != nil {
		e.position = prev
		e.publishLocked()
		e.sendError(errmsg.OpSeek, err)
		return errors.Wrap(err, string(errmsg.OpSeek))
	}
	return nil
}

func (e *engine) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue.IsEmpty() {
		zlog.Warn().Msg("skip-next on empty queue")
		return nil
	}
	action, target := nextAction(e.repeat, e.queue.CurrentIndex(), e.queue.Len())
	return e.applySkipLocked(action, target)
}

func (e *engine) Previous() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue.IsEmpty() {
		zlog.Warn().Msg("skip-previous on empty queue")
		return nil
	}
	action, target := prevAction(e.repeat, e.queue.CurrentIndex(), e.queue.Len())
	return e.applySkipLocked(action, target)
}

func (e *engine) JumpTo(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= e.queue.Len() {
		return errors.Newf("jump index %d out of range", index)
	}
	return e.applySkipLocked(skipAdvance, index)
}

func (e *engine) applySkipLocked(action skipAction, target int) error {
	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	switch action {
	case skipNone:
		return nil
	case skipRestart:
		if err := e.dec.Seek(0, e.queue.CurrentIndex()); err != nil {
			e.sendError(errmsg.OpSkip, err)
			return errors.Wrap(err, string(errmsg.OpSkip))
		}
		e.position = 0
		e.publishLocked()
		return nil
	default:
		if err := e.dec.Seek(0, target); err != nil {
			e.sendError(errmsg.OpSkip, err)
			return errors.Wrap(err, string(errmsg.OpSkip))
		}
		e.setIndexLocked(target)
		return nil
	}
}

// --- queue manipulation ---

// SetQueue rebuilds the queue from a user selection. The build policy is
// the builder's: a single track expands to the catalog in display order,
// a multi-track selection is used verbatim. Validation failures return
// without mutating any state. The mutex is held across the whole rebuild,
// so a rebuild always runs to completion before the next one starts.
func (e *engine) SetQueue(selection []library.Track) error {
	catalog, err := e.st.AllTracks()
	if err != nil {
		return errors.Wrap(err, string(errmsg.OpQueueBuild))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	e.catalog = catalog

	tracks, index, err := e.builder.Build(selection, catalog)
	if err != nil {
		return err
	}

	if err := e.dec.Stop(); err != nil {
		zlog.Warn().Err(err).Msg("stopping decoder before queue rebuild")
	}
	if err := e.dec.Open(tracks, index); err != nil {
		e.sendError(errmsg.OpDecoderOpen, err)
		return errors.Wrap(err, string(errmsg.OpDecoderOpen))
	}

	e.queue.Replace(index, tracks...)
	e.playing = false
	e.optimistic = false
	e.position = 0
	e.duration = e.dec.Duration()
	e.buffered = e.dec.Buffered()
	e.publishLocked()
	e.persistQueueLocked()
	return nil
}

func (e *engine) AddQueueItems(tracks ...library.Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	playable := e.builder.FilterPlayable(tracks)
	if len(playable) == 0 {
		return playlist.ErrEmptyQueue
	}

	wasEmpty := e.queue.IsEmpty()
	e.queue.Add(playable...)
	if wasEmpty {
		if err := e.dec.Open(e.queue.Tracks(), e.queue.CurrentIndex()); err != nil {
			e.queue.Clear()
			e.sendError(errmsg.OpQueueAdd, err)
			return errors.Wrap(err, string(errmsg.OpQueueAdd))
		}
		e.duration = e.dec.Duration()
		e.buffered = e.dec.Buffered()
	} else {
		e.dec.Append(playable...)
	}
	e.publishLocked()
	e.persistQueueLocked()
	return nil
}

func (e *engine) RemoveQueueItem(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	removedCurrent := index == e.queue.CurrentIndex()
	if !e.queue.RemoveAt(index) {
		return errors.Newf("remove index %d out of range", index)
	}

	if e.queue.IsEmpty() {
		if err := e.dec.Stop(); err != nil {
			zlog.Warn().Err(err).Msg("stopping decoder after queue drain")
		}
		e.playing = false
		e.optimistic = false
		e.position = 0
		e.duration = 0
		e.buffered = 0
	} else if err := e.resyncDecoderLocked(!removedCurrent); err != nil {
		e.sendError(errmsg.OpQueueRemove, err)
		return errors.Wrap(err, string(errmsg.OpQueueRemove))
	}
	e.publishLocked()
	e.persistQueueLocked()
	return nil
}

func (e *engine) MoveQueueItem(fromIndex, toIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	if !e.queue.Move(fromIndex, toIndex) {
		return errors.Newf("move %d -> %d out of range", fromIndex, toIndex)
	}
	if fromIndex == toIndex {
		return nil
	}
	if err := e.resyncDecoderLocked(true); err != nil {
		e.sendError(errmsg.OpQueueMove, err)
		return errors.Wrap(err, string(errmsg.OpQueueMove))
	}
	e.publishLocked()
	e.persistQueueLocked()
	return nil
}

func (e *engine) ClearQueue() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dec == nil {
		return ErrDecoderUnavailable
	}
	if err := e.dec.Stop(); err != nil {
		zlog.Warn().Err(err).Msg("stopping decoder on queue clear")
	}
	e.queue.Clear()
	e.playing = false
	e.optimistic = false
	e.position = 0
	e.duration = 0
	e.buffered = 0
	e.publishLocked()
	e.persistQueueLocked()
	return nil
}

// resyncDecoderLocked reloads the decoder's source list after a queue edit
// the adapter cannot express itself, restoring position and playback.
func (e *engine) resyncDecoderLocked(keepPosition bool) error {
	index := e.queue.CurrentIndex()
	pos := time.Duration(0)
	if keepPosition {
		pos = e.dec.Position()
	}
	wasPlaying := e.playing

	if err := e.dec.Open(e.queue.Tracks(), index); err != nil {
		return err
	}
	if pos > 0 {
		if err := e.dec.Seek(pos, index); err != nil {
			zlog.Warn().Err(err).Msg("restoring position after queue edit")
			pos = 0
		}
	}
	e.position = pos
	e.duration = e.dec.Duration()
	e.buffered = e.dec.Buffered()
	if wasPlaying {
		if err := e.dec.Play(); err != nil {
			return err
		}
	}
	return nil
}

// --- mode control ---

func (e *engine) RepeatMode() RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repeat
}

func (e *engine) SetRepeatMode(mode RepeatMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.repeat == mode {
		return
	}
	e.repeat = mode
	if e.dec != nil {
		e.dec.SetLoopMode(loopModeFor(mode))
	}
	e.publishLocked()
	e.persistSettingsLocked()
}

func (e *engine) CycleRepeatMode() RepeatMode {
	e.mu.Lock()
	next := RepeatMode((int(e.repeat) + 1) % 3)
	e.mu.Unlock()
	e.SetRepeatMode(next)
	return next
}

func (e *engine) Shuffle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shuffle
}

// SetShuffle forwards the flag to the decoder; shuffled ordering itself is
// the decoder's capability and the engine only tracks the reported index.
func (e *engine) SetShuffle(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shuffle == enabled {
		return
	}
	e.shuffle = enabled
	if e.dec != nil {
		e.dec.SetShuffle(enabled)
	}
	e.publishLocked()
	e.persistSettingsLocked()
}

func (e *engine) ToggleShuffle() bool {
	e.mu.Lock()
	next := !e.shuffle
	e.mu.Unlock()
	e.SetShuffle(next)
	return next
}

func (e *engine) SetSpeed(ratio float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ratio <= 0 {
		return errors.Newf("invalid speed %f", ratio)
	}
	if e.dec != nil {
		if err := e.dec.SetSpeed(ratio); err != nil {
			return errors.Wrap(err, string(errmsg.OpSpeed))
		}
	}
	e.speed = ratio
	e.publishLocked()
	e.persistSettingsLocked()
	return nil
}

func (e *engine) SetVolume(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	e.volume = level
	if e.dec != nil {
		e.dec.SetVolume(level)
	}
	e.persistSettingsLocked()
}

// --- sleep timer ---

func (e *engine) StartSleepTimer(minutes int) {
	if minutes <= 0 {
		e.CancelSleepTimer()
		return
	}
	e.sleep.Start(time.Duration(minutes) * time.Minute)
	e.mu.Lock()
	e.settings.SleepTimerMinutes = minutes
	e.persistSettingsLocked()
	e.mu.Unlock()
	zlog.Info().Int("minutes", minutes).Msg("sleep timer armed")
}

func (e *engine) CancelSleepTimer() {
	e.sleep.Cancel()
	e.mu.Lock()
	e.settings.SleepTimerMinutes = 0
	e.persistSettingsLocked()
	e.mu.Unlock()
}

func (e *engine) SleepTimerRemaining() time.Duration {
	return e.sleep.Remaining()
}

func (e *engine) onSleepExpired() {
	zlog.Info().Msg("sleep timer expired, pausing")
	if err := e.Pause(); err != nil {
		zlog.Warn().Err(err).Msg("sleep timer pause failed")
	}
	e.mu.Lock()
	e.settings.SleepTimerMinutes = 0
	e.persistSettingsLocked()
	e.mu.Unlock()
}

// --- state queries ---

func (e *engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *engine) CurrentTrack() *Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return trackFromLibrary(e.queue.Current())
}

func (e *engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *engine) Settings() store.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settingsLocked()
}

func (e *engine) QueueTracks() []library.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Tracks()
}

func (e *engine) QueueCurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.CurrentIndex()
}

func (e *engine) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

func (e *engine) QueueIsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.IsEmpty()
}

func (e *engine) QueueHasNext() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.HasNext()
}

// Subscribe creates a new event subscription.
func (e *engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// --- signal handling ---

// consumeSignals drains one decoder's signal channel. It exits when the
// channel closes (decoder replaced or engine shut down).
func (e *engine) consumeSignals(dec player.Interface) {
	for {
		select {
		case <-e.done:
			return
		case sig, ok := <-dec.Signals():
			if !ok {
				return
			}
			e.handleSignal(dec, sig)
		}
	}
}

func (e *engine) handleSignal(dec player.Interface, sig player.Signal) {
	if sig.Kind == player.SignalError {
		e.onDecoderError(sig.Err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dec != dec {
		// Stale signal from a decoder that has been replaced. It must not
		// reach the supervisor either: a buffered success from the old
		// decoder says nothing about the health of the new one.
		return
	}
	e.sup.reset()

	switch sig.Kind {
	case player.SignalPosition:
		e.position = sig.Position
		e.reconcileLocked()
		e.publishLocked()
		e.publishPositionLocked()

	case player.SignalDuration:
		e.duration = sig.Duration
		e.buffered = e.dec.Buffered()
		e.publishLocked()

	case player.SignalState:
		e.onProcStateLocked(sig.State)

	case player.SignalIndex:
		e.onIndexAdvancedLocked(sig.Index)

	case player.SignalFinished:
		e.onFinishedLocked()
	}
}

// reconcileLocked replaces the optimistic playing guess with the
// decoder's authoritative flag. Safe to run on every signal.
func (e *engine) reconcileLocked() {
	e.optimistic = false
	e.playing = e.dec.Playing()
}

func (e *engine) onProcStateLocked(s player.ProcState) {
	switch s {
	case player.Completed:
		e.onFinishedLocked()
	case player.Buffering, player.Loading, player.Ready:
		e.buffered = e.dec.Buffered()
		e.publishLocked()
	case player.Idle:
		e.publishLocked()
	}
}

// onFinishedLocked handles end of the whole source list: the decoder has
// nothing further to play. The current track stays set so the UI keeps
// showing it, with the play affordance inviting a restart.
func (e *engine) onFinishedLocked() {
	if !e.playing && e.position == 0 {
		return // duplicate signal
	}
	e.playing = false
	e.optimistic = false
	e.position = 0
	e.publishLocked()
}

// onIndexAdvancedLocked tracks the decoder moving to another source index,
// either on its own at a track boundary or after a commanded seek.
// Idempotent: a duplicate signal for the already-current index produces no
// republish and no duplicate play-count.
func (e *engine) onIndexAdvancedLocked(index int) {
	if index == e.queue.CurrentIndex() {
		return
	}
	e.setIndexLocked(index)
}

// setIndexLocked is the single place the current index changes. It
// republishes, records play statistics asynchronously and extends the
// queue when it is about to run dry.
func (e *engine) setIndexLocked(index int) {
	t := e.queue.JumpTo(index)
	if t == nil {
		zlog.Warn().Int("index", index).Int("len", e.queue.Len()).
			Msg("decoder reported index outside queue")
		return
	}
	e.position = 0
	e.duration = e.dec.Duration()
	e.buffered = e.dec.Buffered()
	e.publishLocked()
	e.persistQueueLocked()

	// Play statistics must never affect playback; record off to the side.
	id := t.ID
	go func() {
		if err := e.st.IncrementPlayCount(id); err != nil {
			zlog.Warn().Err(err).Int64("track", id).Msg(string(errmsg.OpPlayStats))
		}
		if err := e.st.RecordRecentlyPlayed(id); err != nil {
			zlog.Warn().Err(err).Int64("track", id).Msg(string(errmsg.OpPlayStats))
		}
	}()

	e.maybeExtendLocked()
}

// maybeExtendLocked proactively appends catalog tracks when playback under
// repeat=off is within reach of the end of the queue, so continuous
// playback does not stall waiting for a rebuild.
func (e *engine) maybeExtendLocked() {
	if e.repeat != RepeatOff {
		return
	}
	remaining := e.queue.Len() - 1 - e.queue.CurrentIndex()
	if remaining > extendWindow {
		return
	}
	batch := nextExtendBatch(e.catalog, e.queue.Tracks(), e.opts.ExtendBatchSize)
	if len(batch) == 0 {
		return
	}
	e.queue.Add(batch...)
	e.dec.Append(batch...)
	zlog.Debug().Int("count", len(batch)).Msg("auto-extended queue from catalog")
	e.publishLocked()
	e.persistQueueLocked()
}

// --- ticker ---

// onTick re-reads the decoder position and republishes even when nothing
// changed: a subscriber that missed the last decoder signal converges
// here.
func (e *engine) onTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dec == nil || e.queue.Current() == nil {
		return
	}
	e.position = e.dec.Position()
	e.buffered = e.dec.Buffered()
	e.reconcileLocked()
	e.publishLocked()
	e.publishPositionLocked()
}

// --- publication ---

func (e *engine) snapshotLocked() State {
	cur := trackFromLibrary(e.queue.Current())
	playing := e.playing
	if cur == nil {
		playing = false
	}
	return State{
		Track:    cur,
		Index:    e.queue.CurrentIndex(),
		Playing:  playing,
		Position: e.position,
		Duration: e.duration,
		Buffered: e.buffered,
		Speed:    e.speed,
		Repeat:   e.repeat,
		Shuffle:  e.shuffle,
		Controls: Controls{
			CanPlay:     cur != nil && !playing,
			CanPause:    playing,
			CanNext:     cur != nil,
			CanPrevious: cur != nil,
			CanSeek:     cur != nil,
		},
	}
}

func (e *engine) publishLocked() {
	snap := e.snapshotLocked()

	switch {
	case snap.Playing:
		e.ticker.setMode(tickFast)
	case snap.Track != nil:
		e.ticker.setMode(tickSlow)
	default:
		e.ticker.setMode(tickOff)
	}

	e.subsMu.RLock()
	for _, sub := range e.subs {
		sub.sendState(snap)
	}
	e.subsMu.RUnlock()
}

func (e *engine) publishPositionLocked() {
	pos := e.position
	e.subsMu.RLock()
	for _, sub := range e.subs {
		sub.sendPosition(pos)
	}
	e.subsMu.RUnlock()
}

func (e *engine) sendError(op errmsg.Op, err error) {
	ev := ErrorEvent{Operation: string(op), Err: err}
	e.subsMu.RLock()
	for _, sub := range e.subs {
		sub.sendError(ev)
	}
	e.subsMu.RUnlock()
}

// --- persistence ---

func (e *engine) persistQueueLocked() {
	tracks := e.queue.Tracks()
	ids := make([]int64, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	snap := store.QueueSnapshot{CurrentIndex: e.queue.CurrentIndex(), TrackIDs: ids}
	// Latest snapshot wins: if the saver is behind, the superseded one is
	// dropped rather than written out of order.
	for {
		select {
		case e.queueSaves <- snap:
			return
		default:
			select {
			case <-e.queueSaves:
			default:
			}
		}
	}
}

// queueSaver writes queue snapshots sequentially so a slow save can never
// land after a newer one. On shutdown it flushes the pending snapshot.
func (e *engine) queueSaver() {
	save := func(snap store.QueueSnapshot) {
		if err := e.st.SaveQueue(snap); err != nil {
			zlog.Warn().Err(err).Msg(string(errmsg.OpQueueSave))
		}
	}
	for {
		select {
		case snap := <-e.queueSaves:
			save(snap)
		case <-e.done:
			select {
			case snap := <-e.queueSaves:
				save(snap)
			default:
			}
			return
		}
	}
}

func (e *engine) settingsLocked() store.Settings {
	s := e.settings
	s.RepeatMode = int(e.repeat)
	s.Shuffle = e.shuffle
	s.Speed = e.speed
	s.Volume = e.volume
	return s
}

func (e *engine) persistSettingsLocked() {
	s := e.settingsLocked()
	e.settings = s
	go func() {
		if err := e.st.SaveSettings(s); err != nil {
			zlog.Warn().Err(err).Msg(string(errmsg.OpSettingsSave))
		}
	}()
}

func loopModeFor(mode RepeatMode) player.LoopMode {
	switch mode {
	case RepeatOne:
		return player.LoopOne
	case RepeatAll:
		return player.LoopAll
	default:
		return player.LoopOff
	}
}
