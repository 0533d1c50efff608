package watcher

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/emberhaus/hotswap/pkg/graph"
)

// ChangeStatus describes what happened to a watched path.
type ChangeStatus int

const (
	Modified ChangeStatus = iota
	Created
	Deleted
	Renamed
)

func (s ChangeStatus) String() string {
	return []string{"modified", "created", "deleted", "renamed"}[s]
}

// Event is one asset change delivered to the embedding application.
type Event struct {
	Path   string
	Kind   graph.AssetKind
	Status ChangeStatus
}

// Watcher translates fsnotify events into Events. It runs one goroutine on
// the caller's behalf; Close stops it.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan Event
	log    *logrus.Logger
	quit   chan struct{}
	done   chan struct{}

	closeOnce sync.Once
}

// New creates a watcher. The logger may be nil.
func New(log *logrus.Logger) (*Watcher, error) {
	if log == nil {
		log = logrus.New()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:     fs,
		events: make(chan Event, 64),
		log:    log,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Add starts watching a directory or file.
func (w *Watcher) Add(path string) error {
	return w.fs.Add(path)
}

// Events returns the channel change events are delivered on. The channel is
// closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the watcher and closes the event channel. It unblocks the run
// goroutine even when the event buffer is full and nobody is draining it.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() { close(w.quit) })
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.events)

	for {
		select {
		case <-w.quit:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			status, relevant := translate(ev.Op)
			if !relevant {
				continue
			}
			out := Event{
				Path:   ev.Name,
				Kind:   graph.ClassifyPath(ev.Name),
				Status: status,
			}
			// The send must stay interruptible: a full buffer with no
			// consumer would otherwise pin this goroutine forever.
			select {
			case w.events <- out:
			case <-w.quit:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("filesystem watch error")
		}
	}
}

// translate maps fsnotify ops onto the change statuses the engine reacts
// to. Chmod-only events are noise and dropped.
func translate(op fsnotify.Op) (ChangeStatus, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Created, true
	case op.Has(fsnotify.Write):
		return Modified, true
	case op.Has(fsnotify.Remove):
		return Deleted, true
	case op.Has(fsnotify.Rename):
		return Renamed, true
	default:
		return Modified, false
	}
}
