package crewfile

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/crewos/crewos/pkg/models"
)

// Watcher reloads a crew declaration whenever the file changes on disk.
// Reloaded crews and reload failures are delivered on channels; a failed
// reload never replaces the last good crew.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	crews   chan *models.Crew
	errs    chan error
	done    chan struct{}
}

// Watch starts watching a crew file. The containing directory is watched
// rather than the file itself, so editors that replace the file on save are
// still observed.
func Watch(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		watcher: fw,
		crews:   make(chan *models.Crew, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			crew, err := Load(w.path)
			if err != nil {
				w.deliverErr(err)
				continue
			}
			w.deliverCrew(crew)
		case <-w.watcher.Errors:
			// Keep watching.
		}
	}
}

// deliverCrew replaces any undelivered crew with the newest one.
func (w *Watcher) deliverCrew(crew *models.Crew) {
	select {
	case w.crews <- crew:
	default:
		select {
		case <-w.crews:
		default:
		}
		w.crews <- crew
	}
}

func (w *Watcher) deliverErr(err error) {
	select {
	case w.errs <- err:
	default:
	}
}

// Crews delivers successfully reloaded crews.
func (w *Watcher) Crews() <-chan *models.Crew {
	return w.crews
}

// Errors delivers reload failures.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
