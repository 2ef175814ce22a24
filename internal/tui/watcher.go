package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// watcher turns filesystem events on the state directory into bubbletea
// messages so the view refreshes without waiting for the next tick.
type watcher struct {
	fs      *fsnotify.Watcher
	changed chan struct{}
	done    chan struct{}
}

func newWatcher(dir string) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}
	w := &watcher{
		fs:      fs,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}

// waitCmd blocks until the next change notification. Update re-arms it after
// every stateChangedMsg.
func (w *watcher) waitCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.changed:
			return stateChangedMsg{}
		case <-w.done:
			return nil
		}
	}
}

func (w *watcher) close() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	w.fs.Close()
}
