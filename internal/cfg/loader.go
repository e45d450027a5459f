package cfg

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/frans1705/genieacs-mikrotik/internal/logger"
)

type Loader struct {
	path   string
	getenv func(string) string
	log    zerolog.Logger

	mu        sync.RWMutex
	settings  Settings
	boundPort int
}

func NewLoader(path string) *Loader {
	return NewLoaderWithEnv(path, os.Getenv)
}

func NewLoaderWithEnv(path string, getenv func(string) string) *Loader {
	l := &Loader{
		path:   path,
		getenv: getenv,
		log:    logger.ComponentLogger("settings"),
	}
	l.Reload()
	return l
}

func (l *Loader) Path() string { return l.path }

// Reload re-derives the snapshot from file and environment. Once SetPort
// has run, the bound port overrides whatever the file says.
func (l *Loader) Reload() Settings {
	s := Resolve(LoadFile(l.path), l.getenv)

	l.mu.Lock()
	if l.boundPort > 0 {
		s.Port = strconv.Itoa(l.boundPort)
	}
	l.settings = s
	l.mu.Unlock()

	l.log.Info().
		Str("mikrotik", s.MikrotikHost+":"+s.MikrotikPort).
		Str("genieacs", s.GenieACSURL).
		Str("port", s.Port).
		Msg("settings initialized")
	return s
}

func (l *Loader) Get() Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.settings
}

// SetPort records the port the server actually bound.
func (l *Loader) SetPort(port int) {
	l.mu.Lock()
	l.boundPort = port
	l.settings.Port = strconv.Itoa(port)
	l.mu.Unlock()
}

// Watch reloads on writes to the settings file until ctx is done.
func (l *Loader) Watch(ctx context.Context) error {
	return watchFile(ctx, l.path, l.log, func() { l.Reload() })
}

// watchFile watches the parent dir so editors that replace the file
// (rename + create) are still picked up.
func watchFile(ctx context.Context, path string, log zerolog.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					log.Info().Str("path", path).Msg("file changed, reloading")
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("watch error")
			}
		}
	}()
	return nil
}
