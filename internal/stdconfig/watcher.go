package stdconfig

import (
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// WatchOverlay watches overlayPath for writes and reloads cat on every
// change, until stop is closed. A missing overlay file is not an error:
// the catalogue simply stays builtin-only until one appears.
func WatchOverlay(cat *Catalogue, overlayPath string, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(overlayPath); err != nil {
		log.Warn().Err(err).Str("path", overlayPath).Msg("stdconfig: overlay not watched")
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				data, err := os.ReadFile(ev.Name)
				if err != nil {
					log.Warn().Err(err).Str("path", ev.Name).Msg("stdconfig: overlay read failed")
					continue
				}
				if err := cat.ReloadFromOverlay(data); err != nil {
					log.Warn().Err(err).Str("path", ev.Name).Msg("stdconfig: overlay reload failed")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("stdconfig: watcher error")
			case <-stop:
				return
			}
		}
	}()
	return nil
}
