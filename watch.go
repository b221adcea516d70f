package main

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Editors often write a file in several steps, so changes are coalesced
// for this long before the script runs again.
const watchDelay = 100 * time.Millisecond

// watchScript runs the script again whenever it is written. The parent
// directory is watched so that editors which replace the file on save are
// still seen.
func watchScript(ctx context.Context, path string, env *env) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}

	timer := time.NewTimer(watchDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				timer.Reset(watchDelay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch %s: %v", path, err)
		case <-timer.C:
			if err := env.runScript(path); err != nil {
				log.Println(err)
				continue
			}
			log.Printf("reloaded %s", path)
		}
	}
}
