package documents

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// _watchDebounce coalesces bursts of write events for the same file.
const _watchDebounce = 100 * time.Millisecond

// startWatcher begins re-syncing tracked documents that change on disk.
// Editors save through the MCP client, but files can also change underneath
// the bridge, e.g. from a formatter or a git checkout.
func (c *controller) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.watcher = watcher
	go c.processWatchEvents(watcher.Events, watcher.Errors)
	return nil
}

func (c *controller) stopWatcher(ctx context.Context) error {
	if c.watcher == nil {
		return nil
	}
	return c.watcher.Close()
}

func (c *controller) watch(path string) {
	if c.watcher == nil {
		return
	}
	if err := c.watcher.Add(path); err != nil {
		c.logger.Warnw("unable to watch document", "path", path, "error", err)
	}
}

func (c *controller) unwatch(path string) {
	if c.watcher == nil {
		return
	}
	if err := c.watcher.Remove(path); err != nil {
		c.logger.Debugw("unable to unwatch document", "path", path, "error", err)
	}
}

func (c *controller) processWatchEvents(events <-chan fsnotify.Event, errs <-chan error) {
	pending := make(map[string]struct{})
	var flush <-chan time.Time

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[event.Name] = struct{}{}
			if flush == nil {
				flush = c.clock.After(_watchDebounce)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			c.logger.Warnw("watcher error", "error", err)
		case <-flush:
			for path := range pending {
				c.resyncFromDisk(path)
			}
			pending = make(map[string]struct{})
			flush = nil
		}
	}
}

// resyncFromDisk pushes the on-disk contents of a changed document to the
// language server through the normal change path.
func (c *controller) resyncFromDisk(path string) {
	data, err := c.fs.ReadFile(path)
	if err != nil {
		c.logger.Warnw("unable to re-read changed document", "path", path, "error", err)
		return
	}

	if err := c.Change(context.Background(), path, string(data)); err != nil {
		c.logger.Warnw("unable to sync changed document", "path", path, "error", err)
		return
	}
	c.logger.Debugw("document re-synced from disk", "path", path)
}
