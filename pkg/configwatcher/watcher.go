package configwatcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchConfig invokes onChange whenever the config file is rewritten, with a
// short debounce because editors and orchestrators fire several events per
// save. Blocks; run it as a goroutine.
func WatchConfig(configPath string, onChange func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal("Failed to create config watcher:", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		log.Fatal("Failed to get absolute path:", err)
	}

	// Watch the directory: config maps and some editors replace the file,
	// which drops a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		log.Fatal("Failed to watch config directory:", err)
	}

	var mu sync.Mutex
	var timer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(500*time.Millisecond, func() {
				logger.Log.Info("config file changed, reloading", zap.String("path", absPath))
				onChange()
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("config watcher error", zap.Error(err))
		}
	}
}
