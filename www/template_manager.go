package www

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/icodeforyou/spotprice-go/convert"
	"github.com/icodeforyou/spotprice-go/hours"
)

//go:embed templates
var templatesDirEmbed embed.FS

var funcMap = template.FuncMap{
	"Price": convert.PriceString,
	"ThreeDecimals": func(n float64) string {
		return fmt.Sprintf("%.3f", n)
	},
	"Time": hours.FormatTimeInGuiTimezone,
	"Date": hours.FormatDateInGuiTimezone,
	"Hour": hours.FormatHourInGuiTimezone,
}

// TemplateManager serves the embedded templates, or the ones in an external
// directory which are reparsed whenever a file there changes.
type TemplateManager struct {
	logger    *slog.Logger
	mutex     sync.RWMutex
	templates *template.Template
}

func NewTemplateManager(logger *slog.Logger, extDir *string) (*TemplateManager, error) {
	tm := &TemplateManager{logger: logger}

	if extDir == nil || *extDir == "" {
		tm.logger.Debug("loading embedded templates...")
		return tm, tm.load(templatesDirEmbed, "templates/*.html")
	}

	templatesDir := filepath.Join(*extDir, "templates")
	dirFS := os.DirFS(templatesDir)
	if err := tm.load(dirFS, "*.html"); err != nil {
		return nil, err
	}
	if err := tm.watch(templatesDir, func() error { return tm.load(dirFS, "*.html") }); err != nil {
		return nil, err
	}
	return tm, nil
}

func (tm *TemplateManager) load(fsys fs.FS, pattern string) error {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fsys, pattern)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	tm.mutex.Lock()
	tm.templates = tmpl
	tm.mutex.Unlock()
	return nil
}

func (tm *TemplateManager) watch(dir string, reload func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create template watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch templates: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				// A broken template keeps the previous set active.
				if err := reload(); err != nil {
					tm.logger.Error("error reloading templates", slog.Any("error", err))
				} else {
					tm.logger.Debug("templates reloaded", slog.String("file", event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				tm.logger.Warn("error watching templates", slog.Any("error", err))
			}
		}
	}()
	return nil
}

func (tm *TemplateManager) ExecuteToWriter(name string, data any, wr io.Writer) error {
	tm.mutex.RLock()
	tmpl := tm.templates
	tm.mutex.RUnlock()

	if err := tmpl.ExecuteTemplate(wr, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return nil
}
