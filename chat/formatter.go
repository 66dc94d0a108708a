// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ergochat/chatfmt/chat/align"
	"github.com/ergochat/chatfmt/chat/cache"
	"github.com/ergochat/chatfmt/chat/colors"
	"github.com/ergochat/chatfmt/chat/logger"
	"github.com/ergochat/chatfmt/chat/patterns"
	"github.com/ergochat/chatfmt/chat/segments"
	"github.com/ergochat/chatfmt/chat/widths"
)

// Formatter resolves chat markup. All methods are safe for concurrent use,
// including the registration methods and ApplyConfig.
type Formatter struct {
	widths   *widths.Table
	registry *patterns.Registry
	cache    *cache.Cache
	logger   *logger.Manager
	config   atomic.Pointer[Config]

	// width overrides and presets that came from the config, so a rehash
	// can take them back
	rehashMutex     sync.Mutex // tier 2
	configuredChars []rune
	configuredNames []string
}

// NewFormatter builds a formatter from a prepared config. logger may be nil.
func NewFormatter(config *Config, logman *logger.Manager) (f *Formatter, err error) {
	if logman == nil {
		logman, _ = logger.NewManager(nil)
	}
	f = &Formatter{
		widths:   widths.NewTable(),
		registry: patterns.NewDefaultRegistry(),
		logger:   logman,
	}

	if config.Cache.Enabled {
		f.cache, err = cache.Open(cache.Options{
			Path:           config.Cache.Path,
			TTL:            config.Cache.TTL,
			MaxMessageSize: config.Cache.MaxMessageSize,
		}, logman)
		if err != nil {
			return nil, err
		}
		f.logger.Info("cache", "opened render cache", cacheName(config.Cache.Path))
	}

	f.ApplyConfig(config)
	return f, nil
}

func cacheName(path string) string {
	if path == "" {
		return "in memory"
	}
	return path
}

// ApplyConfig replaces the width overrides and gradient presets of the
// previous config with those of config. Widths and patterns registered
// through the other methods are kept. The cache settings are not reloaded.
func (f *Formatter) ApplyConfig(config *Config) {
	f.rehashMutex.Lock()
	defer f.rehashMutex.Unlock()

	f.widths.Restore(f.configuredChars...)
	f.configuredChars = f.configuredChars[:0]
	for _, entry := range config.WidthEntries() {
		f.widths.Add(entry)
		f.configuredChars = append(f.configuredChars, entry.Char)
	}

	for _, name := range f.configuredNames {
		f.registry.Unregister(name)
	}
	f.configuredNames = f.configuredNames[:0]
	for _, preset := range config.Presets() {
		f.registry.Register(preset)
		f.configuredNames = append(f.configuredNames, preset.Name())
	}

	f.config.Store(config)
	f.purge()
	f.logger.Debug("rehash", fmt.Sprintf("applied %d width overrides and %d gradient presets", len(f.configuredChars), len(f.configuredNames)))
}

// Config returns the config currently in effect.
func (f *Formatter) Config() *Config {
	return f.config.Load()
}

// Close closes the render cache, if any.
func (f *Formatter) Close() error {
	if f.cache != nil {
		return f.cache.Close()
	}
	return nil
}

// Format resolves msg into a single string: centering, colour patterns and
// alternate codes are resolved and click/hover markup is reduced to its text.
func (f *Formatter) Format(msg string, legacy bool) (result string) {
	if f.cache != nil {
		result, _ = f.cache.Fetch(cache.Key("format", legacy, msg), func() (string, error) {
			return f.format(msg, legacy), nil
		})
	} else {
		result = f.format(msg, legacy)
	}
	if f.logger.IsTracing() {
		f.logger.Debug(logger.TraceType, "format", msg, result)
	}
	return
}

func (f *Formatter) format(msg string, legacy bool) string {
	msg = segments.RemoveFormat(f.center(colors.TranslateAlternate(msg)))
	return f.registry.Apply(msg, legacy)
}

// Segments resolves msg into styled segments for clients that support click
// and hover actions. Colour patterns are resolved inside each segment.
func (f *Formatter) Segments(msg string, legacy bool) (result []segments.Segment) {
	if f.cache != nil {
		encoded, err := f.cache.Fetch(cache.Key("segments", legacy, msg), func() (string, error) {
			encoded, err := json.Marshal(f.segments(msg, legacy))
			return string(encoded), err
		})
		if err == nil {
			err = json.Unmarshal([]byte(encoded), &result)
		}
		if err != nil {
			f.logger.Error("cache", "could not decode cached segments", err.Error())
			result = f.segments(msg, legacy)
		}
	} else {
		result = f.segments(msg, legacy)
	}
	if f.logger.IsTracing() {
		f.logger.Debug(logger.TraceType, "segments", msg, fmt.Sprintf("%d segments", len(result)))
	}
	return
}

func (f *Formatter) segments(msg string, legacy bool) []segments.Segment {
	parser := segments.Parser{
		Content: func(content string) string {
			return f.registry.Apply(content, legacy)
		},
		HoverWidth: f.Config().HoverWidth,
	}
	return parser.Parse(f.center(colors.TranslateAlternate(msg)))
}

// Strip returns the visible text of msg, without markup or control codes.
func (f *Formatter) Strip(msg string) string {
	msg = strings.TrimPrefix(colors.TranslateAlternate(msg), f.Config().Center.Marker)
	return colors.StripCodes(f.registry.Strip(segments.RemoveFormat(msg)))
}

// Center centers msg around limit if it starts with the configured marker.
func (f *Formatter) Center(limit int, msg string) string {
	return align.CenterPad(f.widths, f.Config().Center.Marker, limit, msg, f.visible)
}

func (f *Formatter) center(msg string) string {
	return f.Center(f.Config().Center.Limit, msg)
}

// visible reduces msg to what is displayed, keeping control codes so that
// bold text is measured as bold.
func (f *Formatter) visible(msg string) string {
	return f.registry.Apply(segments.RemoveFormat(msg), true)
}

// AddWidth registers character widths.
func (f *Formatter) AddWidth(entries ...widths.Entry) {
	f.widths.Add(entries...)
	for _, entry := range entries {
		f.logger.Info("format", "set width", fmt.Sprintf("%q", entry.Char), fmt.Sprintf("%d/%d", entry.Width, entry.BoldWidth))
	}
	f.purge()
}

// RemoveWidth removes the width entry of char; it then measures with the
// default width.
func (f *Formatter) RemoveWidth(char rune) (removed bool) {
	removed = f.widths.Remove(char)
	if removed {
		f.logger.Info("format", "removed width", fmt.Sprintf("%q", char))
		f.purge()
	}
	return
}

// Width returns the measured width of char.
func (f *Formatter) Width(char rune, bold bool) int {
	return f.widths.Width(char, bold)
}

// RegisterPattern adds a pattern after the existing ones, or replaces the
// pattern with the same name.
func (f *Formatter) RegisterPattern(p patterns.Pattern) {
	if f.registry.Register(p) {
		f.logger.Info("format", "replaced pattern", p.Name())
	} else {
		f.logger.Info("format", "registered pattern", p.Name())
	}
	f.purge()
}

// UnregisterPattern removes the pattern with the given name.
func (f *Formatter) UnregisterPattern(name string) (removed bool) {
	removed = f.registry.Unregister(name)
	if removed {
		f.logger.Info("format", "unregistered pattern", name)
		f.purge()
	}
	return
}

// PatternNames returns the names of the registered patterns, in order.
func (f *Formatter) PatternNames() (names []string) {
	for _, p := range f.registry.Patterns() {
		names = append(names, p.Name())
	}
	return
}

// purge drops cached renders after a change that affects rendering.
func (f *Formatter) purge() {
	if f.cache == nil {
		return
	}
	if err := f.cache.Purge(); err != nil {
		f.logger.Error("cache", "could not purge render cache", err.Error())
	}
}
