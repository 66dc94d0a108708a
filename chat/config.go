// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package chat

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v2"

	"github.com/ergochat/chatfmt/chat/align"
	"github.com/ergochat/chatfmt/chat/colors"
	"github.com/ergochat/chatfmt/chat/logger"
	"github.com/ergochat/chatfmt/chat/patterns"
	"github.com/ergochat/chatfmt/chat/utils"
	"github.com/ergochat/chatfmt/chat/widths"
)

const (
	defaultCenterMarker  = "<center>"
	defaultCacheTTL      = 10 * time.Minute
	defaultCacheMaxSize  = 4096
	defaultServerMaxSize = 64 * 1024
	defaultWebsocketPath = "/ws"
	minServerMessageSize = 512
	maxConfigurableWidth = 64
)

// CenterConfig controls centering of lines that start with Marker.
type CenterConfig struct {
	Marker string
	// Limit is the pixel distance to the center of the chat box
	Limit int
}

// CacheConfig controls the render cache.
type CacheConfig struct {
	Enabled bool
	// Path is the on-disk buntdb file; empty keeps the cache in memory
	Path                 string
	TTL                  time.Duration `yaml:"ttl"`
	MaxMessageSizeString string        `yaml:"max-message-size"`
	MaxMessageSize       int           `yaml:"-"`
}

// ServerConfig controls the websocket preview server.
type ServerConfig struct {
	Listen               string
	Path                 string
	AllowedOrigins       []string `yaml:"allowed-origins"`
	MaxMessageSizeString string   `yaml:"max-message-size"`
	MaxMessageSize       int64    `yaml:"-"`
	// Watch reloads the config file when it changes on disk
	Watch bool

	allowedOriginRegexps []*regexp.Regexp
}

// Config defines the overall configuration.
type Config struct {
	Legacy bool

	Center CenterConfig

	// Widths overrides the pixel width of single characters
	Widths map[string]int

	// Gradients are named multi-stop presets, used as <name>TEXT</name>
	Gradients map[string][]string

	// HoverWidth wraps hover text to this many characters; 0 disables wrapping
	HoverWidth int `yaml:"hover-width"`

	Cache CacheConfig

	Server ServerConfig

	Logging []logger.LoggingConfig

	Filename string `yaml:"-"`

	widthEntries []widths.Entry
	presets      []patterns.Pattern
}

// WidthEntries returns the validated width overrides.
func (config *Config) WidthEntries() []widths.Entry {
	return config.widthEntries
}

// Presets returns the validated gradient presets, sorted by name.
func (config *Config) Presets() []patterns.Pattern {
	return config.presets
}

// LoadRawConfig loads the config without doing any consistency checks or postprocessing
func LoadRawConfig(filename string) (config *Config, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return ParseConfig(data)
}

// ParseConfig unmarshals a yaml document into a Config.
func ParseConfig(data []byte) (config *Config, err error) {
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = new(Config)
	}
	return
}

// LoadConfig loads the given YAML configuration file.
func LoadConfig(filename string) (config *Config, err error) {
	config, err = LoadRawConfig(filename)
	if err != nil {
		return nil, err
	}

	config.Filename = filename
	err = config.Prepare()
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Prepare validates the config and fills in defaults and derived fields.
func (config *Config) Prepare() (err error) {
	if config.Center.Marker == "" {
		config.Center.Marker = defaultCenterMarker
	}
	if config.Center.Limit < 0 {
		return ErrCenterLimitNegative
	} else if config.Center.Limit == 0 {
		config.Center.Limit = align.ChatLimit
	}

	if config.HoverWidth < 0 {
		config.HoverWidth = 0
	}

	config.widthEntries = nil
	for char, width := range config.Widths {
		if utf8.RuneCountInString(char) != 1 || width < 1 || width > maxConfigurableWidth {
			return fmt.Errorf("%w: %q", ErrInvalidWidth, char)
		}
		r, _ := utf8.DecodeRuneInString(char)
		config.widthEntries = append(config.widthEntries, widths.NewEntry(r, width))
	}
	sort.Slice(config.widthEntries, func(i, j int) bool {
		return config.widthEntries[i].Char < config.widthEntries[j].Char
	})

	names := make([]string, 0, len(config.Gradients))
	for name := range config.Gradients {
		names = append(names, name)
	}
	sort.Strings(names)
	config.presets = nil
	for _, name := range names {
		var anchors []colors.RGB
		for _, hex := range config.Gradients[name] {
			rgb, err := colors.ParseHex(hex)
			if err != nil {
				return fmt.Errorf("Could not parse gradient %s: %w", name, err)
			}
			anchors = append(anchors, rgb)
		}
		preset, err := patterns.Preset(name, anchors)
		if err != nil {
			return fmt.Errorf("Could not parse gradient %s: %w", name, err)
		}
		config.presets = append(config.presets, preset)
	}

	if config.Cache.TTL <= 0 {
		config.Cache.TTL = defaultCacheTTL
	}
	config.Cache.MaxMessageSize = defaultCacheMaxSize
	if config.Cache.MaxMessageSizeString != "" {
		size, err := bytefmt.ToBytes(config.Cache.MaxMessageSizeString)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrCacheMessageSizeInvalid, err.Error())
		}
		config.Cache.MaxMessageSize = int(size)
	}

	if config.Server.Path == "" {
		config.Server.Path = defaultWebsocketPath
	}
	config.Server.MaxMessageSize = defaultServerMaxSize
	if config.Server.MaxMessageSizeString != "" {
		size, err := bytefmt.ToBytes(config.Server.MaxMessageSizeString)
		if err != nil {
			return fmt.Errorf("Could not parse server max-message-size: %s", err.Error())
		}
		if size < minServerMessageSize {
			return ErrServerMessageSizeTooSmall
		}
		config.Server.MaxMessageSize = int64(size)
	}
	config.Server.allowedOriginRegexps = nil
	for _, glob := range config.Server.AllowedOrigins {
		re, err := utils.CompileGlob(strings.TrimSpace(glob))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidOrigin, glob)
		}
		config.Server.allowedOriginRegexps = append(config.Server.allowedOriginRegexps, re)
	}

	var newLogConfigs []logger.LoggingConfig
	for _, logConfig := range config.Logging {
		// methods
		methods := make(map[string]bool)
		for _, method := range strings.Split(logConfig.Method, " ") {
			if len(method) > 0 {
				methods[strings.ToLower(method)] = true
			}
		}
		if methods["file"] && logConfig.Filename == "" {
			return ErrLoggerFilenameMissing
		}
		logConfig.MethodFile = methods["file"]
		logConfig.MethodStdout = methods["stdout"]
		logConfig.MethodStderr = methods["stderr"]

		// levels
		level, exists := logger.LogLevelNames[strings.ToLower(logConfig.LevelString)]
		if !exists {
			return fmt.Errorf("Could not translate log level [%s]", logConfig.LevelString)
		}
		logConfig.Level = level

		// types
		logConfig.Types, logConfig.ExcludedTypes = nil, nil
		for _, typeStr := range strings.Split(logConfig.TypeString, " ") {
			if len(typeStr) == 0 {
				continue
			}
			if typeStr == "-" {
				return ErrLoggerExcludeEmpty
			}
			if typeStr[0] == '-' {
				typeStr = typeStr[1:]
				logConfig.ExcludedTypes = append(logConfig.ExcludedTypes, typeStr)
			} else {
				logConfig.Types = append(logConfig.Types, typeStr)
			}
		}
		if len(logConfig.Types) < 1 {
			return ErrLoggerHasNoTypes
		}

		newLogConfigs = append(newLogConfigs, logConfig)
	}
	config.Logging = newLogConfigs

	return nil
}

// ValidateServer checks the settings only the preview server needs.
func (config *Config) ValidateServer() error {
	if config.Server.Listen == "" {
		return ErrNoListenerDefined
	}
	return nil
}
