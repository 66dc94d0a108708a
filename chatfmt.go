// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/docopt/docopt-go"
	"github.com/ergochat/chatfmt/chat"
	"github.com/ergochat/chatfmt/chat/ircout"
	"github.com/ergochat/chatfmt/chat/logger"
	"github.com/ergochat/chatfmt/chat/termout"
)

// set via linker flags, either by make or by goreleaser:
var commit = ""  // git hash
var version = "" // tagged version

const defaultConfigFile = "chatfmt.yaml"

func fileDoesNotExist(file string) bool {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return true
	}
	return false
}

// loadConfig loads the config file. The default file may be absent, in which
// case the built-in defaults are used.
func loadConfig(configFile string) (*chat.Config, error) {
	if configFile == defaultConfigFile && fileDoesNotExist(configFile) {
		config := new(chat.Config)
		return config, config.Prepare()
	}
	return chat.LoadConfig(configFile)
}

// messages returns the message argument, or each line of stdin without one.
func messages(arguments docopt.Opts, stdin io.Reader) (result []string) {
	if message, ok := arguments["<message>"].(string); ok {
		return []string{message}
	}
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Fatal("Error reading stdin: ", err.Error())
	}
	return
}

func main() {
	chat.SetVersionString(version, commit)
	usage := `chatfmt.
Usage:
	chatfmt render [<message>] [--conf <filename>] [--legacy] [--raw]
	chatfmt segments [<message>] [--conf <filename>] [--legacy] [--json]
	chatfmt strip [<message>] [--conf <filename>]
	chatfmt center [<message>] [--conf <filename>] [--limit <pixels>]
	chatfmt irc [<message>] [--conf <filename>] [--legacy]
	chatfmt serve [--conf <filename>] [--quiet]
	chatfmt -h | --help
	chatfmt --version
Options:
	--conf <filename>  Configuration file to use [default: chatfmt.yaml].
	--legacy           Resolve colours to the 16-colour palette.
	--raw              Write § codes instead of terminal colours.
	--json             Write segments as JSON.
	--limit <pixels>   Distance to the center of the chat box.
	--quiet            Don't show startup/shutdown lines.
	-h --help          Show this screen.
	--version          Show version.`

	arguments, _ := docopt.ParseArgs(usage, nil, chat.Ver)

	configfile := arguments["--conf"].(string)
	config, err := loadConfig(configfile)
	if err != nil {
		log.Fatal("Config file did not load successfully: ", err.Error())
	}

	logman, err := logger.NewManager(config.Logging)
	if err != nil {
		log.Fatal("Logger did not load successfully:", err.Error())
	}
	defer logman.Close()

	formatter, err := chat.NewFormatter(config, logman)
	if err != nil {
		log.Fatal("Formatter did not load successfully: ", err.Error())
	}
	defer formatter.Close()

	if arguments["serve"].(bool) {
		serve(formatter, logman, arguments["--quiet"].(bool))
		return
	}

	legacy := config.Legacy || arguments["--legacy"].(bool)
	isTerminal := term.IsTerminal(int(syscall.Stdout))
	renderer := termout.NewRenderer(os.Stdout, isTerminal)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, message := range messages(arguments, os.Stdin) {
		switch {
		case arguments["render"].(bool):
			result := formatter.Format(message, legacy)
			if isTerminal && !arguments["--raw"].(bool) {
				result = renderer.Text(result)
			}
			fmt.Fprintln(out, result)
		case arguments["segments"].(bool):
			segs := formatter.Segments(message, legacy)
			if arguments["--json"].(bool) || !isTerminal {
				encoded, err := json.Marshal(segs)
				if err != nil {
					log.Fatal("encoding error:", err.Error())
				}
				fmt.Fprintln(out, string(encoded))
			} else {
				fmt.Fprintln(out, renderer.Segments(segs))
			}
		case arguments["strip"].(bool):
			fmt.Fprintln(out, formatter.Strip(message))
		case arguments["center"].(bool):
			limit := config.Center.Limit
			if limitString, ok := arguments["--limit"].(string); ok {
				limit, err = strconv.Atoi(limitString)
				if err != nil || limit < 0 {
					log.Fatal("Invalid limit: ", limitString)
				}
			}
			fmt.Fprintln(out, formatter.Center(limit, message))
		case arguments["irc"].(bool):
			fmt.Fprintln(out, ircout.LowerSegments(formatter.Segments(message, legacy)))
		}
	}
}

// implements the `chatfmt serve` command
func serve(formatter *chat.Formatter, logman *logger.Manager, quiet bool) {
	if !quiet {
		logman.Info("server", fmt.Sprintf("%s starting", chat.Ver))
	}

	// warning if running a non-final version
	if strings.Contains(chat.Ver, "unreleased") {
		logman.Warning("server", "You are currently running an unreleased version of chatfmt.")
	}

	server, err := chat.NewServer(formatter, logman)
	if err != nil {
		logman.Error("server", fmt.Sprintf("Could not load server: %s", err.Error()))
		os.Exit(1)
	}
	if err := server.Run(); err != nil {
		logman.Error("server", fmt.Sprintf("Server stopped: %s", err.Error()))
		os.Exit(1)
	}
	if !quiet {
		logman.Info("server", "stopped")
	}
}
