// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"github.com/okzk/sdnotify"

	"github.com/ergochat/chatfmt/chat/ircout"
	"github.com/ergochat/chatfmt/chat/logger"
	"github.com/ergochat/chatfmt/chat/segments"
	"github.com/ergochat/chatfmt/chat/utils"
)

const (
	idleTimeout    = 5 * time.Minute
	writeTimeout   = 10 * time.Second
	watchDebounce  = 250 * time.Millisecond
	shutdownWindow = 5 * time.Second
)

var (
	// ServerExitSignals are the signals the server will exit on.
	ServerExitSignals = []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
)

// Request is one websocket request. Legacy defaults to the configured value
// and Limit to the configured center limit.
type Request struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Legacy  *bool  `json:"legacy,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
}

// Response answers a Request. Segments is set for segments requests,
// Result for all others.
type Response struct {
	Type     string             `json:"type"`
	Result   string             `json:"result,omitempty"`
	Segments []segments.Segment `json:"segments,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Server serves formatting previews over websockets and reloads its
// config on SIGHUP or when the config file changes.
type Server struct {
	formatter      *Formatter
	logger         *logger.Manager
	configFilename string
	httpServer     *http.Server
	listener       net.Listener
	watcher        *fsnotify.Watcher
	rehashMutex    sync.Mutex // tier 3
	connsMutex     sync.Mutex // tier 1
	conns          map[*websocket.Conn]struct{}
	rehashSignal   chan os.Signal
	signals        chan os.Signal
	stop           chan struct{}
	stopOnce       sync.Once
}

// NewServer returns a new preview server. The formatter's config must
// define a listener.
func NewServer(formatter *Formatter, logger *logger.Manager) (*Server, error) {
	config := formatter.Config()
	if err := config.ValidateServer(); err != nil {
		return nil, err
	}

	server := &Server{
		formatter:      formatter,
		logger:         logger,
		configFilename: config.Filename,
		conns:          make(map[*websocket.Conn]struct{}),
		rehashSignal:   make(chan os.Signal, 1),
		signals:        make(chan os.Signal, len(ServerExitSignals)),
		stop:           make(chan struct{}),
	}
	server.httpServer = &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if config.Server.Watch && server.configFilename != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		// editors replace files rather than write them, so watch the directory
		if err := watcher.Add(filepath.Dir(server.configFilename)); err != nil {
			watcher.Close()
			return nil, err
		}
		server.watcher = watcher
	}

	return server, nil
}

// Handler returns the websocket handler.
func (server *Server) Handler() http.Handler {
	return http.HandlerFunc(server.handle)
}

// Listen opens the configured listening address. Run calls it if needed.
func (server *Server) Listen() (err error) {
	server.listener, err = net.Listen("tcp", server.formatter.Config().Server.Listen)
	return
}

// Addr returns the listening address, or nil before Listen.
func (server *Server) Addr() net.Addr {
	if server.listener == nil {
		return nil
	}
	return server.listener.Addr()
}

// Stop makes Run return.
func (server *Server) Stop() {
	server.stopOnce.Do(func() { close(server.stop) })
}

// Run serves until an exit signal arrives or Stop is called.
func (server *Server) Run() error {
	if server.listener == nil {
		if err := server.Listen(); err != nil {
			return err
		}
	}

	// Attempt to clean up when receiving these signals.
	signal.Notify(server.signals, ServerExitSignals...)
	signal.Notify(server.rehashSignal, syscall.SIGHUP)
	defer signal.Stop(server.signals)
	defer signal.Stop(server.rehashSignal)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.httpServer.Serve(server.listener)
	}()
	server.logger.Info("server", "listening", server.Addr().String())
	sdnotify.Ready()

	var watchEvents <-chan fsnotify.Event
	var watchErrors <-chan error
	if server.watcher != nil {
		defer server.watcher.Close()
		watchEvents, watchErrors = server.watcher.Events, server.watcher.Errors
	}
	var debounce <-chan time.Time

	for {
		select {
		case <-server.signals:
			server.Shutdown()
			return nil

		case <-server.stop:
			server.Shutdown()
			return nil

		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			server.logger.Error("server", "listener failed", err.Error())
			return err

		case <-server.rehashSignal:
			server.logger.Info("rehash", "Rehashing due to SIGHUP")
			go server.reportRehash()

		case event := <-watchEvents:
			if filepath.Clean(event.Name) == filepath.Clean(server.configFilename) &&
				event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce = time.After(watchDebounce)
			}

		case <-debounce:
			debounce = nil
			server.logger.Info("rehash", "Rehashing due to config file change")
			go server.reportRehash()

		case err := <-watchErrors:
			server.logger.Warning("rehash", "config watch error", err.Error())
		}
	}
}

// Shutdown closes the listener, waits briefly for open requests and then
// closes every websocket connection. http.Server.Shutdown does not track
// hijacked connections, so the server does.
func (server *Server) Shutdown() {
	sdnotify.Stopping()
	server.logger.Info("server", "shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	if err := server.httpServer.Shutdown(ctx); err != nil {
		server.logger.Error("server", "Could not shut down cleanly", err.Error())
	}

	server.connsMutex.Lock()
	conns := server.conns
	server.conns = nil
	server.connsMutex.Unlock()
	for conn := range conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeTimeout))
		conn.Close()
	}
}

// addConn registers conn until it closes; it reports false once the server
// has shut down.
func (server *Server) addConn(conn *websocket.Conn) bool {
	server.connsMutex.Lock()
	defer server.connsMutex.Unlock()
	if server.conns == nil {
		return false
	}
	server.conns[conn] = struct{}{}
	return true
}

func (server *Server) removeConn(conn *websocket.Conn) {
	server.connsMutex.Lock()
	defer server.connsMutex.Unlock()
	delete(server.conns, conn)
}

func (server *Server) reportRehash() {
	if err := server.rehash(); err != nil {
		server.logger.Error("rehash", fmt.Sprintln("Failed to rehash:", err.Error()))
	}
}

// rehash reloads the config file. A config that fails to load leaves the
// running one in place.
func (server *Server) rehash() error {
	server.logger.Debug("rehash", "Starting rehash")

	// only let one rehash go on at a time
	server.rehashMutex.Lock()
	defer server.rehashMutex.Unlock()

	sdnotify.Reloading()
	defer sdnotify.Ready()

	config, err := LoadConfig(server.configFilename)
	if err != nil {
		return fmt.Errorf("Error loading config file config: %s", err.Error())
	}
	if err := config.ValidateServer(); err != nil {
		return err
	}

	old := server.formatter.Config()
	if old.Server.Listen != config.Server.Listen {
		server.logger.Warning("rehash", "the listening address cannot be changed after launch", old.Server.Listen)
	}
	if old.Cache != config.Cache {
		server.logger.Warning("rehash", "cache settings cannot be changed after launch")
	}

	if err := server.logger.ApplyConfig(config.Logging); err != nil {
		return fmt.Errorf("Error applying logging config: %s", err.Error())
	}
	server.formatter.ApplyConfig(config)
	server.logger.Info("rehash", "Rehash completed successfully")
	return nil
}

func (server *Server) handle(w http.ResponseWriter, r *http.Request) {
	config := server.formatter.Config()
	if r.URL.Path != config.Server.Path {
		http.NotFound(w, r)
		return
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
	}
	// with no allowed origins, the upgrader's same-origin check applies
	if len(config.Server.allowedOriginRegexps) != 0 {
		wsUpgrader.CheckOrigin = func(r *http.Request) bool {
			return utils.MatchesAny(config.Server.allowedOriginRegexps, r.Header.Get("Origin"))
		}
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.Info("server", "websocket upgrade error", r.RemoteAddr, err.Error())
		return
	}

	// avoid buffering excessively large messages; the envelope may double
	// the size of a message through escaping
	conn.SetReadLimit(2 * config.Server.MaxMessageSize)

	if !server.addConn(conn) {
		conn.Close()
		return
	}
	server.logger.Debug("server", "websocket connected", r.RemoteAddr)
	go server.runConn(conn, r.RemoteAddr)
}

func (server *Server) runConn(conn *websocket.Conn, remoteAddr string) {
	defer server.removeConn(conn)
	defer conn.Close()
	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		ty, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				server.logger.Debug("server", "websocket closed", remoteAddr, err.Error())
			}
			return
		}
		// binary, and other kinds of messages, are thrown away
		if ty != websocket.TextMessage {
			continue
		}

		var request Request
		var response Response
		if err := json.Unmarshal(data, &request); err != nil {
			response.Error = err.Error()
		} else {
			response = server.Respond(request)
		}

		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(response); err != nil {
			server.logger.Debug("server", "websocket write error", remoteAddr, err.Error())
			return
		}
	}
}

// Respond computes the response to one request.
func (server *Server) Respond(request Request) (response Response) {
	config := server.formatter.Config()
	response.Type = request.Type
	if int64(len(request.Message)) > config.Server.MaxMessageSize {
		response.Error = errMessageTooLarge.Error()
		return
	}

	legacy := config.Legacy
	if request.Legacy != nil {
		legacy = *request.Legacy
	}

	switch request.Type {
	case "format":
		response.Result = server.formatter.Format(request.Message, legacy)
	case "segments":
		response.Segments = server.formatter.Segments(request.Message, legacy)
	case "strip":
		response.Result = server.formatter.Strip(request.Message)
	case "irc":
		response.Result = ircout.LowerSegments(server.formatter.Segments(request.Message, legacy))
	case "center":
		limit := config.Center.Limit
		if request.Limit != nil {
			limit = *request.Limit
		}
		response.Result = server.formatter.Center(limit, request.Message)
	default:
		response.Error = errUnknownRequest.Error()
	}
	return
}
