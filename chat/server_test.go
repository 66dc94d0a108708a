// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package chat

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ergochat/chatfmt/chat/logger"
)

const testServerConfig = `
server:
    listen: "127.0.0.1:0"
    max-message-size: 1KB
`

func newTestServer(t *testing.T, data string) *Server {
	t.Helper()
	formatter := newTestFormatter(t, data)
	logman, _ := logger.NewManager(nil)
	server, err := NewServer(formatter, logman)
	if err != nil {
		t.Fatal(err)
	}
	return server
}

func dialTestServer(t *testing.T, url string, header http.Header) (*websocket.Conn, error) {
	t.Helper()
	url = "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, err
}

func roundTrip(t *testing.T, conn *websocket.Conn, request Request) (response Response) {
	t.Helper()
	if err := conn.WriteJSON(request); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&response); err != nil {
		t.Fatal(err)
	}
	return
}

func TestNewServerNeedsListener(t *testing.T) {
	formatter := newTestFormatter(t, "")
	if _, err := NewServer(formatter, nil); err != ErrNoListenerDefined {
		t.Errorf("expected ErrNoListenerDefined, got %v", err)
	}
}

func TestRespond(t *testing.T) {
	server := newTestServer(t, testServerConfig)
	yes := true
	limit := 127

	assertEqual(server.Respond(Request{Type: "format", Message: "&cHi"}), Response{Type: "format", Result: "§cHi"}, t)
	assertEqual(server.Respond(Request{Type: "format", Message: "<g:ff0000>AB</g:00ff00>", Legacy: &yes}).Result, "§4A§2B", t)
	assertEqual(server.Respond(Request{Type: "strip", Message: "&c<sc>Hi</sc>"}).Result, "Hi", t)
	assertEqual(server.Respond(Request{Type: "irc", Message: "§cred"}).Result, "\x034red", t)
	assertEqual(server.Respond(Request{Type: "center", Message: "<center>Hi"}).Result, spaces(38)+"Hi", t)
	assertEqual(server.Respond(Request{Type: "center", Message: "<center>Hi", Limit: &limit}).Result, spaces(31)+"Hi", t)

	response := server.Respond(Request{Type: "segments", Message: `<run:"/x">Hi</text>`})
	assertEqual(len(response.Segments), 1, t)
	assertEqual(response.Segments[0].Content, "Hi", t)

	assertEqual(server.Respond(Request{Type: "shout", Message: "Hi"}).Error, errUnknownRequest.Error(), t)
	response = server.Respond(Request{Type: "format", Message: strings.Repeat("a", 1025)})
	assertEqual(response, Response{Type: "format", Error: errMessageTooLarge.Error()}, t)
}

func TestWebsocket(t *testing.T) {
	server := newTestServer(t, testServerConfig)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	conn, err := dialTestServer(t, ts.URL+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(roundTrip(t, conn, Request{Type: "format", Message: "&aok"}).Result, "§aok", t)

	response := roundTrip(t, conn, Request{Type: "segments", Message: "see http://x.io"})
	assertEqual(len(response.Segments), 2, t)
	assertEqual(response.Segments[1].Click.Argument, "http://x.io", t)

	// malformed requests get an error but keep the connection
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	var bad Response
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatal(err)
	}
	if bad.Error == "" {
		t.Error("expected an error for malformed json")
	}
	assertEqual(roundTrip(t, conn, Request{Type: "strip", Message: "§lok"}).Result, "ok", t)

	if _, err := dialTestServer(t, ts.URL+"/other", nil); err == nil {
		t.Error("expected the handshake to fail outside the websocket path")
	}
}

func TestAllowedOrigins(t *testing.T) {
	server := newTestServer(t, testServerConfig+`    allowed-origins: ["https://*.example.com"]`)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	header := http.Header{"Origin": []string{"https://chat.example.com"}}
	if _, err := dialTestServer(t, ts.URL+"/ws", header); err != nil {
		t.Errorf("allowed origin was refused: %v", err)
	}
	header = http.Header{"Origin": []string{"https://evil.io"}}
	if _, err := dialTestServer(t, ts.URL+"/ws", header); err != websocket.ErrBadHandshake {
		t.Errorf("expected a bad handshake, got %v", err)
	}
}

func TestSameOriginDefault(t *testing.T) {
	server := newTestServer(t, testServerConfig)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	header := http.Header{"Origin": []string{"https://evil.io"}}
	if _, err := dialTestServer(t, ts.URL+"/ws", header); err != websocket.ErrBadHandshake {
		t.Errorf("expected a bad handshake, got %v", err)
	}
}

func writeConfigFile(t *testing.T, filename, data string) {
	t.Helper()
	if err := os.WriteFile(filename, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
}

func newFileServer(t *testing.T, data string) (server *Server, filename string) {
	t.Helper()
	filename = filepath.Join(t.TempDir(), "chatfmt.yaml")
	writeConfigFile(t, filename, data)
	config, err := LoadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	logman, _ := logger.NewManager(config.Logging)
	formatter, err := NewFormatter(config, logman)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { formatter.Close() })
	server, err = NewServer(formatter, logman)
	if err != nil {
		t.Fatal(err)
	}
	return
}

func TestRehash(t *testing.T) {
	server, filename := newFileServer(t, testServerConfig+`
gradients: {"neon": ["#ffffff", "#000000"]}
`)
	assertEqual(server.formatter.Format("<neon>ab</neon>", true), "§fa§0b", t)

	writeConfigFile(t, filename, testServerConfig+`
center: {limit: 127}
gradients: {"other": ["#000000", "#ffffff"]}
`)
	if err := server.rehash(); err != nil {
		t.Fatal(err)
	}
	assertEqual(server.formatter.Format("<neon>ab</neon>", true), "<neon>ab</neon>", t)
	assertEqual(server.formatter.Format("<other>ab</other>", true), "§0a§fb", t)
	assertEqual(server.formatter.Format("<center>Hi", false), spaces(31)+"Hi", t)

	// a broken config leaves the running one in place
	writeConfigFile(t, filename, "center: {limit: -5}")
	if err := server.rehash(); err == nil {
		t.Error("expected the rehash to fail")
	}
	assertEqual(server.formatter.Config().Center.Limit, 127, t)

	writeConfigFile(t, filename, "legacy: true")
	if err := server.rehash(); err == nil {
		t.Error("expected the rehash to fail without a listener")
	}
}

func TestRunAndStop(t *testing.T) {
	server := newTestServer(t, testServerConfig)
	if err := server.Listen(); err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- server.Run() }()

	conn, err := dialTestServer(t, "http://"+server.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(roundTrip(t, conn, Request{Type: "format", Message: "&bok"}).Result, "§bok", t)

	server.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Error(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	// open websocket connections are closed by the shutdown, not left to idle out
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected a going-away close, got %v", err)
	}
}

func TestWatchConfig(t *testing.T) {
	server, filename := newFileServer(t, testServerConfig+"    watch: true\n")
	if err := server.Listen(); err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- server.Run() }()
	defer func() {
		server.Stop()
		<-done
	}()

	writeConfigFile(t, filename, testServerConfig+"    watch: true\ncenter: {limit: 127}\n")
	deadline := time.Now().Add(10 * time.Second)
	for server.formatter.Config().Center.Limit != 127 {
		if time.Now().After(deadline) {
			t.Fatal("config change was not picked up")
		}
		time.Sleep(20 * time.Millisecond)
	}
	assertEqual(server.formatter.Format("<center>Hi", false), spaces(31)+"Hi", t)
}
