// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package chat

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/ergochat/chatfmt/chat/colors"
	"github.com/ergochat/chatfmt/chat/logger"
	"github.com/ergochat/chatfmt/chat/patterns"
	"github.com/ergochat/chatfmt/chat/segments"
	"github.com/ergochat/chatfmt/chat/widths"
)

func newTestFormatter(t *testing.T, data string) *Formatter {
	t.Helper()
	config, err := prepareConfig(t, data)
	if err != nil {
		t.Fatal(err)
	}
	formatter, err := NewFormatter(config, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { formatter.Close() })
	return formatter
}

func spaces(n int) string {
	return strings.Repeat(" ", n)
}

func TestFormat(t *testing.T) {
	formatter := newTestFormatter(t, "")
	assertEqual(formatter.Format("plain text", false), "plain text", t)
	assertEqual(formatter.Format("&cHi", false), "§cHi", t)
	assertEqual(formatter.Format("<g:ff0000>AB</g:00ff00>", false), "§x§f§f§0§0§0§0A§x§0§0§f§f§0§0B", t)
	assertEqual(formatter.Format("<g:ff0000>AB</g:00ff00>", true), "§4A§2B", t)
	assertEqual(formatter.Format(`<run:"/help">§aClick</text> now`, false), "§aClick now", t)
	// action tags inside a colour span are dropped before the span is painted
	assertEqual(formatter.Format(`<g:ff0000><run:"/help">AB</text></g:00ff00>`, true), "§4A§2B", t)
	// malformed markup stays literal
	assertEqual(formatter.Format("<g:ff0000>AB", false), "<g:ff0000>AB", t)
}

func TestFormatCenter(t *testing.T) {
	formatter := newTestFormatter(t, "")
	assertEqual(formatter.Format("<center>Hi", false), spaces(38)+"Hi", t)

	// the padding is measured on the resolved text, but prepended to the styled text
	result := formatter.Format("<center><g:ff0000>Hi</g:00ff00>", true)
	assertEqual(result, spaces(38)+"§4H§2i", t)
	result = formatter.Format(`<center><g:ff0000><run:"/x">Hi</text></g:00ff00>`, true)
	assertEqual(result, spaces(38)+"§4H§2i", t)

	assertEqual(formatter.Center(0, "<center>Hi"), "Hi", t)
	assertEqual(formatter.Center(154, "Hi"), "Hi", t)
	assertEqual(formatter.Center(154, "<center>§lHi"), spaces(38)+"§lHi", t)
}

func TestCustomMarker(t *testing.T) {
	formatter := newTestFormatter(t, "center: {marker: '>>', limit: 127}")
	assertEqual(formatter.Format(">>Hi", false), spaces(31)+"Hi", t)
	assertEqual(formatter.Format("<center>Hi", false), "<center>Hi", t)
}

func TestSegments(t *testing.T) {
	formatter := newTestFormatter(t, "")
	result := formatter.Segments(`<run:"/help"><g:ff0000>Hi</g:00ff00></text> ok`, true)
	green := colors.Legacy('2')
	assertEqual(result, []segments.Segment{
		{Content: "§4H§2i", TrailingColor: &green, Click: &segments.ClickAction{Kind: segments.RunCommand, Argument: "/help"}},
		{Content: "§2 ok", TrailingColor: &green},
	}, t)

	result = formatter.Segments(`<hover:"&aone two three">x</text>`, false)
	assertEqual(result[0].HoverLines, []string{"§aone two three"}, t)
}

func TestSegmentsHoverWidth(t *testing.T) {
	formatter := newTestFormatter(t, "hover-width: 7")
	result := formatter.Segments(`<hover:"one two three">x</text>`, false)
	assertEqual(result[0].HoverLines, []string{"one two", "three"}, t)
}

func TestStrip(t *testing.T) {
	formatter := newTestFormatter(t, "")
	assertEqual(formatter.Strip(`<center>&c<g:ff0000>Hi</g:00ff00> <run:"/x">there</text> <sc>you</sc>`), "Hi there you", t)
	assertEqual(formatter.Strip("<rainbow:1>§lbold</rainbow>"), "bold", t)
}

func TestRegistration(t *testing.T) {
	formatter := newTestFormatter(t, "")
	neon, err := patterns.Preset("neon", []colors.RGB{{R: 0xff, G: 0xff, B: 0xff}, {R: 0, G: 0, B: 0}})
	if err != nil {
		t.Fatal(err)
	}

	assertEqual(formatter.Format("<neon>ab</neon>", true), "<neon>ab</neon>", t)
	formatter.RegisterPattern(neon)
	assertEqual(formatter.Format("<neon>ab</neon>", true), "§fa§0b", t)
	names := formatter.PatternNames()
	assertEqual(names[len(names)-1], "preset:neon", t)
	assertEqual(formatter.UnregisterPattern("preset:neon"), true, t)
	assertEqual(formatter.UnregisterPattern("preset:neon"), false, t)
	assertEqual(formatter.Format("<neon>ab</neon>", true), "<neon>ab</neon>", t)

	formatter.AddWidth(widths.NewEntry('H', 45))
	assertEqual(formatter.Width('H', false), 45, t)
	assertEqual(formatter.Format("<center>Hi", false), spaces(33)+"Hi", t)
	assertEqual(formatter.RemoveWidth('H'), true, t)
	assertEqual(formatter.Width('H', false), widths.DefaultWidth, t)
	assertEqual(formatter.Format("<center>Hi", false), spaces(38)+"Hi", t)
}

func TestCachedFormatter(t *testing.T) {
	formatter := newTestFormatter(t, "cache: {enabled: true}")
	uncached := newTestFormatter(t, "")

	message := `<run:"/x">§cone</text> two <#00ff00>three`
	for i := 0; i < 2; i++ {
		assertEqual(formatter.Format(message, false), uncached.Format(message, false), t)
		assertEqual(formatter.Segments(message, true), uncached.Segments(message, true), t)
	}
	hits, _ := formatter.cache.Stats()
	assertEqual(hits, uint64(2), t)

	// registration invalidates cached renders
	assertEqual(formatter.Format("<neon>ab</neon>", true), "<neon>ab</neon>", t)
	neon, _ := patterns.Preset("neon", []colors.RGB{{R: 0xff, G: 0xff, B: 0xff}, {R: 0, G: 0, B: 0}})
	formatter.RegisterPattern(neon)
	assertEqual(formatter.Format("<neon>ab</neon>", true), "§fa§0b", t)
}

func TestApplyConfig(t *testing.T) {
	formatter := newTestFormatter(t, `
widths: {"H": 45}
gradients: {"neon": ["#ffffff", "#000000"]}
`)
	extra, _ := patterns.Preset("extra", []colors.RGB{{R: 0, G: 0, B: 0}, {R: 0xff, G: 0xff, B: 0xff}})
	formatter.RegisterPattern(extra)
	assertEqual(formatter.Width('H', false), 45, t)
	assertEqual(formatter.Format("<neon>ab</neon>", true), "§fa§0b", t)

	config, err := prepareConfig(t, `gradients: {"other": ["#000000", "#ffffff"]}`)
	if err != nil {
		t.Fatal(err)
	}
	formatter.ApplyConfig(config)
	assertEqual(formatter.Width('H', false), 5, t)
	assertEqual(formatter.Format("<neon>ab</neon>", true), "<neon>ab</neon>", t)
	assertEqual(formatter.Format("<other>ab</other>", true), "§0a§fb", t)
	// patterns registered at runtime survive a rehash
	assertEqual(formatter.Format("<extra>ab</extra>", true), "§0a§fb", t)
	assertEqual(formatter.Config(), config, t)
}

func TestTraceLogging(t *testing.T) {
	var buf bytes.Buffer
	logman, err := logger.NewManager([]logger.LoggingConfig{{
		Writer: &buf,
		Level:  logger.LogDebug,
		Types:  []string{logger.TraceType},
	}})
	if err != nil {
		t.Fatal(err)
	}
	config, _ := prepareConfig(t, "")
	formatter, err := NewFormatter(config, logman)
	if err != nil {
		t.Fatal(err)
	}
	formatter.Format("&chi", false)
	if !strings.Contains(buf.String(), "trace  : format : &chi : §chi\n") {
		t.Errorf("missing trace line in %q", buf.String())
	}
}

func TestConcurrentFormatting(t *testing.T) {
	formatter := newTestFormatter(t, "cache: {enabled: true}")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				formatter.Format("<center><rainbow:100>concurrent</rainbow>", j%2 == 0)
				formatter.Segments(`<run:"/x">&aclick</text>`, false)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				formatter.AddWidth(widths.NewEntry('★', j%9+1))
				formatter.RemoveWidth('★')
			}
		}()
	}
	wg.Wait()
}

func BenchmarkFormat(b *testing.B) {
	config := new(Config)
	config.Prepare()
	formatter, _ := NewFormatter(config, nil)
	message := `<center><#ff0000:#00ff00:#0000ff>Welcome to the server</g> <run:"/help">§lhelp</text>`
	for i := 0; i < b.N; i++ {
		formatter.Format(message, false)
	}
}
