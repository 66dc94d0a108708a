// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package segments

import (
	"regexp"
	"strings"
)

// ActionKind is what happens when a segment is clicked.
type ActionKind string

const (
	OpenURL         ActionKind = "open_url"
	RunCommand      ActionKind = "run_command"
	SuggestCommand  ActionKind = "suggest_command"
	CopyToClipboard ActionKind = "copy_to_clipboard"
	ChangePage      ActionKind = "change_page"
)

// maximum number of actions in one tag, e.g. <run:"/spawn"|hover:"Go home">
const maxActions = 2

var (
	clickKinds = map[string]ActionKind{
		"url":               OpenURL,
		"link":              OpenURL,
		"open_url":          OpenURL,
		"run":               RunCommand,
		"cmd":               RunCommand,
		"command":           RunCommand,
		"run_command":       RunCommand,
		"suggest":           SuggestCommand,
		"suggest_command":   SuggestCommand,
		"copy":              CopyToClipboard,
		"clipboard":         CopyToClipboard,
		"copy_to_clipboard": CopyToClipboard,
		"page":              ChangePage,
		"change_page":       ChangePage,
	}
	hoverTextNames = map[string]bool{"hover": true, "text": true, "show_text": true}
	hoverItemNames = map[string]bool{"item": true, "show_item": true}

	actionRe = regexp.MustCompile(`([a-zA-Z_]+):"([^"]*)"`)
	// literal "\n" escapes as well as real newlines separate hover lines
	hoverLineSeparator = strings.NewReplacer(`\n`, "\n", "\r", "")
)

// Action is one parsed tag action: a ClickAction, a HoverText or a HoverItem.
type Action interface {
	applyTo(segment *Segment)
}

// ClickAction is an action run by the client when the segment is clicked.
type ClickAction struct {
	Kind     ActionKind `json:"kind"`
	Argument string     `json:"argument"`
}

func (a ClickAction) applyTo(segment *Segment) {
	click := a
	segment.Click = &click
}

// HoverText shows lines of text when the segment is hovered.
type HoverText struct {
	Lines []string
}

func (a HoverText) applyTo(segment *Segment) {
	segment.HoverLines = a.Lines
	segment.HoverPayload = ""
}

// HoverItem shows an opaque item description when the segment is hovered.
type HoverItem struct {
	Payload string
}

func (a HoverItem) applyTo(segment *Segment) {
	segment.HoverPayload = a.Payload
	segment.HoverLines = nil
}

// ParseAction maps an action name (case-insensitive) and its argument to an
// Action. Unknown names yield nil.
func ParseAction(name, argument string) Action {
	name = strings.ToLower(name)
	if kind, ok := clickKinds[name]; ok {
		return ClickAction{Kind: kind, Argument: argument}
	} else if hoverTextNames[name] {
		return HoverText{Lines: strings.Split(hoverLineSeparator.Replace(argument), "\n")}
	} else if hoverItemNames[name] {
		return HoverItem{Payload: argument}
	}
	return nil
}

// ParseActions parses the `name:"argument"|name:"argument"` head of a tag.
// At most two actions are returned.
func ParseActions(head string) []Action {
	actions := make([]Action, 0, maxActions)
	for _, match := range actionRe.FindAllStringSubmatch(head, maxActions) {
		if action := ParseAction(match[1], match[2]); action != nil {
			actions = append(actions, action)
		}
	}
	return actions
}
