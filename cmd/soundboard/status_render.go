package main

import (
	"fmt"
	"strings"

	"soundboard/internal/deps"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// dependencyLines reports local binary availability, with a summary line first.
func dependencyLines(statuses []deps.Status, colorize bool) []string {
	missingRequired := deps.MissingRequired(statuses)
	var missingOptional []string
	lines := make([]string, 0, len(statuses)+1)
	for _, s := range statuses {
		switch {
		case s.Available:
			lines = append(lines, renderStatusLine(s.Name, statusOK, "ready ("+s.Path+")", colorize))
		case s.Optional:
			missingOptional = append(missingOptional, s.Name)
			lines = append(lines, renderStatusLine(s.Name, statusWarn, s.Detail, colorize))
		default:
			lines = append(lines, renderStatusLine(s.Name, statusError, s.Detail, colorize))
		}
	}

	var summary string
	switch {
	case len(missingRequired) > 0:
		summary = renderStatusLine("Summary", statusError, fmt.Sprintf("%d required binary missing", len(missingRequired)), colorize)
	case len(missingOptional) > 0:
		summary = renderStatusLine("Summary", statusWarn, "missing: "+strings.Join(missingOptional, ", "), colorize)
	default:
		summary = renderStatusLine("Summary", statusOK, "all binaries found", colorize)
	}
	return append([]string{summary}, lines...)
}
