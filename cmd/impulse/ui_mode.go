package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the tri-state of the --ui flag. Auto resolves against the
// terminal at the point of use, so piping build output disables the TUI
// without an explicit off.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.TrimSpace(strings.ToLower(value)))
	switch mode {
	case uiModeOn, uiModeOff, uiModeAuto:
		return mode, nil
	case "":
		return uiModeAuto, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

func shouldUseTUI(mode uiMode) bool {
	if mode == uiModeAuto {
		return isTerminal(os.Stdout)
	}
	return mode == uiModeOn
}
