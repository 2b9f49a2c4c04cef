// Package theme holds the light and dark presentation themes.
package theme

import (
	"fmt"

	"github.com/nibzard/retrotodo/internal/utils"
)

// Theme names a presentation theme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is the theme used when none is configured.
const Default = Light

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == Light || t == Dark
}

// Parse accepts "light" or "dark" in any case. Empty input yields Default.
func Parse(s string) (Theme, error) {
	switch name := utils.NormalizeName(s); name {
	case "":
		return Default, nil
	case string(Light), string(Dark):
		return Theme(name), nil
	default:
		return "", fmt.Errorf("unknown theme %q (expected light|dark)", s)
	}
}

// ToggleLabel is the label of the control that switches away from t.
func ToggleLabel(t Theme) string {
	if t == Dark {
		return "Light Mode"
	}
	return "Dark Mode"
}
