package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusLevel is the severity reported to the host's status indicator.
type StatusLevel int

const (
	StatusUnknown StatusLevel = iota
	StatusOK
	StatusWarning
	StatusError
)

// String returns a human-readable representation of the status level.
func (l StatusLevel) String() string {
	switch l {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "Warning"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Color is a 24-bit RGB colour as used by control surface buttons.
type Color uint32

// RGB packs the components into a Color.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Hex returns the colour formatted as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// ParseColor parses a colour option value, either "#rrggbb" or a decimal
// integer as stored by hosts that keep colours numerically.
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	base := 10
	if strings.HasPrefix(s, "#") {
		s, base = s[1:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil || v > 0xffffff {
		return 0, false
	}
	return Color(v), true
}

// RGBFunc resolves colour components into a host colour.
type RGBFunc func(r, g, b uint8) Color

// Style is the visual result of a feedback or the default look of a preset button.
// Nil fields are left unchanged by the host.
type Style struct {
	Text    string `json:"text,omitempty"`
	Size    string `json:"size,omitempty"`
	Color   *Color `json:"color,omitempty"`
	BgColor *Color `json:"bgcolor,omitempty"`
}

// Empty returns true if the style changes nothing.
func (s Style) Empty() bool {
	return s.Text == "" && s.Size == "" && s.Color == nil && s.BgColor == nil
}

// ColorRef returns a pointer to c, for use in Style literals.
func ColorRef(c Color) *Color {
	return &c
}

// OptionType is the kind of input an action or feedback option takes.
type OptionType string

const (
	OptionDropdown    OptionType = "dropdown"
	OptionColorPicker OptionType = "colorpicker"
	OptionText        OptionType = "textinput"
)

// Choice is one entry of a dropdown option.
type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Option describes a configurable input of an action or feedback.
type Option struct {
	Type    OptionType `json:"type"`
	ID      string     `json:"id"`
	Label   string     `json:"label"`
	Default string     `json:"default,omitempty"`
	Choices []Choice   `json:"choices,omitempty"`
}

// VariableDefinition declares a host variable.
type VariableDefinition struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// VariableValue is the current value of a host variable.
type VariableValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ActionDefinition declares a host-invokable action.
type ActionDefinition struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Options []Option `json:"options,omitempty"`
}

// FeedbackDefinition declares a host feedback.
type FeedbackDefinition struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Options     []Option `json:"options,omitempty"`
}

// ActionRef binds an action with option values inside a preset.
type ActionRef struct {
	Action  string            `json:"action"`
	Options map[string]string `json:"options,omitempty"`
}

// FeedbackRef binds a feedback with option values inside a preset.
type FeedbackRef struct {
	Type    string            `json:"type"`
	Options map[string]string `json:"options,omitempty"`
}

// PresetDefinition is a ready-made button offered to the user.
type PresetDefinition struct {
	Category  string        `json:"category"`
	Label     string        `json:"label"`
	Bank      Style         `json:"bank"`
	Actions   []ActionRef   `json:"actions"`
	Feedbacks []FeedbackRef `json:"feedbacks,omitempty"`
}

// ActionEvent is an action invocation from the host.
type ActionEvent struct {
	Action  string            `json:"action"`
	Options map[string]string `json:"options"`
}

// FeedbackEvent is a feedback evaluation request from the host.
type FeedbackEvent struct {
	Type    string            `json:"type"`
	Options map[string]string `json:"options"`
}
