package html2img

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownAction is returned by Reduce for unrecognized action kinds.
var ErrUnknownAction = errors.New("unknown action")

// AppState is the complete editor state of one studio session.
// It is a value: Reduce returns a new state and never mutates its input.
type AppState struct {
	Markup           string `json:"markup"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Format           Format `json:"format"`
	QualityPercent   int    `json:"quality"`
	Status           Status `json:"status"`
	Busy             bool   `json:"busy"`
	OverlayOpen      bool   `json:"overlayOpen"`
	BackgroundScroll bool   `json:"backgroundScroll"`

	// savedScroll holds BackgroundScroll while the overlay suppresses it.
	savedScroll bool
}

// NewAppState returns the initial state: markup, a 1080x1080 SVG frame at 95% quality.
func NewAppState(markup string) AppState {
	return AppState{
		Markup:           markup,
		Width:            DefaultWidth,
		Height:           DefaultHeight,
		Format:           FormatSVG,
		QualityPercent:   DefaultQualityPercent,
		Status:           ReadyStatus,
		BackgroundScroll: true,
	}
}

// ActivePreset returns the reconciled label for the current dimensions.
func (s AppState) ActivePreset() string {
	return Reconcile(s.Width, s.Height)
}

// ExportOptions returns the options an export of this state would use.
func (s AppState) ExportOptions() ExportOptions {
	return ExportOptions{
		Width:   s.Width,
		Height:  s.Height,
		Quality: QualityFromPercent(s.QualityPercent),
	}
}

// CanExport reports whether the export trigger is enabled.
func (s AppState) CanExport() bool {
	return !s.Busy
}

// ActionKind names a state transition.
type ActionKind string

// Action kinds.
const (
	ActionSetMarkup      ActionKind = "set_markup"
	ActionSetWidthInput  ActionKind = "set_width_input"
	ActionSetHeightInput ActionKind = "set_height_input"
	ActionSetDimensions  ActionKind = "set_dimensions"
	ActionSelectPreset   ActionKind = "select_preset"
	ActionSetFormat      ActionKind = "set_format"
	ActionSetQuality     ActionKind = "set_quality"
	ActionExportStarted  ActionKind = "export_started"
	ActionExportFinished ActionKind = "export_finished"
	ActionDismissStatus  ActionKind = "dismiss_status"
	ActionOpenOverlay    ActionKind = "open_overlay"
	ActionCloseOverlay   ActionKind = "close_overlay"
	ActionKeyPress       ActionKind = "key_press"
)

// Action is a state transition request. Only the fields relevant to Kind are read.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Markup  string     `json:"markup,omitempty"`
	Input   string     `json:"input,omitempty"`
	Width   int        `json:"width,omitempty"`
	Height  int        `json:"height,omitempty"`
	Preset  string     `json:"preset,omitempty"`
	Format  string     `json:"format,omitempty"`
	Quality int        `json:"quality,omitempty"`
	Key     string     `json:"key,omitempty"`
	Status  *Status    `json:"status,omitempty"`
}

// Reduce applies a to s. On error the original state is returned unchanged.
func Reduce(s AppState, a Action) (AppState, error) {
	next := s

	switch a.Kind {
	case ActionSetMarkup:
		next.Markup = a.Markup

	case ActionSetWidthInput:
		next.Width = ParseDimension(a.Input)

	case ActionSetHeightInput:
		next.Height = ParseDimension(a.Input)

	case ActionSetDimensions:
		next.Width, next.Height = a.Width, a.Height

	case ActionSelectPreset:
		p, err := DefaultRegistry().Select(a.Preset)
		if err != nil {
			return s, err
		}
		next.Width, next.Height = p.Width, p.Height

	case ActionSetFormat:
		f, err := ParseFormat(a.Format)
		if err != nil {
			return s, err
		}
		next.Format = f

	case ActionSetQuality:
		next.QualityPercent = clampPercent(a.Quality)

	case ActionExportStarted:
		if s.Busy {
			return s, ErrExportInProgress
		}
		next.Busy = true
		next.Status = Status{Phase: PhaseInProgress, Format: s.Format}

	case ActionExportFinished:
		next.Busy = false
		if a.Status != nil {
			next.Status = *a.Status
		}

	case ActionDismissStatus:
		if s.Busy {
			return s, ErrExportInProgress
		}
		next.Status = ReadyStatus

	case ActionOpenOverlay:
		if !s.OverlayOpen {
			next.savedScroll = s.BackgroundScroll
			next.BackgroundScroll = false
			next.OverlayOpen = true
		}

	case ActionCloseOverlay:
		next = closeOverlay(next)

	case ActionKeyPress:
		if a.Key == "Escape" {
			next = closeOverlay(next)
		}

	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}

	return next, nil
}

func closeOverlay(s AppState) AppState {
	if s.OverlayOpen {
		s.BackgroundScroll = s.savedScroll
		s.OverlayOpen = false
	}
	return s
}

// ParseDimension reads a width or height field. Anything that does not start
// with an integer yields 0; trailing text after the digits is ignored.
func ParseDimension(input string) int {
	s := strings.TrimSpace(input)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func clampPercent(p int) int {
	if p < MinQualityPercent {
		return MinQualityPercent
	}
	if p > MaxQualityPercent {
		return MaxQualityPercent
	}
	return p
}
