package html2img

import (
	"fmt"
	"strings"
)

// CustomLabel is reported when no preset matches the current dimensions.
const CustomLabel = "Custom"

// DimensionPreset is a named output frame size.
type DimensionPreset struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// String returns "Name (WxH)".
func (p DimensionPreset) String() string {
	return fmt.Sprintf("%s (%dx%d)", p.Name, p.Width, p.Height)
}

var socialPresets = []DimensionPreset{
	{Name: "Instagram Post", Width: 1080, Height: 1080},
	{Name: "Instagram Story", Width: 1080, Height: 1920},
	{Name: "YouTube Thumbnail", Width: 1280, Height: 720},
	{Name: "Facebook Post", Width: 1200, Height: 630},
	{Name: "LinkedIn Post", Width: 1200, Height: 1200},
}

var devicePresets = []DimensionPreset{
	{Name: "Mobile", Width: 390, Height: 844},
	{Name: "Tablet", Width: 768, Height: 1024},
	{Name: "Laptop", Width: 1366, Height: 768},
	{Name: "Desktop", Width: 1920, Height: 1080},
}

// SocialPresets returns a copy of the social media presets in display order.
func SocialPresets() []DimensionPreset {
	return append([]DimensionPreset(nil), socialPresets...)
}

// DevicePresets returns a copy of the device presets in display order.
func DevicePresets() []DimensionPreset {
	return append([]DimensionPreset(nil), devicePresets...)
}

// Registry holds the two preset groups. UIs render them as separate clusters;
// reconciliation searches them as one sequence, social first.
type Registry struct {
	Social []DimensionPreset `json:"social"`
	Device []DimensionPreset `json:"device"`
}

// DefaultRegistry returns the built-in presets.
func DefaultRegistry() Registry {
	return Registry{
		Social: SocialPresets(),
		Device: DevicePresets(),
	}
}

// All returns social presets followed by device presets.
// This is the iteration order used by Reconcile.
func (r Registry) All() []DimensionPreset {
	all := make([]DimensionPreset, 0, len(r.Social)+len(r.Device))
	all = append(all, r.Social...)
	return append(all, r.Device...)
}

// Reconcile returns the name of the first preset whose dimensions equal
// width x height, or CustomLabel when none matches.
func (r Registry) Reconcile(width, height int) string {
	for _, p := range r.All() {
		if p.Width == width && p.Height == height {
			return p.Name
		}
	}
	return CustomLabel
}

// Lookup finds a preset by name (case-insensitive).
func (r Registry) Lookup(name string) (DimensionPreset, bool) {
	for _, p := range r.All() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return DimensionPreset{}, false
}

// Select returns the named preset after confirming that reconciling its
// dimensions yields the same name. A preset whose dimensions are claimed by
// an earlier entry cannot become the active label and is rejected.
func (r Registry) Select(name string) (DimensionPreset, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return DimensionPreset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	if label := r.Reconcile(p.Width, p.Height); label != p.Name {
		return DimensionPreset{}, fmt.Errorf("%w: %q resolves to %q", ErrPresetShadowed, p.Name, label)
	}
	return p, nil
}

// Names returns all preset names in reconciliation order.
func (r Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	return names
}

// Reconcile matches width x height against the default registry.
func Reconcile(width, height int) string {
	return DefaultRegistry().Reconcile(width, height)
}
