package html2img

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// Engine names.
const (
	EngineRod = "rod"
	EngineCDP = "cdp"
)

// Engines lists the supported engine names.
var Engines = []string{EngineRod, EngineCDP}

// BrowserConfig configures the headless browser behind an Engine.
type BrowserConfig struct {
	// Bin is the browser executable. Empty uses ROD_BROWSER_BIN, then the
	// engine's own discovery (rod downloads Chromium when none is found).
	Bin string

	// NoSandbox disables the Chrome sandbox. Forced on in CI and when a
	// custom binary is used (containers).
	NoSandbox bool

	// Timeout bounds page loads.
	Timeout time.Duration
}

// resolve fills defaults from the environment.
func (c BrowserConfig) resolve() BrowserConfig {
	if c.Bin == "" {
		c.Bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if os.Getenv("CI") == "true" || c.Bin != "" {
		c.NoSandbox = true
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// NewEngine returns the engine registered under name. Empty selects rod.
func NewEngine(name string, cfg BrowserConfig) (Engine, error) {
	switch strings.ToLower(name) {
	case "", EngineRod:
		return NewRodEngine(cfg), nil
	case EngineCDP:
		return NewCDPEngine(cfg), nil
	}
	return nil, fmt.Errorf("%w: %q (must be %s)", ErrUnknownEngine, name, strings.Join(Engines, " or "))
}

// serializeRootJS clones this element with computed styles inlined and
// scripts removed, and returns it as XHTML. It is a plain function so both
// engines can bind this.
const serializeRootJS = `function () {
	const inline = (src, dst) => {
		if (src.nodeType !== Node.ELEMENT_NODE) return;
		const cs = getComputedStyle(src);
		let css = '';
		for (let i = 0; i < cs.length; i++) {
			const p = cs[i];
			css += p + ':' + cs.getPropertyValue(p) + ';';
		}
		dst.setAttribute('style', css);
		for (let i = 0; i < src.children.length; i++) {
			inline(src.children[i], dst.children[i]);
		}
	};
	const clone = this.cloneNode(true);
	inline(this, clone);
	clone.querySelectorAll('script').forEach((s) => s.remove());
	return new XMLSerializer().serializeToString(clone);
}`

// buildSVG wraps serialized XHTML in a foreignObject sized to the frame.
func buildSVG(xhtml string, width, height int) []byte {
	return fmt.Appendf(nil,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<foreignObject x="0" y="0" width="100%%" height="100%%">%s</foreignObject></svg>`,
		width, height, width, height, xhtml)
}

// jpegQuality converts [0,1] quality to the 0..100 scale used by Chrome.
func jpegQuality(q float64) int {
	return int(math.Round(math.Max(0, math.Min(1, q)) * 100))
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// intPtr returns a pointer to an int value.
func intPtr(v int) *int {
	return &v
}
