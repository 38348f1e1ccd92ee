// Package progress renders research-run progress on the terminal or in
// CI logs.
package progress

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback during a research run. Percent is
// in [0,100]; the phase describes what the pipeline is doing.
type Reporter interface {
	Start(query string)
	Update(percent int, phase string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive
// terminal, or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(query string) {
	r.bar = progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Researching: "+query),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(percent int, phase string) {
	if r.bar != nil {
		// Multi-line phases (in-flight query listings) collapse to the
		// first line to keep the bar on one row.
		if i := strings.IndexByte(phase, '\n'); i >= 0 {
			phase = phase[:i]
		}
		r.bar.Describe(phase)
		_ = r.bar.Set(percent)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct{}

func (r *CIReporter) Start(query string) {
	fmt.Fprintf(os.Stderr, "Researching: %s\n", query)
}

func (r *CIReporter) Update(percent int, phase string) {
	fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", percent, phase)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Research complete")
}
