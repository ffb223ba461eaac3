package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// colorLevelOnce/colorLevelVal cache the terminal's color support the
// same way the teacher's detectColorLevel() does: NO_COLOR opts out,
// a non-tty disables color outright, TERM=dumb disables it too.
var (
	colorLevelOnce sync.Once
	colorLevelVal  bool
)

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	colorLevelOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			colorLevelVal = false
			return
		}
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			colorLevelVal = false
			return
		}
		if os.Getenv("TERM") == "dumb" {
			colorLevelVal = false
			return
		}
		colorLevelVal = true
	})
	return colorLevelVal
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
	ansiReset  = "\x1b[0m"
)

// Render writes one diagnostic per line, colorizing the severity tag
// when w is a real terminal.
func Render(w io.Writer, diags []Diagnostic) {
	color := colorEnabled(w)
	for _, d := range diags {
		tag := strings.ToUpper(d.Severity.String())
		if color {
			c := ansiYellow
			if d.Severity == Error {
				c = ansiRed
			}
			fmt.Fprintf(w, "%s%s%s%s [%s] %s: %s\n", c, ansiBold, tag, ansiReset, d.Code, d.Location, d.Message)
		} else {
			fmt.Fprintf(w, "%s [%s] %s: %s\n", tag, d.Code, d.Location, d.Message)
		}
	}
}

// FormatJobDuration renders a job's wall-clock time the way a trace or
// diagnostic footer would, e.g. "312ms" or "2.1s".
func FormatJobDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

// FormatBytes renders a byte count the way a job-output summary would,
// e.g. "4.2 MB".
func FormatBytes(n uint64) string {
	return humanize.Bytes(n)
}
