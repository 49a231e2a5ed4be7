package utils

import (
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// FormatBytes renders n as a short human readable size in powers of 1024, like 4.0 KiB.
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// ParseBytes parses a size like 4096, 4KiB or 256MiB. SI suffixes (K, M, KB) are powers of 1000.
// Sizes that do not fit in an int64 are rejected.
func ParseBytes(s string) (int64, error) {
	v, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid size %q", s)
	}
	if v > math.MaxInt64 {
		return 0, errors.Errorf("size %q is too large", s)
	}
	return int64(v), nil
}

// NewDynProgressBar creates a byte counting progress bar prefixed with title.
// Output is discarded when quiet is set or stdout is not a terminal.
func NewDynProgressBar(title string, quiet bool) (*mpb.Progress, *mpb.Bar) {
	var progress *mpb.Progress
	if !quiet && isatty.IsTerminal(os.Stdout.Fd()) {
		progress = mpb.New(mpb.WithWidth(64))
	} else {
		progress = mpb.New(mpb.WithWidth(64), mpb.WithOutput(nil))
	}
	bar := progress.AddBar(0,
		mpb.PrependDecorators(
			decor.Name(title, decor.WCSyncWidth),
			decor.CountersKibiByte("% .1f / % .1f"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
		),
	)
	return progress, bar
}
