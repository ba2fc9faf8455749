package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"geotag/internal/logging"
)

// progressReporter draws a bar on interactive terminals and falls back to
// sampled log lines otherwise.
type progressReporter struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
	logger  *slog.Logger
}

func newProgressReporter(out io.Writer, logger *slog.Logger) *progressReporter {
	p := &progressReporter{out: out, logger: logging.NewComponentLogger(logger, "progress")}
	if !shouldColorize(out) {
		p.sampler = logging.NewProgressSampler(10)
		return p
	}
	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Writing frames"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
	)
	return p
}

func (p *progressReporter) update(written, total int) {
	if p.bar != nil {
		if total > 0 && p.bar.GetMax() != total {
			p.bar.ChangeMax(total)
		}
		_ = p.bar.Set(written)
		return
	}
	if p.sampler.ShouldLog(written, total) {
		p.logger.Info("extraction progress",
			logging.Int("written", written),
			logging.Int("total_estimate", total),
		)
	}
}

func (p *progressReporter) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprintln(p.out)
}
