package tools

import "log/slog"

// Pipeline checkpoint stages reported through the progress sink.
const (
	StageValidated = "validated"
	StageEncoded   = "encoded"
	StageRequested = "requested"
	StageSaved     = "saved"
	StageDone      = "done"
)

// Progress receives checkpoint updates from a tool pipeline. The percent
// values reported by a single invocation never decrease and end at 100.
// Implementations must not block; a sink that panics is isolated from the
// pipeline that called it.
type Progress func(percent int, stage string)

// progress returns the sink for one tool invocation. Pipeline code calls the
// returned function at each checkpoint and never checks for nil.
func (d *Deps) progress(tool string) Progress {
	sink := d.Progress
	if sink == nil {
		sink = func(percent int, stage string) {
			slog.Debug("tool progress",
				slog.String("tool", tool),
				slog.Int("percent", percent),
				slog.String("stage", stage),
			)
		}
	}
	return func(percent int, stage string) {
		defer func() {
			if r := recover(); r != nil {
				slog.Debug("progress sink panicked", slog.String("tool", tool), slog.Any("cause", r))
			}
		}()
		sink(percent, stage)
	}
}
