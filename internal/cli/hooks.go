package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/papermap/pkg/observability"
)

// logHooks reports pipeline and map events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnLoadComplete(_ context.Context, source string, records, skipped int, err error) {
	if err != nil {
		h.logger.Debug("load failed", "source", source, "error", err)
		return
	}
	h.logger.Debug("loaded", "source", source, "records", records, "skipped", skipped)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", formats, "took", d.Round(time.Millisecond), "error", err)
}

func (h logHooks) OnRender(marks, skipped int, d time.Duration) {
	h.logger.Debug("scene", "marks", marks, "skipped", skipped, "took", d)
}

func (h logHooks) OnRenderDeferred(width, height float64) {
	h.logger.Debug("render deferred", "width", width, "height", height)
}

func (h logHooks) OnGesture(kind string, captured bool) {
	h.logger.Debug("gesture", "kind", kind, "captured", captured)
}

func (h logHooks) OnHover(id string) {
	h.logger.Debug("hover", "id", id)
}

// registerHooks routes observability events to the CLI logger.
func (c *CLI) registerHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetMapHooks(h)
}
