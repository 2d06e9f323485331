package app

import (
	"go.uber.org/zap"

	"github.com/llzware/llzdeck/api"
)

// hostControl implements api.Host for the active plugin. Plugin hooks
// run on the frame loop goroutine, so requests land in plain fields
// the loop drains after each hook returns. A plugin never sees its
// own request take effect mid-call.
type hostControl struct {
	log *zap.SugaredLogger

	// active is the running plugin's name, for log attribution.
	active string

	requested string
	rebuild   bool
	pending   []api.Notification
}

func newHostControl(log *zap.SugaredLogger) *hostControl {
	return &hostControl{log: log}
}

// RequestPlugin implements api.Host.
func (h *hostControl) RequestPlugin(name string) {
	h.requested = name
}

// RequestMenuRebuild implements api.Host.
func (h *hostControl) RequestMenuRebuild() {
	h.rebuild = true
}

// Notify implements api.Host.
func (h *hostControl) Notify(n api.Notification) {
	h.pending = append(h.pending, n)
}

// Logf implements api.Host.
func (h *hostControl) Logf(format string, args ...any) {
	h.log.With("plugin", h.active).Infof(format, args...)
}

// take drains the requests accumulated since the last drain.
func (h *hostControl) take() (requested string, rebuild bool, notes []api.Notification) {
	requested, rebuild, notes = h.requested, h.rebuild, h.pending
	h.requested, h.rebuild, h.pending = "", false, nil
	return requested, rebuild, notes
}

// reset clears attribution and any stale requests at launch and close.
func (h *hostControl) reset(active string) {
	h.active = active
	h.requested = ""
	h.rebuild = false
	h.pending = nil
}
