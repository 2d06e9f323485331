package app

import (
	"fmt"

	"github.com/rivo/uniseg"

	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/notify"
)

// Banner and overlay palette, matched to the menu themes.
var (
	bannerText    = mustColor("#E8EAED")
	bannerInfo    = mustColor("#2B5FA8")
	bannerSuccess = mustColor("#1DB954")
	bannerWarn    = mustColor("#B8860B")
	bannerError   = mustColor("#A83232")
	overlayBg     = mustColor("#1C212B")
	overlayFg     = mustColor("#9AA3AD")
)

func mustColor(hex string) api.Color {
	c, err := api.Hex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

func levelColor(level api.Level) api.Color {
	switch level {
	case api.LevelSuccess:
		return bannerSuccess
	case api.LevelWarn:
		return bannerWarn
	case api.LevelError:
		return bannerError
	default:
		return bannerInfo
	}
}

// draw renders one frame: the menu or the active plugin, then the
// notification banner and the optional metrics footer on top.
func (a *Application) draw() {
	switch a.state {
	case statePlugin:
		rec := a.active
		// Plugins paint on a blank frame; menu themes clear for themselves.
		a.frame.Clear(api.DefaultStyle())
		if err := a.safeCall(rec.Name(), "draw", func() { rec.API.Draw(a.frame) }); err != nil {
			a.failActive(err)
			a.theme.Render(a.frame, a.menu)
		}
	default:
		a.theme.Render(a.frame, a.menu)
	}

	a.drawBanner()
	if a.showMetrics {
		a.drawMetrics()
	}
}

// drawBanner overlays the active notification along the top edge. The
// queue's eased offset slides it in from above: at offset 0 the banner
// sits fully off-screen, at 1 fully revealed.
func (a *Application) drawBanner() {
	n, phase, offset, ok := a.queue.Active()
	if !ok || phase == notify.PhaseIdle {
		return
	}

	width, _ := a.frame.Size()
	rows := 1
	if n.Body != "" {
		rows = 2
	}

	shown := int(float64(rows)*offset + 0.5)
	if shown <= 0 {
		return
	}
	top := shown - rows

	st := api.DefaultStyle().
		WithBackground(levelColor(n.Level)).
		WithForeground(bannerText)

	a.frame.Fill(0, top, width, rows, ' ', st)
	drawCentered(a.frame, top, width, n.Title, st.Bold())
	if n.Body != "" {
		drawCentered(a.frame, top+1, width, n.Body, st)
	}
}

// drawMetrics renders the frame stats footer toggled by F9.
func (a *Application) drawMetrics() {
	s := a.metrics.Snapshot()
	width, height := a.frame.Size()

	line := fmt.Sprintf(" %.0f fps | avg %.2fms | max %.2fms | slow %d | drops %d | heap %.1fMB ",
		s.CurrentFPS(),
		float64(s.AvgFrameTimeNs)/1e6,
		float64(s.MaxFrameTimeNs)/1e6,
		s.SlowFrames,
		s.InputDropped,
		s.HeapMB(),
	)

	st := api.DefaultStyle().WithBackground(overlayBg).WithForeground(overlayFg)
	a.frame.Fill(0, height-1, width, 1, ' ', st)
	a.frame.Text(0, height-1, line, st)
}

// drawCentered writes text centered on row y, clipped by the surface.
func drawCentered(s api.Surface, y, width int, text string, st api.Style) {
	x := (width - uniseg.StringWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	s.Text(x, y, text, st)
}
