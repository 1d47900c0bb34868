// Package tui is an optional live dashboard for the CLI host's batch
// operations. It consumes the same progress/error channels the
// line-buffered colored output in cmd/ does; it changes nothing about
// core semantics, it's just a second listener on the same event stream.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/heizence/securevault/internal/batch"
)

const barWidth = 40

// Dashboard renders one batch operation's progress as a live bar plus a
// scrolling log of per-file results. Press 'c' or Ctrl+C to request
// cancellation through onCancel.
type Dashboard struct {
	app      *tview.Application
	bar      *tview.TextView
	log      *tview.TextView
	status   *tview.TextView
	onCancel func()
}

// NewDashboard builds a Dashboard for an operation named label (e.g.
// "encrypt", "decrypt", "shred"). onCancel is invoked at most once, the
// first time the user requests cancellation.
func NewDashboard(label string, onCancel func()) *Dashboard {
	d := &Dashboard{app: tview.NewApplication(), onCancel: onCancel}

	d.status = tview.NewTextView().SetDynamicColors(true)
	d.status.SetText(fmt.Sprintf("[yellow]%s[-] starting...", label))

	d.bar = tview.NewTextView().SetDynamicColors(true)
	d.bar.SetText(renderBar(0))

	d.log = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	d.log.SetBorder(true).SetTitle(" activity ")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.status, 1, 0, false).
		AddItem(d.bar, 1, 0, false).
		AddItem(d.log, 0, 1, false)

	cancelRequested := false
	layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'c' || event.Rune() == 'q' || event.Key() == tcell.KeyCtrlC {
			if d.onCancel != nil && !cancelRequested {
				cancelRequested = true
				d.onCancel()
			}
			d.status.SetText("[red]cancellation requested, finishing current file...[-]")
			return nil
		}
		return event
	})

	d.app.SetRoot(layout, true)
	return d
}

// Run starts the dashboard's event loop and drains progress/errs in a
// background goroutine, stopping the application once both channels
// close.
func (d *Dashboard) Run(progress <-chan batch.ProgressEvent, errs <-chan batch.ErrorEvent) error {
	go func() {
		for progress != nil || errs != nil {
			select {
			case p, ok := <-progress:
				if !ok {
					progress = nil
					continue
				}
				d.handleProgress(p)
			case e, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				d.handleError(e)
			}
		}
		d.app.QueueUpdateDraw(func() {
			d.status.SetText("[green]finished — press any key to exit[-]")
		})
	}()
	return d.app.Run()
}

func (d *Dashboard) handleProgress(p batch.ProgressEvent) {
	d.app.QueueUpdateDraw(func() {
		d.bar.SetText(renderBar(p.TotalProgress))
		if p.Status == "done" {
			d.status.SetText(fmt.Sprintf("[green]done[-] — %d/%d files", p.CurrentFileNumber, p.TotalFiles))
			fmt.Fprintf(d.log, "[green]done[-]\n")
			return
		}
		d.status.SetText(fmt.Sprintf("[cyan]processing[-] %d/%d", p.CurrentFileNumber, p.TotalFiles))
		fmt.Fprintf(d.log, "[cyan]ok[-]   %s\n", tview.Escape(p.CurrentFilePath))
	})
}

func (d *Dashboard) handleError(e batch.ErrorEvent) {
	d.app.QueueUpdateDraw(func() {
		fmt.Fprintf(d.log, "[red]fail[-] %s: %s\n", tview.Escape(e.FilePath), tview.Escape(e.Message))
		d.status.SetText("[red]stopped after an error[-]")
	})
}

// Stop tears down the dashboard's application loop.
func (d *Dashboard) Stop() {
	d.app.Stop()
}

func renderBar(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(barWidth))
	return fmt.Sprintf("[%s%s] %3.0f%%",
		strings.Repeat("=", filled), strings.Repeat(" ", barWidth-filled), fraction*100)
}
