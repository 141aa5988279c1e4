package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/printcraft/m3dhost/executor"
)

// monitorView is a small text UI showing print-streaming progress as a
// single line of lines sent against the total; it keeps no log of
// individual acknowledgements. It repurposes the debugger's tview-based layout
// approach for a single-panel live display instead of a full debugger.
type monitorView struct {
	app  *tview.Application
	view *tview.TextView
	done chan struct{}
}

func newMonitorView() *monitorView {
	view := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	view.SetBorder(true).SetTitle(" m3dhost print monitor ")

	app := tview.NewApplication().SetRoot(view, true)
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	m := &monitorView{app: app, view: view, done: make(chan struct{})}

	go func() {
		defer close(m.done)
		_ = app.Run()
	}()

	return m
}

// update renders the latest streaming progress. It is safe to call from
// the executor's goroutine since tview queues draws onto the app's own
// event loop.
func (m *monitorView) update(p executor.Progress) {
	m.app.QueueUpdateDraw(func() {
		m.view.SetText(fmt.Sprintf("[green]sent[white] %d / %d lines", p.Sent, p.Total))
	})
}

// Close stops the text UI and waits for its event loop to exit.
func (m *monitorView) Close() {
	m.app.Stop()
	<-m.done
}
