package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
)

// dashboard draws a live one-line-per-metric terminal readout of render
// progress (samples/pixel, elapsed time), replacing bare fmt.Println
// progress lines with a redrawn tcell screen the way lixenwraith-vi-fighter
// redraws its whole screen on every tick.
type dashboard struct {
	screen tcell.Screen
}

func newDashboard() (*dashboard, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack))
	return &dashboard{screen: screen}, nil
}

// Update redraws the dashboard with the latest progress snapshot.
func (d *dashboard) Update(averageSamples float64, elapsed time.Duration) {
	d.screen.Clear()
	d.drawLine(0, 0, "lumentrace — progressive render", tcell.StyleDefault.Bold(true))
	d.drawLine(0, 2, fmt.Sprintf("elapsed:          %s", elapsed.Round(time.Second)), tcell.StyleDefault)
	d.drawLine(0, 3, fmt.Sprintf("samples/pixel:    %.2f", averageSamples), tcell.StyleDefault)
	samplesPerSec := 0.0
	if elapsed > 0 {
		samplesPerSec = averageSamples / elapsed.Seconds()
	}
	d.drawLine(0, 4, fmt.Sprintf("samples/sec:      %.2f", samplesPerSec), tcell.StyleDefault)
	d.drawLine(0, 6, "ctrl+c to stop and save", tcell.StyleDefault.Foreground(tcell.ColorGray))
	d.screen.Show()
}

func (d *dashboard) drawLine(x, y int, text string, style tcell.Style) {
	for i, r := range text {
		d.screen.SetContent(x+i, y, r, nil, style)
	}
}

// Close restores the terminal.
func (d *dashboard) Close() {
	d.screen.Fini()
}
