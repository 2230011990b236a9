package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/narrator/session"
	"github.com/lixenwraith/narrator/speech"
)

var (
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLabel  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleUrgent = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorTeal)
)

const helpLine = "arrows/hjkl move  tab section  enter confirm  d detail  r read  s summary  H/E stats  i inspect  c combat mode  ? status  q quit"

// draw renders the navigation focus, the recent transcript and the metric lines
func draw(screen tcell.Screen, sess *session.Session, transcript *speech.Transcript) {
	screen.Clear()
	w, h := screen.Size()

	nav := sess.Navigation()
	y := 0
	drawText(screen, 0, y, w, styleTitle, fmt.Sprintf("narrator  session %.8s", sess.ID()))
	y += 2

	drawText(screen, 0, y, w, styleLabel, fmt.Sprintf("mode %s  section %s  detail %v", nav.Mode(), nav.Section(), nav.DetailActive()))
	y++
	drawText(screen, 0, y, w, styleText, "focus: "+nav.CurrentText())
	y += 2

	drawText(screen, 0, y, w, styleLabel, "spoken:")
	y++
	for _, line := range transcript.Recent() {
		style := styleText
		if strings.HasPrefix(line, speech.InterruptMark) {
			style = styleUrgent
		}
		drawText(screen, 2, y, w, style, line)
		y++
	}
	y++

	for _, line := range sess.Metrics().Lines() {
		if y >= h-2 {
			break
		}
		drawText(screen, 0, y, w, styleStatus, line)
		y++
	}

	drawText(screen, 0, h-1, w, styleLabel, helpLine)
	screen.Show()
}

// drawText writes s from x on row y, clipped at width
func drawText(screen tcell.Screen, x, y, width int, style tcell.Style, s string) {
	for _, r := range s {
		if x >= width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
