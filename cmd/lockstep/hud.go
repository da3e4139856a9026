package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/lockstep/session"
)

const (
	hudLines = 7
	// Top-down plot scale in cells per world unit; terminal cells are about twice as tall as wide
	plotScaleX = 4
	plotScaleZ = 2
	trailLen   = 64
)

var (
	styleLabel  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleValue  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMode   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	styleReplay = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleCamera = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleTrail  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(60, 90, 60))
	styleGrid   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(50, 50, 50))
)

// hud renders the session state and a top-down plot around the player
type hud struct {
	screen    tcell.Screen
	replaying bool
	recording bool
	relay     string

	trail [][2]float32
}

func newHUD(screen tcell.Screen, replaying, recording bool, relay string) *hud {
	return &hud{
		screen:    screen,
		replaying: replaying,
		recording: recording,
		relay:     relay,
	}
}

func (h *hud) text(x, y int, style tcell.Style, s string) int {
	w, _ := h.screen.Size()
	for _, r := range s {
		if x >= w {
			break
		}
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func (h *hud) field(x, y int, label, value string) int {
	x = h.text(x, y, styleLabel, label+" ")
	return h.text(x, y, styleValue, value) + 2
}

func vec(v mgl32.Vec3) string {
	return fmt.Sprintf("(%+.2f %+.2f %+.2f)", v[0], v[1], v[2])
}

func (h *hud) draw(s *session.Session, t session.Tick) {
	h.screen.Clear()

	sm := s.Simulation()
	view := s.View()
	st := s.Stats()

	mode, modeStyle := " LIVE ", styleMode
	if h.replaying {
		mode, modeStyle = " REPLAY ", styleReplay
		if s.ReplayFinished() {
			mode = " REPLAY END "
		}
	}
	x := h.text(0, 0, modeStyle, mode) + 1
	if h.recording {
		x = h.text(x, 0, styleReplay.Background(tcell.ColorRed), " REC ") + 1
	}
	transport := "loopback"
	if h.relay != "" {
		transport = h.relay
	}
	h.field(x, 0, "net", transport)

	x = h.field(0, 1, "frame", fmt.Sprintf("%d", t.Frame))
	x = h.field(x, 1, "hash", fmt.Sprintf("%016x", t.Hash))
	h.field(x, 1, "camera", s.Camera().String())

	x = h.field(0, 2, "eye", vec(view.Eye))
	h.field(x, 2, "target", vec(view.Target))

	x = h.field(0, 3, "player", vec(sm.Player.Position))
	h.field(x, 3, "fwd", vec(sm.Player.Forward()))

	x = h.field(0, 4, "sent", fmt.Sprintf("%d", st.Sent))
	x = h.field(x, 4, "received", fmt.Sprintf("%d", st.Received))
	h.field(x, 4, "applied", fmt.Sprintf("%d", sm.Applied()))

	h.text(0, 5, styleLabel, "wasd move  arrows/mouse look  c camera  q quit")

	pos := sm.Player.Position
	h.trail = append(h.trail, [2]float32{pos[0], pos[2]})
	if len(h.trail) > trailLen {
		h.trail = h.trail[len(h.trail)-trailLen:]
	}
	h.plot(pos, view.Eye)

	h.screen.Show()
}

// plot draws the XZ plane centred on the player below the text lines
func (h *hud) plot(player, eye mgl32.Vec3) {
	w, ht := h.screen.Size()
	top := hudLines
	if ht <= top+2 || w < 3 {
		return
	}
	cx, cy := w/2, top+(ht-top)/2

	project := func(x, z float32) (int, int, bool) {
		sx := cx + int((x-player[0])*plotScaleX)
		sy := cy + int((z-player[2])*plotScaleZ)
		return sx, sy, sx >= 0 && sx < w && sy >= top && sy < ht
	}

	// Unit grid
	for gx := int(player[0]) - w/plotScaleX; gx <= int(player[0])+w/plotScaleX; gx++ {
		for gz := int(player[2]) - ht/plotScaleZ; gz <= int(player[2])+ht/plotScaleZ; gz++ {
			if sx, sy, ok := project(float32(gx), float32(gz)); ok {
				h.screen.SetContent(sx, sy, '·', nil, styleGrid)
			}
		}
	}
	for _, p := range h.trail {
		if sx, sy, ok := project(p[0], p[1]); ok {
			h.screen.SetContent(sx, sy, '•', nil, styleTrail)
		}
	}
	if sx, sy, ok := project(eye[0], eye[2]); ok {
		h.screen.SetContent(sx, sy, 'C', nil, styleCamera)
	}
	h.screen.SetContent(cx, cy, '@', nil, stylePlayer)
}
