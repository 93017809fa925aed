// Package tui renders the terminal chat client.
package tui

import (
	"fmt"
	"strings"

	"github.com/jroimartin/gocui"

	"github.com/roomcast/roomcast/internal/client"
)

// ChatUI is the gocui front end for one chat connection: a scrollback view,
// a single-line input, and a status bar.
type ChatUI struct {
	gui    *gocui.Gui
	client *client.Client
	addr   string

	msgView    string
	inputView  string
	statusView string
}

// New builds the UI around an established client connection.
func New(c *client.Client, addr string) (*ChatUI, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}

	ui := &ChatUI{
		gui:        g,
		client:     c,
		addr:       addr,
		msgView:    "messages",
		inputView:  "input",
		statusView: "status",
	}

	g.SetManagerFunc(ui.layout)
	return ui, nil
}

// Run installs keybindings, starts draining incoming lines, and blocks in
// the main loop until the user quits or a terminal error occurs.
func (ui *ChatUI) Run() error {
	if err := ui.keybindings(); err != nil {
		return err
	}

	go ui.pump()

	if err := ui.gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

// Close releases the terminal.
func (ui *ChatUI) Close() {
	ui.gui.Close()
}

func (ui *ChatUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView(ui.msgView, 0, 0, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Messages"
		v.Wrap = true
		v.Autoscroll = true
	}

	if v, err := g.SetView(ui.statusView, 0, maxY-5, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Wrap = true
		fmt.Fprintf(v, "Connected to %s | Ctrl-C: Quit", ui.addr)
	}

	if v, err := g.SetView(ui.inputView, 0, maxY-3, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Input"
		v.Editable = true
		v.Wrap = true

		if _, err := g.SetCurrentView(ui.inputView); err != nil {
			return err
		}
	}

	return nil
}

func (ui *ChatUI) keybindings() error {
	if err := ui.gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone,
		func(_ *gocui.Gui, _ *gocui.View) error {
			return gocui.ErrQuit
		}); err != nil {
		return err
	}

	if err := ui.gui.SetKeybinding(ui.inputView, gocui.KeyEnter, gocui.ModNone,
		ui.handleInput); err != nil {
		return err
	}

	return nil
}

func (ui *ChatUI) handleInput(_ *gocui.Gui, v *gocui.View) error {
	input := strings.TrimSpace(v.Buffer())
	v.Clear()
	if err := v.SetCursor(0, 0); err != nil {
		return err
	}
	if input == "" {
		return nil
	}

	if err := ui.client.Send(input); err != nil {
		ui.appendLine(fmt.Sprintf("!! send failed: %v", err))
	}
	return nil
}

// pump drains incoming lines into the scrollback until the connection ends.
func (ui *ChatUI) pump() {
	for line := range ui.client.Lines() {
		ui.appendLine(line)
	}
	ui.appendLine("!! disconnected from server")
}

func (ui *ChatUI) appendLine(line string) {
	ui.gui.Update(func(g *gocui.Gui) error {
		v, err := g.View(ui.msgView)
		if err != nil {
			return err
		}
		fmt.Fprintln(v, line)
		return nil
	})
}
