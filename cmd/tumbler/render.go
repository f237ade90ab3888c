package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
)

var (
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#6B7280")
	destructive = lipgloss.Color("#e53935")
)

// termRenderer prints frames as one styled line per column.
type termRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	reveal bool
	sleep  func(time.Duration)
	source string

	badge   lipgloss.Style
	label   lipgloss.Style
	word    lipgloss.Style
	empty   lipgloss.Style
	origin  lipgloss.Style
	faint   lipgloss.Style
	failure lipgloss.Style
}

func newTermRenderer(out, errOut io.Writer, reveal bool) *termRenderer {
	r := lipgloss.NewRenderer(out)
	e := lipgloss.NewRenderer(errOut)
	return &termRenderer{
		out:     out,
		errOut:  errOut,
		reveal:  reveal,
		sleep:   time.Sleep,
		badge:   r.NewStyle().Bold(true).Foreground(accent),
		label:   r.NewStyle().Foreground(muted).Width(16),
		word:    r.NewStyle().Bold(true),
		empty:   r.NewStyle().Foreground(muted).Italic(true),
		origin:  r.NewStyle().Foreground(muted),
		faint:   e.NewStyle().Foreground(muted),
		failure: e.NewStyle().Bold(true).Foreground(destructive),
	}
}

func (t *termRenderer) Render(frame models.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "%s %s\n", t.badge.Render(fmt.Sprintf("seed %d", frame.Seed)), t.origin.Render(frame.Source))

	var elapsed time.Duration
	for _, slot := range frame.Slots {
		if t.reveal && slot.Delay > elapsed {
			t.sleep(slot.Delay - elapsed)
			elapsed = slot.Delay
		}
		fmt.Fprintln(t.out, t.line(slot))
	}
}

func (t *termRenderer) line(slot models.Slot) string {
	word := t.word.Render(slot.Word)
	if slot.Word == "" {
		word = t.empty.Render("(empty)")
	}
	if strings.TrimSpace(slot.Label) == "" {
		return word
	}
	return t.label.Render(slot.Label) + word
}

func (t *termRenderer) SetLoading(loading bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if loading {
		fmt.Fprintln(t.errOut, t.faint.Render("Loading "+t.source+"..."))
	}
}

func (t *termRenderer) SetSourceValue(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.source = source
}

func (t *termRenderer) ShowError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.errOut, t.failure.Render("Error: "+message))
}

func (t *termRenderer) ClearError() {}
