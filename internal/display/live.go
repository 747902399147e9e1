// Package display renders races, odds and the league to a terminal.
package display

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/race"
)

const defaultBarWidth = 40

// LiveRace draws a progress bar per horse on every tick
type LiveRace struct {
	out      io.Writer
	barWidth int
	// redraw moves the cursor back up so frames overwrite each other
	redraw bool

	field    []models.Horse
	distance float64
	drawn    bool
}

// NewLiveRace creates a live renderer. redraw should be true only for ANSI terminals.
func NewLiveRace(out io.Writer, redraw bool) *LiveRace {
	return &LiveRace{out: out, barWidth: defaultBarWidth, redraw: redraw}
}

// RaceStarted prints the race card header
func (l *LiveRace) RaceStarted(raceID string, run *race.Run, odds map[string]float64) {
	l.field = run.Field()
	l.distance = run.Distance()
	l.drawn = false

	fmt.Fprintf(l.out, "\n🏇 %s  %.0fm  %d runners  going %.2f\n", raceID, l.distance, len(l.field), run.TrackCondition())
	if len(odds) > 0 {
		width := nameWidth(l.field)
		for _, h := range l.field {
			fmt.Fprintf(l.out, "   %-*s  %6.2f\n", width, h.Name, odds[h.ID])
		}
	}
	fmt.Fprintln(l.out)
}

// Tick draws one frame
func (l *LiveRace) Tick(raceID string, tick race.Tick) {
	if l.redraw && l.drawn {
		fmt.Fprintf(l.out, "\033[%dA", len(l.field)+1)
	}
	l.drawn = true

	width := nameWidth(l.field)
	for _, h := range l.field {
		pos := math.Min(tick.Positions[h.ID], l.distance)
		fmt.Fprintf(l.out, "%*s │%s│ %6.1fm\n", width, h.Name, bar(pos/l.distance, l.barWidth), pos)
	}
	fmt.Fprintf(l.out, "tick %d  finished %d/%d\n", tick.Index, len(tick.Finished), len(l.field))
}

// RaceFinished prints the track and mood line
func (l *LiveRace) RaceFinished(record models.RaceRecord) {
	fmt.Fprintf(l.out, "\nTrack: %.2f  Moods: %s\n", record.Track, formatMoods(record.Moods, l.field))
}

func bar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(math.Round(fraction * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatMoods lists moods in field order, falling back to id order for unknown horses
func formatMoods(moods map[string]float64, field []models.Horse) string {
	names := make(map[string]string, len(field))
	order := make([]string, 0, len(moods))
	for _, h := range field {
		names[h.ID] = h.Name
		if _, ok := moods[h.ID]; ok {
			order = append(order, h.ID)
		}
	}
	if len(order) != len(moods) {
		order = order[:0]
		for id := range moods {
			order = append(order, id)
		}
		sort.Strings(order)
	}

	parts := make([]string, len(order))
	for i, id := range order {
		name := names[id]
		if name == "" {
			name = id
		}
		parts[i] = fmt.Sprintf("%s %.2f", name, moods[id])
	}
	return strings.Join(parts, ", ")
}

func nameWidth(field []models.Horse) int {
	width := 5
	for _, h := range field {
		if n := len([]rune(h.Name)); n > width {
			width = n
		}
	}
	return width
}
