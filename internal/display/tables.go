package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/pricing"
	"github.com/yourusername/gallop/internal/race"
)

// Title prints a boxed heading
func Title(w io.Writer, title string) {
	inner := 64
	pad := inner - len([]rune(title))
	if pad < 0 {
		pad = 0
	}
	left := pad / 2
	fmt.Fprintf(w, "\n╔%s╗\n", strings.Repeat("═", inner))
	fmt.Fprintf(w, "║%s%s%s║\n", strings.Repeat(" ", left), title, strings.Repeat(" ", pad-left))
	fmt.Fprintf(w, "╚%s╝\n", strings.Repeat("═", inner))
}

// FinishTable prints positions, finishing ticks and margins behind the winner
func FinishTable(w io.Writer, field []models.Horse, summary *race.Summary) {
	names := namesByID(field)
	width := nameWidth(field)
	margins := summary.Margins()

	Title(w, "🏁 Results")
	fmt.Fprintf(w, "%3s  %-*s  %12s  %10s\n", "#", width, "Horse", "Time (ticks)", "Margin (m)")
	for i, id := range summary.Order {
		fmt.Fprintf(w, "%3d  %-*s  %12d  %10.1f\n", i+1, width, names.get(id), summary.Times[id], margins[id])
	}
}

// OddsTable prints the market from favourite to outsider, followed by the book percentage
func OddsTable(w io.Writer, field []models.Horse, odds pricing.Odds) {
	names := namesByID(field)
	width := nameWidth(field)

	Title(w, "🏇 Market")
	fmt.Fprintf(w, "%-*s  %8s  %10s  %9s\n", width, "Horse", "Decimal", "Fractional", "Implied %")
	for _, id := range odds.Favourites() {
		price := odds[id]
		fmt.Fprintf(w, "%-*s  %8.2f  %10s  %8.1f%%\n",
			width, names.get(id), price,
			pricing.ToFractional(price, pricing.DefaultMaxDenominator),
			pricing.Implied(price)*100)
	}
	fmt.Fprintf(w, "Book: %.1f%%\n", pricing.Book(odds)*100)
}

// Roster prints the horses with their record and form
func Roster(w io.Writer, horses []models.Horse) {
	width := nameWidth(horses)

	Title(w, "Roster")
	fmt.Fprintf(w, "%-8s  %-*s  %-6s  %4s  %6s  %5s  %6s  %s\n",
		"ID", width, "Name", "Class", "Wins", "Losses", "Runs", "Win %", "Form")
	for _, h := range horses {
		fmt.Fprintf(w, "%-8s  %-*s  %-6s  %4d  %6d  %2d/%-2d  %5.1f%%  %s\n",
			h.ID, width, h.Name, h.Class(), h.Wins, h.Losses,
			h.AgeRaces, h.RetireAfter, h.WinRate()*100, formatForm(h.Form))
	}
}

// Archive prints race records newest first. horse resolves ids to names.
func Archive(w io.Writer, races []models.RaceRecord, horse func(id string) (models.Horse, bool)) {
	Title(w, "Race Archive")
	if len(races) == 0 {
		fmt.Fprintln(w, "No races recorded yet.")
		return
	}

	fmt.Fprintf(w, "%-8s  %-16s  %8s  %5s  %7s  %s\n", "Race", "Run at", "Distance", "Track", "Runners", "Winner")
	for i := len(races) - 1; i >= 0; i-- {
		r := races[i]
		winner := r.Winner
		if h, ok := horse(r.Winner); ok {
			winner = h.Name
		}
		fmt.Fprintf(w, "%-8s  %-16s  %7.0fm  %5.2f  %7d  %s\n",
			r.ID, r.RunAt.Local().Format("2006-01-02 15:04"), r.Distance, r.Track, len(r.Horses), winner)
	}
}

// RaceDetail prints a single recorded race in finishing order
func RaceDetail(w io.Writer, record models.RaceRecord, field []models.Horse) {
	names := namesByID(field)

	Title(w, fmt.Sprintf("Race %s", record.ID))
	fmt.Fprintf(w, "Run at: %s\n", record.RunAt.Local().Format(time.RFC1123))
	fmt.Fprintf(w, "Distance: %.0fm  Seed: %d  Track: %.2f\n", record.Distance, record.Seed, record.Track)
	fmt.Fprintf(w, "Moods: %s\n", formatMoods(record.Moods, field))
	for i, id := range record.Order {
		fmt.Fprintf(w, "%3d  %s\n", i+1, names.get(id))
	}
}

// Payout prints a settled bet
func Payout(w io.Writer, settlement models.Settlement, horseName string) {
	bet := settlement.Bet
	outcome := "LOST"
	if settlement.Won {
		outcome = "WON"
	}

	Title(w, "💰 Payout")
	fmt.Fprintf(w, "  Bet:      %s %s @ %.2f (%s)\n", bet.Side, horseName, bet.Odds,
		pricing.ToFractional(bet.Odds, pricing.DefaultMaxDenominator))
	fmt.Fprintf(w, "  Stake:    %.2f\n", bet.Stake)
	fmt.Fprintf(w, "  Result:   %s\n", outcome)
	fmt.Fprintf(w, "  P/L:      %s\n", settlement.ProfitLoss.StringFixed(2))
	fmt.Fprintf(w, "  Returned: %s\n", settlement.Returned.StringFixed(2))
	fmt.Fprintf(w, "  ROI:      %.1f%%\n", settlement.GetROI())
}

type horseNames map[string]string

func namesByID(field []models.Horse) horseNames {
	names := make(horseNames, len(field))
	for _, h := range field {
		names[h.ID] = h.Name
	}
	return names
}

func (n horseNames) get(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return id
}

func formatForm(form []int) string {
	if len(form) == 0 {
		return "-"
	}
	parts := make([]string, len(form))
	for i, p := range form {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, "-")
}
