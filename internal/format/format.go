package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mhofmann/dpwt-tracker/internal/detector"
)

// DefaultBaseURL prefixes relative tournament links from the results API.
const DefaultBaseURL = "https://www.europeantour.com"

var supported = []language.Tag{
	language.German, // default
	language.English,
}

var matcher = language.NewMatcher(supported)

// Formatter renders detected events as notification messages. Messages use
// Discord markdown; numbers follow the locale's conventions.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	season  int
	baseURL string
}

// New creates a formatter for the given locale, falling back to German when
// the locale is unknown or unsupported.
func New(locale string, season int) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.German
	}
	tag, _, _ = matcher.Match(tag)

	return &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
		season:  season,
		baseURL: DefaultBaseURL,
	}
}

func (f *Formatter) german() bool {
	base, _ := f.tag.Base()
	return base.String() == "de"
}

// Format renders one event as a notification message.
func (f *Formatter) Format(ev *detector.Event) string {
	switch ev.Kind {
	case detector.KindRoundCompleted:
		return f.roundCompleted(ev)
	case detector.KindTournamentFinished:
		return f.tournamentFinished(ev)
	case detector.KindNewTournament:
		return f.newTournament(ev)
	case detector.KindUpcomingReminder:
		return f.upcomingReminder(ev)
	case detector.KindBaselineEstablished:
		return f.baselineEstablished(ev)
	default:
		return ""
	}
}

func (f *Formatter) roundCompleted(ev *detector.Event) string {
	var msg strings.Builder

	if f.german() {
		msg.WriteString(fmt.Sprintf("⛳ **%s** – Runde %d beendet\n", ev.Tournament, ev.Round))
		msg.WriteString(fmt.Sprintf("Schläge R%d: **%d**\n", ev.Round, ev.Strokes))
		if ev.Position != "" {
			msg.WriteString(fmt.Sprintf("Position: **%s**\n", ev.Position))
		}
		msg.WriteString(fmt.Sprintf("Gesamt To-Par: **%s**", FormatToPar(ev.ScoreToPar)))
	} else {
		msg.WriteString(fmt.Sprintf("⛳ **%s** – round %d complete\n", ev.Tournament, ev.Round))
		msg.WriteString(fmt.Sprintf("Strokes R%d: **%d**\n", ev.Round, ev.Strokes))
		if ev.Position != "" {
			msg.WriteString(fmt.Sprintf("Position: **%s**\n", ev.Position))
		}
		msg.WriteString(fmt.Sprintf("Total to par: **%s**", FormatToPar(ev.ScoreToPar)))
	}

	f.appendLink(&msg, ev.URL)
	return msg.String()
}

func (f *Formatter) tournamentFinished(ev *detector.Event) string {
	var msg strings.Builder

	if f.german() {
		msg.WriteString(fmt.Sprintf("🏆 **Turnier beendet – %s**\n", ev.Tournament))
	} else {
		msg.WriteString(fmt.Sprintf("🏆 **Tournament finished – %s**\n", ev.Tournament))
	}

	snap := ev.Snapshot
	if snap != nil {
		if snap.Position != "" {
			msg.WriteString(fmt.Sprintf("Position: **%s**\n", snap.Position))
		}
		if snap.Total != nil {
			msg.WriteString(fmt.Sprintf("Total: **%d** (%s)\n", *snap.Total, FormatToPar(snap.ScoreToPar)))
		}
		if rounds := formatRounds(snap.Rounds); rounds != "" {
			if f.german() {
				msg.WriteString(fmt.Sprintf("Runden: %s\n", rounds))
			} else {
				msg.WriteString(fmt.Sprintf("Rounds: %s\n", rounds))
			}
		}
		if snap.Points != nil {
			if f.german() {
				msg.WriteString(f.printer.Sprintf("Punkte: **%.2f**\n", *snap.Points))
			} else {
				msg.WriteString(f.printer.Sprintf("Points: **%.2f**\n", *snap.Points))
			}
		}
		if snap.Earnings != nil {
			if f.german() {
				msg.WriteString(f.printer.Sprintf("Preisgeld: **%.2f €**\n", *snap.Earnings))
			} else {
				msg.WriteString(f.printer.Sprintf("Earnings: **€%.2f**\n", *snap.Earnings))
			}
		}
	}

	out := strings.TrimSuffix(msg.String(), "\n")
	var final strings.Builder
	final.WriteString(out)
	f.appendLink(&final, ev.URL)
	return final.String()
}

func (f *Formatter) newTournament(ev *detector.Event) string {
	var msg strings.Builder

	if f.german() {
		msg.WriteString(fmt.Sprintf("🆕 Neues Turnier im Ergebnisfeld: **%s**", ev.Tournament))
	} else {
		msg.WriteString(fmt.Sprintf("🆕 New tournament in the results feed: **%s**", ev.Tournament))
	}

	f.appendLink(&msg, ev.URL)
	return msg.String()
}

func (f *Formatter) upcomingReminder(ev *detector.Event) string {
	var msg strings.Builder

	if f.german() {
		msg.WriteString(fmt.Sprintf("📅 **%s** startet in %d Tagen.\n", ev.Tournament, ev.DaysUntilStart))
		if !ev.StartDate.IsZero() {
			msg.WriteString(fmt.Sprintf("Startdatum: %s", ev.StartDate.Format("02.01.2006")))
		}
	} else {
		msg.WriteString(fmt.Sprintf("📅 **%s** starts in %d days.\n", ev.Tournament, ev.DaysUntilStart))
		if !ev.StartDate.IsZero() {
			msg.WriteString(fmt.Sprintf("Start date: %s", ev.StartDate.Format("2006-01-02")))
		}
	}

	out := strings.TrimSuffix(msg.String(), "\n")
	var final strings.Builder
	final.WriteString(out)
	f.appendLink(&final, ev.URL)
	return final.String()
}

func (f *Formatter) baselineEstablished(ev *detector.Event) string {
	if f.german() {
		return fmt.Sprintf("Monitor aktiv. Baseline %d gesetzt (%d Turniere).", f.season, ev.BaselineCount)
	}
	return fmt.Sprintf("Monitor active. Baseline %d established (%d tournaments).", f.season, ev.BaselineCount)
}

func (f *Formatter) appendLink(msg *strings.Builder, url string) {
	link := f.AbsoluteURL(url)
	if link == "" {
		return
	}
	msg.WriteString("\nLink: ")
	msg.WriteString(link)
}

// AbsoluteURL turns the API's relative tournament paths into full links.
func (f *Formatter) AbsoluteURL(url string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "/") {
		return f.baseURL + url
	}
	return url
}

// FormatToPar renders a score relative to par: level par is "E", everything
// else carries an explicit sign. A missing value renders as "–".
func FormatToPar(toPar *int) string {
	if toPar == nil {
		return "–"
	}
	if *toPar == 0 {
		return "E"
	}
	return fmt.Sprintf("%+d", *toPar)
}

func formatRounds(rounds map[int]int) string {
	var parts []string
	for round := 1; round <= 4; round++ {
		if strokes, ok := rounds[round]; ok {
			parts = append(parts, fmt.Sprintf("R%d %d", round, strokes))
		}
	}
	return strings.Join(parts, " / ")
}
