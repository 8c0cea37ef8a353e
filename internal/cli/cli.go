package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhofmann/dpwt-tracker/internal/detector"
	"github.com/mhofmann/dpwt-tracker/internal/fetcher"
	"github.com/mhofmann/dpwt-tracker/internal/format"
	"github.com/mhofmann/dpwt-tracker/internal/logger"
	"github.com/mhofmann/dpwt-tracker/internal/notifier"
	"github.com/mhofmann/dpwt-tracker/internal/results"
	"github.com/mhofmann/dpwt-tracker/internal/storage"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

// DefaultPlayerID is Marcel Schneider's player id on the tour website.
const DefaultPlayerID = 35703

var (
	flagPlayerID     int
	flagSeason       int
	flagDataDir      string
	flagStore        string
	flagLocale       string
	flagFormat       string
	flagReminderDays int
	flagDryRun       bool
	flagVerbose      bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dpwt-tracker",
		Short: "Track one player's DP World Tour results and post updates",
		Long: `Polls the DP World Tour results API for a single player, detects round
completions, tournament finishes, new tournaments, and upcoming starts, and
posts notifications to a Discord webhook. State persists between runs so each
change is reported exactly once.`,
		RunE: runCheck,
	}

	cmd.Flags().IntVar(&flagPlayerID, "player-id", DefaultPlayerID, "Player id on the tour website")
	cmd.Flags().IntVar(&flagSeason, "season", time.Now().UTC().Year(), "Season to track")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "~/.local/share/dpwt-tracker", "Data directory for state and archive")
	cmd.Flags().StringVar(&flagStore, "store", "file", "State backend: file or gist")
	cmd.Flags().StringVar(&flagLocale, "locale", "de", "Message locale")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().IntVar(&flagReminderDays, "reminder-days", 2, "Days before a start to post a reminder")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print notifications instead of posting them")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newDiscoverCmd())
	cmd.AddCommand(newCalendarCmd())

	return cmd
}

// checkDeps are the injectable pieces of the check pipeline.
type checkDeps struct {
	store  storage.Store
	fetch  func(ctx context.Context, playerID, season int) ([]byte, error)
	notify notifier.Notifier
	now    func() time.Time
}

// runCheck wires the real dependencies and runs one poll.
func runCheck(cmd *cobra.Command, args []string) error {
	outputFormat := OutputFormat(strings.ToLower(flagFormat))
	if outputFormat != FormatText && outputFormat != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	store, err := newStore()
	if err != nil {
		return err
	}

	notify, err := newNotifier()
	if err != nil {
		return err
	}

	client := fetcher.NewClient(fetcher.DefaultBaseURL, os.Getenv("RELAY_BASE"))

	deps := checkDeps{
		store:  store,
		fetch:  client.FetchResults,
		notify: notify,
		now:    func() time.Time { return time.Now().UTC() },
	}

	result, err := runPipeline(cmd.Context(), deps)
	if err != nil {
		return err
	}

	if err := WriteOutput(os.Stdout, result, outputFormat, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if result.EventCount > 0 {
		os.Exit(ExitNewEvents)
	}
	os.Exit(ExitSuccess)
	return nil
}

// runPipeline performs one poll: load state, fetch results, detect changes,
// save the new state, then notify and archive. A version conflict on save
// triggers one retry from a fresh load; a second conflict is fatal.
func runPipeline(ctx context.Context, deps checkDeps) (*OutputResult, error) {
	cfg := detector.DefaultConfig()
	cfg.ReminderDays = flagReminderDays

	payload, err := deps.fetch(ctx, flagPlayerID, flagSeason)
	if err != nil {
		if errors.Is(err, fetcher.ErrUnavailable) {
			logger.Warn("results API unavailable, skipping poll", logger.Fields{
				"season": flagSeason,
			})
			return &OutputResult{
				CheckedAt: deps.now(),
				Season:    flagSeason,
				PlayerID:  flagPlayerID,
				Skipped:   true,
			}, nil
		}
		return nil, fmt.Errorf("fetching results: %w", err)
	}

	snapshots, err := results.Normalize(payload)
	if err != nil {
		return nil, fmt.Errorf("normalizing results: %w", err)
	}

	events, err := detectAndSave(deps, snapshots, cfg)
	if err != nil {
		return nil, err
	}

	sortEvents(events)

	formatter := format.New(flagLocale, flagSeason)
	messages := make([]string, 0, len(events))
	for _, ev := range events {
		messages = append(messages, formatter.Format(ev))
	}

	if len(messages) > 0 {
		if err := deps.notify.Notify(messages); err != nil {
			// Notification failures are logged, not retried: the state is
			// already saved, so a retry on the next poll would double-post.
			logger.Error("posting notifications failed", logger.Fields{
				"messages": len(messages),
			}, err)
		}
	}

	archiveFinished(deps.store, events)

	return &OutputResult{
		CheckedAt:  deps.now(),
		Season:     flagSeason,
		PlayerID:   flagPlayerID,
		Events:     events,
		Messages:   messages,
		EventCount: len(events),
	}, nil
}

// detectAndSave runs detection against the stored state and persists the
// result, retrying once from a fresh load on a version conflict.
func detectAndSave(deps checkDeps, snapshots []*results.TournamentSnapshot, cfg detector.Config) ([]*detector.Event, error) {
	for attempt := 0; ; attempt++ {
		prev, version, err := deps.store.Load(flagSeason)
		if err != nil {
			return nil, fmt.Errorf("loading state: %w", err)
		}

		events, next := detector.Detect(deps.now(), snapshots, prev, cfg)
		if next == prev {
			// Throttled: nothing changed, nothing to save.
			logger.Debug("poll throttled", logger.Fields{
				"last_full_check": prev.LastFullCheck,
			})
			return nil, nil
		}

		err = deps.store.Save(flagSeason, next, version)
		if err == nil {
			return events, nil
		}
		if !errors.Is(err, storage.ErrConflict) || attempt > 0 {
			return nil, fmt.Errorf("saving state: %w", err)
		}

		logger.Warn("state changed under us, retrying from a fresh load", logger.Fields{
			"season": flagSeason,
		})
	}
}

// archiveFinished appends finish-time snapshots to the archive and summary.
// Archive failures never fail the run; the next finish detection has already
// happened, so a failed append only loses one archive record.
func archiveFinished(store storage.Store, events []*detector.Event) {
	for _, ev := range events {
		if ev.Kind != detector.KindTournamentFinished || ev.Snapshot == nil {
			continue
		}

		written, err := store.AppendArchive(flagSeason, ev.Snapshot)
		if err != nil {
			logger.Error("archiving finished tournament failed", logger.Fields{
				"event_key": ev.EventKey,
			}, err)
			continue
		}
		if written {
			logger.IncrCounter("archive.records")
		}

		if err := store.AppendSummary(flagSeason, ev.Snapshot); err != nil {
			logger.Error("appending summary row failed", logger.Fields{
				"event_key": ev.EventKey,
			}, err)
		}
	}
}

func newStore() (storage.Store, error) {
	switch flagStore {
	case "file":
		return storage.NewFileStore(flagDataDir)
	case "gist":
		return storage.NewGistStoreWithEncryption(
			os.Getenv("GIST_ID"),
			os.Getenv("GITHUB_TOKEN"),
			os.Getenv("GIST_PASSPHRASE"),
		)
	default:
		return nil, fmt.Errorf("invalid store: %s (must be 'file' or 'gist')", flagStore)
	}
}

func newNotifier() (notifier.Notifier, error) {
	if flagDryRun {
		return notifier.NewDryRunNotifier(), nil
	}

	webhook := os.Getenv("DISCORD_WEBHOOK")
	if webhook == "" {
		logger.Warn("DISCORD_WEBHOOK not set, falling back to dry run", nil)
		return notifier.NewDryRunNotifier(), nil
	}
	return notifier.NewDiscordNotifier(webhook)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
