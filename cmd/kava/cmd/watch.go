package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/kava/internal/analytics"
	"github.com/PizzaHomicide/kava/internal/config"
	"github.com/PizzaHomicide/kava/internal/log"
	"github.com/PizzaHomicide/kava/internal/metrics"
	"github.com/PizzaHomicide/kava/internal/player"
	"github.com/PizzaHomicide/kava/internal/transport"
	"github.com/PizzaHomicide/kava/internal/ui/tui"
	"github.com/PizzaHomicide/kava/internal/ui/tui/models"
	"github.com/PizzaHomicide/kava/internal/version"
)

// drainTimeout bounds how long shutdown waits for beacons still in flight
const drainTimeout = 5 * time.Second

var errMissingEntryID = errors.New("--entry-id is required")

var watchCmd = &cobra.Command{
	Use:   "watch <url>",
	Short: "Play a media URL in mpv and report its playback",
	Long: `Starts mpv on the given URL and reports the playback to the analytics
backend until mpv exits or kava is interrupted.

By default a live beacon monitor is shown.  With --headless every delivered
beacon is printed on its own line instead, which suits scripts and CI.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("entry-id", "", "entry id of the media being played (required)")
	watchCmd.Flags().String("media-type", "", "playback type of the media: vod or live (default: ask the player)")
	watchCmd.Flags().Bool("headless", false, "print beacons instead of showing the monitor")
	watchCmd.Flags().Int("partner-id", 0, "analytics partner id (overrides config)")
	watchCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address (overrides config)")
}

// watchOptions are the per-invocation settings of the watch command
type watchOptions struct {
	url      string
	media    analytics.Media
	headless bool
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := parseWatchFlags(cmd, args, cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	closeLog, err := initLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	log.Info("Starting up kava", "version", version.GetVersion(), "build_time", version.GetBuildTime())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch(ctx, cfg, opts, cmd.OutOrStdout())
}

func parseWatchFlags(cmd *cobra.Command, args []string, cfg *config.Config) (watchOptions, error) {
	flags := cmd.Flags()

	entryID, _ := flags.GetString("entry-id")
	if entryID == "" {
		return watchOptions{}, errMissingEntryID
	}
	rawType, _ := flags.GetString("media-type")
	mediaType, err := parseMediaType(rawType)
	if err != nil {
		return watchOptions{}, err
	}
	headless, _ := flags.GetBool("headless")

	if flags.Changed("partner-id") {
		cfg.Analytics.PartnerID, _ = flags.GetInt("partner-id")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}

	return watchOptions{
		url:      args[0],
		media:    analytics.Media{ID: entryID, Type: mediaType},
		headless: headless,
	}, nil
}

func parseMediaType(s string) (analytics.MediaType, error) {
	switch analytics.MediaType(s) {
	case analytics.MediaTypeUnknown, analytics.MediaTypeVod, analytics.MediaTypeLive:
		return analytics.MediaType(s), nil
	default:
		return "", fmt.Errorf("unknown media type %q: expected vod or live", s)
	}
}

// watch wires player, tracker and transport together and runs until playback ends or ctx is cancelled
func watch(ctx context.Context, cfg *config.Config, opts watchOptions, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	collector := metrics.NewCollector()
	if cfg.Metrics.Addr != "" {
		server := metrics.NewServer(cfg.Metrics.Addr, collector)
		if err := server.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Warn("Metrics server shutdown failed", "error", err)
			}
		}()
	}

	beaconTransport := collector.Instrument(transport.New(transport.Config{
		Timeout:       cfg.Transport.Timeout,
		RetryAttempts: cfg.Transport.RetryAttempts,
		RetryDelay:    cfg.Transport.RetryDelay,
		RetryMaxDelay: cfg.Transport.RetryMaxDelay,
		UserAgent:     version.UserAgent(),
	}))

	videoPlayer := player.CreateVideoPlayer(cfg.Player)
	defer videoPlayer.Cleanup()

	trackerOpts, feed := observerOptions(opts.headless, out, collector)
	if feed != nil {
		defer feed.Close()
	}

	tracker := analytics.NewTracker(cfg.TrackerConfig(), videoPlayer, beaconTransport, trackerOpts...)
	defer drain(tracker)
	tracker.LoadMedia(opts.media)
	forwardLifecycle(ctx, tracker)

	signals, err := videoPlayer.Play(ctx, opts.url)
	if err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	ended := make(chan error, 1)
	go func() {
		for sig := range signals {
			tracker.Handle(sig)
		}
		ended <- ctx.Err()
	}()

	if opts.headless {
		select {
		case err := <-ended:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case <-ctx.Done():
		}
		return nil
	}

	title := opts.media.ID
	if err := tui.Run(title, tracker, collector, feed, ended); err != nil {
		return fmt.Errorf("running monitor: %w", err)
	}
	return nil
}

// observerOptions registers the beacon observers at construction, before playback starts, so the first beacons
// reach them too.  The monitor feed is returned when not headless.
func observerOptions(headless bool, out io.Writer, collector analytics.Observer) ([]analytics.Option, *models.Feed) {
	opts := []analytics.Option{analytics.WithObserver(collector)}
	if headless {
		return append(opts, analytics.WithObserver(printBeacons(out))), nil
	}
	feed := models.NewFeed()
	return append(opts, analytics.WithObserver(feed)), feed
}

// printBeacons writes one line per delivered beacon
func printBeacons(out io.Writer) analytics.Observer {
	var mu sync.Mutex
	return analytics.ObserverFunc(func(name string) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(out, "%s %s\n", time.Now().Format(time.RFC3339Nano), name)
	})
}

// drain stops the tracker and gives beacons already dispatched a chance to land
func drain(tracker *analytics.Tracker) {
	tracker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := tracker.Wait(ctx); err != nil {
		log.Warn("Gave up waiting for beacons in flight", "error", err)
	}
}
