package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademaro/fiphunt/internal/cloud"
	"github.com/ademaro/fiphunt/internal/config"
	"github.com/ademaro/fiphunt/internal/errors"
	"github.com/ademaro/fiphunt/internal/event"
	"github.com/ademaro/fiphunt/internal/logging"
	"github.com/ademaro/fiphunt/internal/notify"
	"github.com/ademaro/fiphunt/internal/race"
	"github.com/ademaro/fiphunt/internal/target"
)

var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Start hunting for a floating IP in the target ranges",
	Long: `Hunt spawns the configured number of workers, each repeatedly
allocating a floating IP, testing it against the target CIDR ranges and
releasing misses, until one worker claims and confirms a hit. With a
schedule configured, hunting runs in work/pause windows.`,
	Args:         cobra.NoArgs,
	RunE:         runHunt,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(huntCmd)

	huntCmd.Flags().IntP("workers", "w", 0, "number of concurrent workers")
	huntCmd.Flags().String("server", "", "server to bind the won address to, by ID or name")
	huntCmd.Flags().String("port-id", "", "exact port to bind instead of auto-selecting")
	huntCmd.Flags().String("external-network", "", "external network to allocate from, by ID or name")
	huntCmd.Flags().StringSlice("nets", nil, "target CIDR ranges")
	huntCmd.Flags().Float64("work", 0, "hunting window in minutes (0 = unbounded)")
	huntCmd.Flags().Float64("pause", 0, "pause between windows in minutes")

	_ = viper.BindPFlag("hunt.workers", huntCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("hunt.server", huntCmd.Flags().Lookup("server"))
	_ = viper.BindPFlag("hunt.port_id", huntCmd.Flags().Lookup("port-id"))
	_ = viper.BindPFlag("hunt.external_network", huntCmd.Flags().Lookup("external-network"))
	_ = viper.BindPFlag("target.nets", huntCmd.Flags().Lookup("nets"))
	_ = viper.BindPFlag("schedule.work_minutes", huntCmd.Flags().Lookup("work"))
	_ = viper.BindPFlag("schedule.pause_minutes", huntCmd.Flags().Lookup("pause"))
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	winStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	lossStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
)

func runHunt(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.NewLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Close()

	// ParseList splits comma-joined elements, so a single env value like
	// FIPHUNT_TARGET_NETS="a/22,b/22" works the same as a YAML list.
	nets, err := target.ParseList(strings.Join(cfg.Target.Nets, ","))
	if err != nil {
		return fmt.Errorf("invalid target ranges: %w", err)
	}

	bus := event.NewBus()

	var notifier notify.Notifier = notify.Nop{}
	if len(cfg.Notify.URLs) > 0 {
		sender, err := notify.NewSender(cfg.Notify.URLs, log)
		if err != nil {
			return fmt.Errorf("invalid notification URLs: %w", err)
		}
		notifier = sender
	}
	notify.NewBridge(notifier).Attach(bus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds := cloud.Credentials{
		AuthURL:        cfg.Auth.AuthURL,
		Username:       cfg.Auth.Username,
		Password:       cfg.Auth.Password,
		ProjectID:      cfg.Auth.ProjectID,
		UserDomainName: cfg.Auth.UserDomainName,
		Region:         cfg.Auth.Region,
		Interface:      cfg.Auth.Interface,
		Insecure:       cfg.Auth.Insecure,
	}

	// A bootstrap session resolves everything the hunt needs up front, so a
	// bad server name or missing external network fails fast instead of
	// surfacing from inside the worker pool.
	log.Info("connecting to cloud", "auth_url", creds.AuthURL, "region", creds.Region)
	boot, err := cloud.Connect(ctx, creds)
	if err != nil {
		return fmt.Errorf("connecting to cloud: %w", err)
	}

	srv, err := cloud.FindServer(ctx, boot, cfg.Hunt.Server)
	if err != nil {
		return err
	}
	portID, err := cloud.PickPort(ctx, boot, srv.ID, cfg.Hunt.PortID)
	if err != nil {
		return err
	}
	networkID, err := cloud.FindExternalNetwork(ctx, boot, cfg.Hunt.ExternalNetwork)
	if err != nil {
		return err
	}

	printSummary(cfg, srv.Name, portID, networkID, nets)
	if note := scheduleNote(&cfg.Schedule); note != "" {
		log.Warn(note, "work", cfg.Schedule.Work().String())
	}
	log.Info("hunt starting",
		"server", srv.ID,
		"port", portID,
		"network", networkID,
		"nets", nets.String(),
		"workers", cfg.Hunt.Workers)

	bus.Publish(event.HuntStartedEvent{
		Workers:   cfg.Hunt.Workers,
		Targets:   nets.String(),
		Scheduled: cfg.Schedule.Work() > 0,
		Work:      cfg.Schedule.Work(),
		Pause:     cfg.Schedule.Pause(),
	})

	sched := race.NewScheduler(race.SchedulerConfig{
		Workers: cfg.Hunt.Workers,
		Stagger: cfg.Hunt.SpawnStagger(),
		Work:    cfg.Schedule.Work(),
		Pause:   cfg.Schedule.Pause(),
		Worker: race.WorkerConfig{
			ClaimTarget:   portID,
			Match:         nets.Contains,
			AttemptDelay:  cfg.Hunt.AttemptDelay(),
			VerifyTimeout: cfg.Hunt.VerifyTimeout(),
			VerifyPoll:    cfg.Hunt.VerifyPoll(),
		},
	}, func(workerID int) race.SessionSource {
		return cloud.NewKeeper(creds, networkID, log.WithWorker(workerID))
	}, bus, log)

	res := sched.Run(ctx)

	switch res.Reason {
	case race.ReasonWon:
		fmt.Println(winStyle.Render(fmt.Sprintf("✓ acquired %s (worker %d, cycle %d)",
			res.Result.Winner.Address, res.Result.WinnerID, res.Cycles)))
		log.Info("hunt won", "address", res.Result.Winner.Address, "cycles", res.Cycles)
		return nil
	case race.ReasonInterrupted:
		fmt.Println(lossStyle.Render(fmt.Sprintf("✗ interrupted after %d cycle(s), no address acquired", res.Cycles)))
		return errors.Wrapf(errInterrupted, "after %d cycle(s)", res.Cycles)
	default:
		fmt.Println(lossStyle.Render(fmt.Sprintf("✗ no address acquired after %d cycle(s)", res.Cycles)))
		return errors.Wrapf(errNoWin, "%s", res.Reason)
	}
}

// printSummary renders the resolved hunt parameters before the race starts.
func printSummary(cfg *config.Config, serverName, portID, networkID string, nets *target.RangeSet) {
	fmt.Println(titleStyle.Render("fiphunt"))

	row := func(label, value string) {
		fmt.Printf("  %s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
	}
	row("server", serverName)
	row("port", portID)
	row("network", networkID)
	row("targets", nets.String())
	row("workers", fmt.Sprintf("%d", cfg.Hunt.Workers))
	if work := cfg.Schedule.Work(); work > 0 {
		schedule := fmt.Sprintf("work %s", work)
		if pause := cfg.Schedule.Pause(); pause > 0 {
			schedule += fmt.Sprintf(", pause %s", pause)
		}
		row("schedule", schedule)
	}
	if note := scheduleNote(&cfg.Schedule); note != "" {
		fmt.Printf("  %s\n", lossStyle.Render("! "+note))
	}
}

// scheduleNote warns about a work window with no pause configured: the
// hunt then ends after a single bounded cycle instead of looping.
func scheduleNote(s *config.ScheduleConfig) string {
	if s.Work() > 0 && s.Pause() == 0 {
		return "work window set with no pause: hunt ends after one cycle"
	}
	return ""
}
