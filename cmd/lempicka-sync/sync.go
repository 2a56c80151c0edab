package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rjfmedia/lempicka-sync/cmd"
	"github.com/rjfmedia/lempicka-sync/pkg/logging"
	syncconfig "github.com/rjfmedia/lempicka-sync/pkg/sync/config"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/engine"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/metrics"
)

func syncMain(command *cobra.Command, arguments []string) error {
	sessionID := uuid.New().String()
	logger := newLogger()
	logger.Infof("sync session %s starting", sessionID)

	cfg, err := loadConfiguration(command.Flags())
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	if len(arguments) == 2 {
		cfg.LeftRoot, cfg.RightRoot = arguments[0], arguments[1]
	}
	if cfg.LeftRoot == "" || cfg.RightRoot == "" {
		return errors.New("left and right roots must be specified, either as arguments or via configuration")
	}

	options := cfg.ToSyncOptions()

	var collector *metrics.Collector
	if syncConfiguration.metricsListen != "" {
		collector, err = metrics.New(prometheus.DefaultRegisterer)
		if err != nil {
			return errors.Wrap(err, "unable to register metrics")
		}
		go serveMetrics(syncConfiguration.metricsListen, logger)
	}
	options.MetricsCollector = collector

	e := engine.New(logger)
	bundle, err := e.BuildComparePlan(cfg.LeftRoot, cfg.RightRoot)
	if err != nil {
		return errors.Wrap(err, "unable to build comparison plan")
	}

	cancelSignals := make(chan os.Signal, 1)
	signal.Notify(cancelSignals, cmd.TerminationSignals...)
	defer signal.Stop(cancelSignals)

	go func() {
		for range cancelSignals {
			cmd.Warning("cancellation requested, finishing current file before stopping")
			e.Cancel()
		}
	}()

	if cmd.PauseSignal != nil {
		pauseSignals := make(chan os.Signal, 1)
		signal.Notify(pauseSignals, cmd.PauseSignal)
		defer signal.Stop(pauseSignals)

		go func() {
			for range pauseSignals {
				if e.TogglePause() {
					cmd.Warning("pause requested")
				} else {
					cmd.Warning("resuming")
				}
			}
		}()
	}

	printer := &cmd.StatusLinePrinter{}
	result, err := e.Sync(bundle, func(p engine.Progress) { printProgress(printer, p) }, options)
	if err != nil {
		printer.BreakIfNonEmpty()
		return errors.Wrap(err, "sync failed")
	}

	if len(result.Failed) > 0 {
		printer.BreakIfNonEmpty()
		for _, failure := range result.Failed {
			cmd.Warning(fmt.Sprintf("%s: %s (%s)", failure.TargetRelativePath, failure.Message, failure.Code))
		}
	}

	return nil
}

// serveMetrics exposes the Prometheus registry over HTTP until the process
// exits; a failure to bind is logged but does not abort the sync itself.
func serveMetrics(address string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(address, mux); err != nil {
		logger.Warnf("metrics server stopped: %v", err)
	}
}

// loadConfiguration resolves the layered configuration for a sync run,
// honoring --config, falling back to the default path, which is optional.
func loadConfiguration(flags *pflag.FlagSet) (*syncconfig.FileConfig, error) {
	path := syncConfiguration.configurationFile
	if path == "" && !syncConfiguration.noGlobalConfiguration {
		path = syncconfig.DefaultPath()
	}
	return syncconfig.Load(path, flags)
}

var syncCommand = &cobra.Command{
	Use:   "sync [<left-root> <right-root>]",
	Short: "Performs a one-shot synchronization pass from left to right",
	Run:   cmd.Mainify(syncMain),
}

// syncConfiguration's fields from continueOnError through journalPath are
// bound only so the flags carry typed defaults and show up correctly in
// --help; their values reach FileConfig through config.applyFlagOverlay's
// flags.Visit, the same path env and YAML values take, rather than being read
// from this struct directly. metricsListen is read from this struct by
// syncMain.
var syncConfiguration struct {
	// help indicates whether or not help information should be shown.
	help bool
	// noGlobalConfiguration disables loading the default configuration file.
	noGlobalConfiguration bool
	// configurationFile specifies an explicit configuration file to load.
	configurationFile string
	// continueOnError allows the run to proceed past individual item
	// failures instead of aborting the whole run.
	continueOnError bool
	// retryCount is the number of retries attempted for a recoverable error.
	retryCount int
	// retryBaseDelayMs is the exponential-backoff base delay in milliseconds.
	retryBaseDelayMs int
	// smallFileThresholdBytes is the size cutoff below which files are
	// eligible for bounded-parallel copying.
	smallFileThresholdBytes int64
	// maxParallelSmallFiles bounds the small-file worker pool.
	maxParallelSmallFiles int
	// journalPath specifies where the recovery journal should be written.
	journalPath string
	// metricsListen, if set, exposes Prometheus metrics on this address.
	metricsListen string
}

func init() {
	flags := syncCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&syncConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVar(&syncConfiguration.noGlobalConfiguration, "no-global-configuration", false, "Ignore the global configuration file")
	flags.StringVarP(&syncConfiguration.configurationFile, "config", "c", "", "Specify a configuration file to load")
	flags.BoolVar(&syncConfiguration.continueOnError, "continue-on-error", false, "Continue past individual file failures instead of aborting the run")
	flags.IntVar(&syncConfiguration.retryCount, "retry-count", 2, "Specify the number of retries for a recoverable error")
	flags.IntVar(&syncConfiguration.retryBaseDelayMs, "retry-base-delay-ms", 300, "Specify the exponential backoff base delay in milliseconds")
	flags.Int64Var(&syncConfiguration.smallFileThresholdBytes, "small-file-threshold-bytes", 4*1024*1024, "Specify the size cutoff for bounded-parallel copying")
	flags.IntVar(&syncConfiguration.maxParallelSmallFiles, "max-parallel-small-files", 3, "Specify the small-file worker pool size")
	flags.StringVar(&syncConfiguration.journalPath, "journal", "", "Specify the recovery journal path")
	flags.StringVar(&syncConfiguration.metricsListen, "metrics-listen", "", "Expose Prometheus metrics on the specified address")
}
