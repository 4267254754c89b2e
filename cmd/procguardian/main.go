package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/go-logger/nonelogger"
	"github.com/kubescape/procguardian/pkg/config"
	"github.com/kubescape/procguardian/pkg/exporters"
	"github.com/kubescape/procguardian/pkg/healthmanager"
	"github.com/kubescape/procguardian/pkg/metricsmanager"
	metricprometheus "github.com/kubescape/procguardian/pkg/metricsmanager/prometheus"
	processmanagerv1 "github.com/kubescape/procguardian/pkg/processmanager/v1"
	ruleenginev1 "github.com/kubescape/procguardian/pkg/ruleengine/v1"
	"github.com/kubescape/procguardian/pkg/scheduler"
	"github.com/kubescape/procguardian/pkg/utils"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := config.NewFlagSet(os.Args[0])
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return utils.ExitCodeSuccess
		}
		return utils.ExitCodeError
	}

	configDir := config.DefaultConfigDir
	if envPath := os.Getenv(config.ConfigDirEnvVar); envPath != "" {
		configDir = envPath
	}

	// --quiet silences the console before the config is even read
	if quiet, _ := flags.GetBool("quiet"); quiet {
		setupLogger(true, "")
	}

	cfg, err := config.LoadConfig(configDir, flags)
	if err != nil {
		logger.L().Ctx(ctx).Error("load config error", helpers.Error(err))
		return utils.ExitCodeError
	}
	setupLogger(cfg.Quiet, cfg.LogLevel)

	// Create Prometheus metrics exporter
	var prometheusExporter metricsmanager.MetricsManager
	if cfg.EnablePrometheusExporter {
		prometheusExporter = metricprometheus.NewPrometheusMetric(cfg.MetricsAddress)
	} else {
		prometheusExporter = metricsmanager.NewMetricsMock()
	}
	prometheusExporter.Start()
	defer prometheusExporter.Destroy()

	processManager, err := processmanagerv1.CreateProcessManager(cfg.ProcRoot)
	if err != nil {
		logger.L().Ctx(ctx).Error(utils.ErrProcfsUnavailable, helpers.String("procRoot", cfg.ProcRoot), helpers.Error(err))
		return utils.ExitCodeProcfsUnavailable
	}

	ruleEngine, err := ruleenginev1.CreateRuleEngine(cfg.Rules, cfg.RuleParameters(), prometheusExporter)
	if err != nil {
		logger.L().Ctx(ctx).Error("error creating the rule engine", helpers.Error(err))
		return utils.ExitCodeError
	}

	exporter, err := exporters.InitExporters(afero.NewOsFs(), cfg.SinkConfig(), cfg.Exporters)
	if err != nil {
		if !cfg.Quiet {
			logger.L().Ctx(ctx).Error("alert log is not writable", helpers.String("path", cfg.LogPath), helpers.Error(err))
		}
		return utils.ExitCodeError
	}
	defer func() {
		if err := exporter.Close(); err != nil {
			logger.L().Warning("error closing exporters", helpers.Error(err))
		}
	}()

	guardian, err := scheduler.CreateScheduler(processManager, ruleEngine, exporter, prometheusExporter, scheduler.Options{
		Interval:                  time.Duration(cfg.Interval) * time.Second,
		ExcludedUsers:             cfg.ExcludedUsers,
		IdentityIncludesStartTime: cfg.IdentityIncludesStartTime,
		Workers:                   cfg.Workers,
	})
	if err != nil {
		logger.L().Ctx(ctx).Error("error creating the scheduler", helpers.Error(err))
		return utils.ExitCodeError
	}
	defer guardian.Close()

	// Start the health manager
	if cfg.EnableHealth {
		healthManager := healthmanager.NewHealthManager(cfg.HealthAddress)
		healthManager.SetReadinessChecker(guardian)
		healthManager.Start(ctx)
	}

	logSize := "empty"
	if info, err := os.Stat(cfg.LogPath); err == nil {
		logSize = humanize.Bytes(uint64(info.Size()))
	}
	logger.L().Info("procguardian started",
		helpers.String("logPath", cfg.LogPath),
		helpers.String("logSize", logSize),
		helpers.Int("workers", cfg.Workers),
		helpers.Interface("excludedUsers", cfg.ExcludedUsers))

	if err := guardian.Run(ctx); err != nil {
		if !cfg.Quiet {
			logger.L().Ctx(ctx).Error("stopping: alert log is no longer writable", helpers.String("path", cfg.LogPath), helpers.Error(err))
		}
		return utils.ExitCodeError
	}

	logger.L().Info("procguardian stopped")
	return utils.ExitCodeSuccess
}

// setupLogger routes operational logs. In quiet mode nothing reaches the
// console, so the none logger replaces the default one.
func setupLogger(quiet bool, level string) {
	if quiet {
		logger.InitLogger(nonelogger.LoggerName)
		return
	}
	if level == "" {
		return
	}
	if err := logger.L().SetLevel(level); err != nil {
		logger.L().Warning("unknown log level, keeping the default", helpers.String("level", level))
	}
}
