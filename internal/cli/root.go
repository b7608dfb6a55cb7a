package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portsmith/internal/app"
	"portsmith/internal/core"
	"portsmith/internal/metrics"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "PORTSMITH"

type RootConfig struct {
	ConfigFile  string
	LogLevel    string
	MetricsFile string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		log.Error().Str("kind", app.FailureKind(err)).Msg(errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "portsmith",
		Short:         "Resolve native library ports into an ordered install plan",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("metrics_file", cmd.PersistentFlags().Lookup("metrics-file"))

	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newCICommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newInstallRecordCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("portsmith")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/portsmith")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// withService builds the app service for one command run and flushes
// its metrics afterwards, whether or not the run succeeded.
func withService(run func(app.Service) error) error {
	service := app.NewService()
	recorder := metrics.NewRecorder(viper.GetString("metrics_file"))
	service.Metrics = recorder
	err := run(service)
	if flushErr := recorder.Flush(); flushErr != nil {
		log.Warn().Err(flushErr).Msg("metrics not written")
	}
	return err
}

func exitCodeForError(err error) int {
	var resolution *core.ResolutionError
	if errors.As(err, &resolution) {
		switch resolution.Kind {
		case core.ErrVersionConflict, core.ErrUnsupported:
			return 3
		case core.ErrManifestNotFound, core.ErrFeatureNotFound:
			return 5
		default:
			return 4
		}
	}
	code := errbuilder.CodeOf(err)
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition:
		return 4
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var resolution *core.ResolutionError
	if errors.As(err, &resolution) {
		return resolution.Error()
	}
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
