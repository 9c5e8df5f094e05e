package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/option-chain/src/cmd/optionchain/run"
	"github.com/jiaming2012/option-chain/src/logger"
	"github.com/jiaming2012/option-chain/src/utils"
)

const serviceName = "option-chain"

var otelShutdown func(context.Context) error

var rootCmd = &cobra.Command{
	Use:   "optionchain",
	Short: "Fetches an NSE option chain and charts its volatility and open interest",
	Long: `Fetches the option chain of an NSE index and produces:
1.) a summary of the chain (ATM strike, open interest totals and put/call ratio)
2.) a volatility skew chart for one expiry
3.) a term structure chart for one strike
4.) an open interest distribution chart for one expiry
The NSE indices endpoint no longer serves data reliably, so saved responses can be analyzed with --from-file or --from-csv.
	`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			return err
		}

		envDir, err := cmd.Flags().GetString("env-dir")
		if err != nil {
			return err
		}

		if envDir != "" {
			if err := utils.InitEnvironmentVariables(envDir, goEnv); err != nil {
				return err
			}
		}

		logLevel := utils.GetEnvOrDefault("LOG_LEVEL", "info")
		if cmd.Flags().Changed("log-level") {
			if logLevel, err = cmd.Flags().GetString("log-level"); err != nil {
				return err
			}
		}

		logFormat, err := cmd.Flags().GetString("log-format")
		if err != nil {
			return err
		}

		if err := logger.Setup(os.Stderr, logLevel, logFormat); err != nil {
			return err
		}

		// Telemetry is exported only when a collector is configured
		if _, err := utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); err == nil {
			if otelShutdown, err = utils.SetupOTelSDK(cmd.Context(), serviceName); err != nil {
				return err
			}
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if otelShutdown == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return otelShutdown(ctx)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyzes the option chain of a single security",
	RunE: func(cmd *cobra.Command, args []string) error {
		runArgs, err := analyzeArgs(cmd)
		if err != nil {
			return err
		}

		result, err := run.Run(cmd.Context(), runArgs)
		if err != nil {
			return err
		}

		for _, chartPath := range result.ChartPaths {
			log.Infof("chart: %s", chartPath)
		}

		if result.CsvPath != "" {
			log.Infof("csv: %s", result.CsvPath)
		}

		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves option chain summaries and charts over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		runArgs, err := analyzeArgs(cmd)
		if err != nil {
			return err
		}

		fetcher, err := run.NewFetcher(runArgs)
		if err != nil {
			return err
		}

		port, err := cmd.Flags().GetString("port")
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("port") {
			port = utils.GetEnvOrDefault("PORT", port)
		}

		cacheTTL, err := cmd.Flags().GetDuration("cache-ttl")
		if err != nil {
			return err
		}

		return run.Serve(cmd.Context(), run.ServeArgs{
			Port:     port,
			Fetcher:  fetcher,
			CacheTTL: cacheTTL,
		})
	},
}

func analyzeArgs(cmd *cobra.Command) (run.RunArgs, error) {
	flags := cmd.Flags()

	nseConfig, err := run.NSEConfigFromEnv()
	if err != nil {
		return run.RunArgs{}, err
	}

	runArgs := run.RunArgs{
		NSE:    nseConfig,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}

	if runArgs.FromFile, err = flags.GetString("from-file"); err != nil {
		return runArgs, err
	}

	if runArgs.FromCsv, err = flags.GetString("from-csv"); err != nil {
		return runArgs, err
	}

	if runArgs.UnderlyingPrice, err = flags.GetFloat64("underlying"); err != nil {
		return runArgs, err
	}

	// serve only shares the source flags
	if flags.Lookup("symbol") == nil {
		return runArgs, nil
	}

	if runArgs.Symbol, err = flags.GetString("symbol"); err != nil {
		return runArgs, err
	}

	if runArgs.ConfigPath, err = flags.GetString("config"); err != nil {
		return runArgs, err
	}

	if runArgs.CsvOutDir, err = flags.GetString("csv-dir"); err != nil {
		return runArgs, err
	}

	if runArgs.ChartOutDir, err = flags.GetString("out-dir"); err != nil {
		return runArgs, err
	}

	if !flags.Changed("out-dir") {
		runArgs.ChartOutDir = utils.GetEnvOrDefault("CHART_OUTPUT_DIR", runArgs.ChartOutDir)
	}

	if flags.Changed("oi-cutoff") {
		oiCutoff, err := flags.GetInt("oi-cutoff")
		if err != nil {
			return runArgs, err
		}
		runArgs.OICutoff = &oiCutoff
	}

	if flags.Changed("expiry-index") {
		expiryIndex, err := flags.GetInt("expiry-index")
		if err != nil {
			return runArgs, err
		}
		runArgs.ExpiryIndex = &expiryIndex
	}

	if flags.Changed("strike") {
		strike, err := flags.GetFloat64("strike")
		if err != nil {
			return runArgs, err
		}
		runArgs.Strike = &strike
	}

	return runArgs, nil
}

func main() {
	rootCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	rootCmd.PersistentFlags().String("env-dir", "", "Directory holding the .env.<go-env> file. Environment files are not loaded when empty.")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level, e.g. 'debug'. Defaults to $LOG_LEVEL.")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: 'text' or 'json'.")
	rootCmd.PersistentFlags().String("from-file", "", "Read a saved NSE option chain JSON response instead of calling the endpoint.")
	rootCmd.PersistentFlags().String("from-csv", "", "Read an option chain csv written by --csv-dir instead of calling the endpoint.")
	rootCmd.PersistentFlags().Float64("underlying", 0, "Underlying price used with --from-csv.")

	analyzeCmd.Flags().StringP("symbol", "s", "", "Security to analyze, e.g. 'NIFTY'. Prompted for when empty.")
	analyzeCmd.Flags().Int("oi-cutoff", 100, "Keep strikes whose call or put open interest is above this value.")
	analyzeCmd.Flags().Int("expiry-index", 0, "Expiry used by the volatility skew and open interest charts.")
	analyzeCmd.Flags().Float64("strike", 0, "Strike used by the term structure chart. Defaults to the ATM strike.")
	analyzeCmd.Flags().StringP("out-dir", "o", ".", "Directory charts are written to. Defaults to $CHART_OUTPUT_DIR.")
	analyzeCmd.Flags().String("csv-dir", "", "Export the filtered option chain as csv to this directory.")
	analyzeCmd.Flags().StringP("config", "c", "", "YAML file with per-symbol analysis settings.")

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on. Defaults to $PORT.")
	serveCmd.Flags().Duration("cache-ttl", 5*time.Minute, "How long fetched option chains are reused.")

	rootCmd.AddCommand(analyzeCmd, serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		stop()
		os.Exit(1)
	}
}
