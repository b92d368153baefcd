package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/config"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/logging"
	"github.com/assurlink/courtage/internal/output"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "courtage",
	Short: "Simulateur de devis du courtier",
	Long: "Calcule les devis auto, épargne, éducation, Molo Molo et obsèques, " +
		"compare des variantes, résout un objectif de capital et sert l'API des applications.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("rates", "", "Rates YAML overlaid on the built-in tariff")
	pf.BoolP("verbose", "v", false, "Verbose logging")
	pf.StringP("format", "f", "", "Output format (depends on the command)")
	pf.StringP("out", "o", "", "Write output to this file instead of stdout")

	rootCmd.AddCommand(
		versionCmd(),
		quoteCmd,
		validateCmd,
		ratesCmd(),
		solveCmd,
		compareCmd,
		serveCmd,
		extractCmd,
		pitchCmd,
	)
	solveCmd.Flags().String("target", "contribution", "Parameter to solve: contribution, duration or all")
	solveCmd.Flags().Int64("capital", 0, "Target final capital in FCFA (required)")
	solveCmd.Flags().Int("max-years", 0, "Upper bound when solving the duration")

	compareCmd.Flags().StringArray("with", nil, "Variant as [name=]transform:k=v;transform:k=v (repeatable)")
	compareCmd.Flags().String("templates", "", "Comma-separated built-in templates to compare")
	compareCmd.Flags().Bool("list-templates", false, "List built-in templates and transforms")

	serveCmd.Flags().String("config", "", "Server configuration YAML")

	for _, c := range []*cobra.Command{extractCmd, pitchCmd} {
		c.Flags().String("model", "gemini-2.5-flash", "Gemini model")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "courtage %s (commit %s, built %s)\n", version, commit, date)
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
					fmt.Fprintln(cmd.OutOrStdout(), bi.String())
				}
			}
		},
	}
}

// cliLogger returns the console logger selected by --verbose
func cliLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := logging.NewConsole(verbose)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newEngine loads the tariff selected by --rates and returns an engine on it
func newEngine(cmd *cobra.Command) (*calculation.CalculationEngine, *domain.RateTables, error) {
	path, _ := cmd.Flags().GetString("rates")
	tables, err := config.LoadRates(path)
	if err != nil {
		return nil, nil, err
	}
	engine := calculation.NewCalculationEngineWithRates(calculation.StaticRates{Tables: tables})
	engine.SetLogger(cliLogger(cmd).Sugar())
	return engine, tables, nil
}

func formatFlag(cmd *cobra.Command, def string) string {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		return strings.ToLower(f)
	}
	return def
}

// emit writes data to --out or stdout
func emit(cmd *cobra.Command, data []byte) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Écrit dans %s\n", out)
	return nil
}

var quoteCmd = &cobra.Command{
	Use:   "quote [input-file]",
	Short: "Compute a quote from a request file",
	Example: `  courtage quote auto.yaml
  courtage quote epargne.yaml --format pdf --out devis.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, tables, err := newEngine(cmd)
		if err != nil {
			return err
		}
		req, err := config.NewInputParser(tables).LoadFromFile(args[0])
		if err != nil {
			return err
		}
		q, err := engine.Quote(req)
		if err != nil {
			return err
		}

		name := formatFlag(cmd, "console")
		f := output.GetFormatterByName(name)
		if f == nil {
			return fmt.Errorf("unknown format %q (available: %s)", name, strings.Join(output.AvailableFormatterNames(), ", "))
		}
		data, err := f.Format(q)
		if err != nil {
			return err
		}
		return emit(cmd, data)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate a request file against the tariff",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, tables, err := newEngine(cmd)
		if err != nil {
			return err
		}
		req, err := config.NewInputParser(tables).LoadFromFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Le fichier %s est valide (%s)\n", args[0], req.Product.Label())
		return nil
	},
}

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect rate tables",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the tariff in force (yaml or json)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tables, err := newEngine(cmd)
			if err != nil {
				return err
			}
			var data []byte
			switch formatFlag(cmd, "yaml") {
			case "json":
				data, err = json.MarshalIndent(tables, "", "  ")
			case "yaml", "yml":
				data, err = yaml.Marshal(tables)
			default:
				return fmt.Errorf("rates show supports yaml or json")
			}
			if err != nil {
				return err
			}
			return emit(cmd, data)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "check [rates-file]",
		Short: "Validate a rates file without using it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("rates")
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no rates file given")
			}
			tables, err := config.LoadRates(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: tarif %s valide (en vigueur le %s)\n",
				path, tables.Metadata.Version, tables.Metadata.EffectiveDate)
			return nil
		},
	})
	return cmd
}
