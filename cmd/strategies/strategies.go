// Package strategies implements the strategies sub-commands.
package strategies

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cmdCommon "github.com/farmkit/stratreg/cmd/common"
	"github.com/farmkit/stratreg/common"
	"github.com/farmkit/stratreg/config"
	"github.com/farmkit/stratreg/log"
	"github.com/farmkit/stratreg/naming"
	"github.com/farmkit/stratreg/strategies"
)

const (
	moduleName = "strategies"
)

var (
	// Path to the configuration file.
	configFile string

	// Output format of the list sub-command.
	outputFormat string

	// Components for the name sub-command.
	nameType       = common.StratTypeLevCVX
	nameUnderlying string
	nameRisk       []string
	nameProtocols  []string
	nameChain      string

	strategiesCmd = &cobra.Command{
		Use:   "strategies",
		Short: "Inspect the strategy list",
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Build the strategy list and print it",
		Args:  cobra.NoArgs,
		Run:   runList,
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Build the strategy list and report the first invalid entry",
		Args:  cobra.NoArgs,
		Run:   runValidate,
	}

	nameCmd = &cobra.Command{
		Use:   "name",
		Short: "Generate a strategy name from its components",
		Args:  cobra.NoArgs,
		Run:   runName,
	}

	parseCmd = &cobra.Command{
		Use:   "parse <name>",
		Short: "Split a strategy name into its components",
		Args:  cobra.ExactArgs(1),
		Run:   runParse,
	}
)

// initialize loads the config and the common environment, exiting on failure.
func initialize() (*config.Config, *log.Logger) {
	cfg, err := config.InitConfig(configFile)
	if err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"err", err,
		)
		os.Exit(1)
	}
	if err = cmdCommon.Init(cfg); err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"err", err,
		)
		os.Exit(1)
	}
	return cfg, cmdCommon.RootLogger().WithModule(moduleName)
}

func runList(cmd *cobra.Command, args []string) {
	cfg, logger := initialize()

	if err := listStrategies(cmd.OutOrStdout(), cfg.Registry, outputFormat); err != nil {
		logger.Error("failed to list strategies", "err", err)
		os.Exit(1)
	}
}

func listStrategies(w io.Writer, cfg *config.RegistryConfig, format string) error {
	l, _, err := cmdCommon.LoadStrategies(cfg)
	if err != nil {
		return err
	}
	return writeList(w, l.All(), format)
}

func writeList(w io.Writer, cfgs []strategies.StrategyConfig, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfgs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfgs); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tCHAIN\tPOOL\tLEVERAGE\tFARM TOKENS")
		for _, c := range cfgs {
			farm := make([]string, len(c.FarmTokens))
			for i, t := range c.FarmTokens {
				farm[i] = t.Symbol
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Chain, c.PoolIndex, c.LeverageString(), strings.Join(farm, ","))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format '%s'", format)
	}
}

func runValidate(cmd *cobra.Command, args []string) {
	cfg, logger := initialize()

	if err := validateStrategies(cmd.OutOrStdout(), cfg.Registry, logger); err != nil {
		os.Exit(1)
	}
}

// validateStrategies builds the configured list. On failure it logs where
// the first bad entry is and returns the error.
func validateStrategies(w io.Writer, cfg *config.RegistryConfig, logger *log.Logger) error {
	l, _, err := cmdCommon.LoadStrategies(cfg)
	if err != nil {
		logger.Error("strategy list is invalid", errorKeyvals(err)...)
		return err
	}
	fmt.Fprintf(w, "ok: %d strategies\n", l.Len())
	return nil
}

func errorKeyvals(err error) []interface{} {
	keyvals := []interface{}{"err", err}
	var entryErr *strategies.EntryError
	if errors.As(err, &entryErr) {
		keyvals = append(keyvals, "entry", entryErr.Index)
		if entryErr.Source != "" {
			keyvals = append(keyvals, "source", entryErr.Source, "source_entry", entryErr.SourceIndex)
		}
	}
	var invErr *strategies.InvariantError
	if errors.As(err, &invErr) {
		keyvals = append(keyvals, "invariant", invErr.Invariant.String(), "field", invErr.Field)
	}
	var dupErr *strategies.DuplicateNameError
	if errors.As(err, &dupErr) {
		keyvals = append(keyvals, "name", dupErr.Name, "first", dupErr.First, "second", dupErr.Second)
	}
	return keyvals
}

func runName(cmd *cobra.Command, args []string) {
	protocols := make([]common.Protocol, len(nameProtocols))
	for i, p := range nameProtocols {
		protocols[i] = common.Protocol(p)
	}
	c := naming.Components{
		Type:       nameType,
		Underlying: nameUnderlying,
		RiskAssets: nameRisk,
		Protocols:  protocols,
		Chain:      common.ChainName(nameChain),
	}
	if err := generateName(cmd.OutOrStdout(), c); err != nil {
		log.NewDefaultLogger(moduleName).Error("cannot generate name", "err", err)
		os.Exit(1)
	}
}

func generateName(w io.Writer, c naming.Components) error {
	name, err := c.Name()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, name)
	return err
}

func runParse(cmd *cobra.Command, args []string) {
	if err := parseName(cmd.OutOrStdout(), args[0]); err != nil {
		log.NewDefaultLogger(moduleName).Error("cannot parse name", "err", err)
		os.Exit(1)
	}
}

func parseName(w io.Writer, name string) error {
	c, err := naming.Parse(name)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Register registers the strategies sub-commands.
func Register(parentCmd *cobra.Command) {
	strategiesCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config.yml file (defaults only when empty)")
	listCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format [table,json,yaml]")

	nameCmd.Flags().Var(&nameType, "type", "strategy type")
	nameCmd.Flags().StringVar(&nameUnderlying, "underlying", "", "underlying token symbol")
	nameCmd.Flags().StringSliceVar(&nameRisk, "risk", nil, "risk asset symbols, in order")
	nameCmd.Flags().StringSliceVar(&nameProtocols, "protocol", []string{string(common.ProtocolGearbox)}, "protocols, in order")
	nameCmd.Flags().StringVar(&nameChain, "chain", string(common.ChainNameMainnet), "chain name")

	strategiesCmd.AddCommand(listCmd, validateCmd, nameCmd, parseCmd)
	parentCmd.AddCommand(strategiesCmd)
}
