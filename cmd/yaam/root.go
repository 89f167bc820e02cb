package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/config"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/hashing"
	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/metadata"
	"github.com/conn-castle/yaam/internal/run"
	"github.com/conn-castle/yaam/internal/synth"
)

var defaultConfigPath = config.DefaultPath

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	quiet      bool
	variant    string
}

// app is the loaded state every command starts from.
type app struct {
	cfg   *config.Config
	log   *console.Logger
	input synth.Input
	store *metadata.Store
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	sf := &syncFlags{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, g, sf)
		},
	}
	cmd.Flags().Bool("version", false, messages.RootVersionFlag)
	sf.bind(cmd)
	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", messages.RootFlagConfig)
	flags.BoolVarP(&g.verbose, "verbose", "v", false, messages.RootFlagVerbose)
	flags.BoolVarP(&g.quiet, "quiet", "q", false, messages.RootFlagQuiet)
	flags.StringVar(&g.variant, "variant", "", messages.RootFlagVariant)

	cmd.AddCommand(
		newSyncCmd(g),
		newPlanCmd(g),
		newStatusCmd(g),
		newVersionCmd(),
	)
	return cmd
}

// load reads the config and the declarations. Only config failures are returned.
func (g *globalFlags) load(cmd *cobra.Command) (*app, error) {
	log := console.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), console.Options{Verbose: g.verbose, Quiet: g.quiet})
	path := strings.TrimSpace(g.configPath)
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrConfigLoad, err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(g.variant); raw != "" {
		if err := cfg.SetVariant(raw); err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrConfigLoad, err)
		}
	}
	input, err := cfg.LoadDeclarations(log)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:   cfg,
		log:   log,
		input: input,
		store: metadata.NewStore(cfg.MetadataDir(), hashing.SHA256{}, log),
	}, nil
}

// resolve returns the last-run snapshot and the one this run would produce, without touching
// addon files.
func (a *app) resolve() (previous addon.Snapshot, current addon.Snapshot) {
	return run.New(run.Deps{StateDir: a.cfg.StateDir(), Logger: a.log}).Resolve(a.input)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.VersionUse,
		Short: messages.VersionShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), versionString()+"\n")
			return err
		},
	}
}
