package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Fepozopo/docfix/pkg/stdimg"
)

// settingFlags are the root flags that may also come from DOCFIX_<NAME>.
var settingFlags = []string{"marker", "out-dir", "overwrite", "debug", "debug-dir", "debug-format", "jpeg-quality", "preview", "log-level", "json-logs"}

type app struct {
	settings Settings
	sets     []string
	envFile  string
	logLevel string
	jsonLogs bool
	log      zerolog.Logger
}

// NewRootCommand builds the docfix command tree.
func NewRootCommand() *cobra.Command {
	a := &app{settings: DefaultSettings()}
	root := &cobra.Command{
		Use:   "docfix [flags] <file>...",
		Short: "Even out lighting and contrast in photos of paper documents",
		Long: `docfix flattens shadows and uneven illumination in photographed pages.
Each input is written next to itself with a marker before the extension
(scan.jpg -> scan.fixed.jpg). Without arguments on a terminal, files are
picked with fzf.`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.run,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file with DOCFIX_* settings")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	pf.BoolVar(&a.jsonLogs, "json-logs", false, "log JSON lines instead of console text")

	f := root.Flags()
	s := &a.settings
	f.StringVar(&s.Marker, "marker", s.Marker, "text inserted before the output extension")
	f.StringVar(&s.OutDir, "out-dir", "", "write outputs here instead of next to the inputs")
	f.BoolVar(&s.Overwrite, "overwrite", s.Overwrite, "replace existing outputs")
	f.BoolVar(&s.Debug, "debug", false, "dump every intermediate stage and log at debug level")
	f.StringVar(&s.DebugDir, "debug-dir", s.DebugDir, "directory for stage dumps")
	f.StringVar(&s.DebugFormat, "debug-format", s.DebugFormat, "stage dump format (png|zst)")
	f.IntVar(&s.JPEGQuality, "jpeg-quality", s.JPEGQuality, "quality of JPEG outputs (1-100)")
	f.BoolVar(&s.Preview, "preview", false, "show each result in the terminal")
	f.StringArrayVar(&a.sets, "set", nil, "set a tunable, name=value (repeatable)")
	registerTunableFlags(f)

	root.AddCommand(newParamsCommand(), newUpdateCommand(), newVersionCommand())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := LoadEnvFile(a.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}
	if err := bindEnv(cmd.Flags(), os.LookupEnv, settingFlags...); err != nil {
		return err
	}
	level := a.logLevel
	if a.settings.Debug && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	log, err := NewLogger(os.Stderr, level, a.jsonLogs)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	opts, err := ResolveOptions(cmd.Flags(), a.sets, os.LookupEnv)
	if err != nil {
		return err
	}
	if a.settings.JPEGQuality < 1 || a.settings.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg-quality %d: must be in [1,100]", a.settings.JPEGQuality)
	}
	if len(args) == 0 {
		if !isatty.IsTerminal(os.Stdin.Fd()) || !HasFzf() {
			return fmt.Errorf("no input files")
		}
		args, err = SelectFilesWithFzf(".")
		if err != nil {
			return err
		}
	}
	p := &Processor{Options: opts, Settings: a.settings, Log: a.log, Out: cmd.OutOrStdout()}
	return p.Run(args)
}

func newParamsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "List the correction tunables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTYPE\tDEFAULT\tENV\tDESCRIPTION")
			for _, p := range stdimg.Params {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Type, p.Default, EnvName(p.Name), p.Description)
			}
			return tw.Flush()
		},
	}
}

func newUpdateCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check GitHub for a newer release and install it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return CheckForUpdates(cmd.OutOrStdout(), cmd.InOrStdin(), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "update without asking")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docfix %s\n", Version)
		},
	}
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
