package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/ytgenius/internal/app"
	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/ports"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// env is shared by every command. The container is built once flags are parsed.
type env struct {
	opts      app.Options
	output    string
	container *app.Container
	renderer  *Renderer
	prompter  ports.ConfirmationPrompter
	clipboard ports.Clipboard
	errOut    io.Writer
}

func (e *env) setup(cmd *cobra.Command) error {
	if e.renderer != nil {
		return nil
	}
	if e.container == nil {
		container, err := app.BuildContainer(cmd.Context(), e.opts)
		if err != nil {
			return err
		}
		e.container = container
	}

	output := e.output
	if output == "" {
		output = e.container.Config.GetOutputMode()
	}
	switch output {
	case domain.OutputAuto, domain.OutputPlain, domain.OutputJSON:
	default:
		return fmt.Errorf("--output must be auto|plain|json, got %q", output)
	}
	e.renderer = NewRenderer(cmd.OutOrStdout(), output)
	e.prompter = NewPrompter(nil, cmd.OutOrStdout())
	e.clipboard = NewClipboard()
	e.errOut = cmd.ErrOrStderr()
	return nil
}

func (e *env) close() {
	if e.container != nil {
		if err := e.container.Close(); err != nil {
			e.container.Logger.Warn("close resources", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Execute runs the command line and releases the container afterwards,
// including when the command fails.
func Execute(ctx context.Context, opts Options, args []string) error {
	e := &env{opts: app.Options{Verbose: opts.Verbose}}
	root := newRootCmd(e, opts)
	root.SetArgs(args)
	return execute(ctx, root, e)
}

func execute(ctx context.Context, root *cobra.Command, e *env) error {
	defer e.close()
	return root.ExecuteContext(ctx)
}

// newRootCmd wires the cobra root command.
func newRootCmd(e *env, opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:   "ytgenius [prompt]",
		Short: "YouTube Genius - audits, scripts, metadata and thumbnail ratings",
		Long: "ytgenius sends your video links and ideas to the Genius Architect service " +
			"and keeps the last 50 results on this machine.",
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			task, err := e.container.Config.GetDefaultTask()
			if err != nil {
				return err
			}
			return runGenerate(cmd, e, generateFlags{}, task, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&e.output, "output", "o", "", "Output mode: auto|plain|json (default from config)")
	flags.BoolVar(&e.opts.Ephemeral, "ephemeral", false, "Keep history in memory for this run only")
	flags.StringVar(&e.opts.ConfigPath, "config", "", "Config file (default ~/.ytgenius/config.yaml)")
	flags.BoolVarP(&e.opts.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")

	root.AddCommand(newGenerateCommand(e))
	for _, task := range domain.DispatchableTasks {
		root.AddCommand(newTaskCommand(e, task))
	}
	root.AddCommand(newHistoryCommand(e))
	root.AddCommand(newAuthCommand(e))
	root.AddCommand(newSettingsCommand(e))
	root.AddCommand(newConfigCommand(e))
	root.AddCommand(newDoctorCommand(e))
	root.AddCommand(newVersionCommand())
	return root
}

// PrintError writes err as a single line, styled when w is a terminal.
func PrintError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	NewRenderer(w, domain.OutputAuto).Error(err)
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		return 1
	}
	switch genErr.Kind {
	case domain.ErrUnauthenticated:
		return 3
	case domain.ErrServiceRejected:
		return 4
	case domain.ErrTransport:
		return 5
	default:
		return 2
	}
}
