package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/ytgenius/internal/application/generate"
	"github.com/doeshing/ytgenius/internal/domain"
)

type generateFlags struct {
	metadataType string
	copy         bool
	noHistory    bool
	timeout      time.Duration
}

func (f *generateFlags) register(cmd *cobra.Command, withType bool) {
	if withType {
		cmd.Flags().StringVarP(&f.metadataType, "type", "t", "", "Metadata type: title|description|tags|hashtags|disclaimer")
	}
	cmd.Flags().BoolVarP(&f.copy, "copy", "c", false, "Copy the result to the clipboard")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "Do not record this result in history")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Override request timeout (default from config)")
}

func newGenerateCommand(e *env) *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate <task> [prompt]",
		Short: "Send a request for any task (audit, script, metadata, thumbnail)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := domain.ParseTaskTag(args[0])
			if err != nil {
				return domain.WrapGenerationError(err, domain.ErrInvalidRequest, err.Error())
			}
			return runGenerate(cmd, e, flags, task, args[1:])
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newTaskCommand(e *env, task domain.TaskTag) *cobra.Command {
	var flags generateFlags
	use := string(task) + " [prompt]"
	if task.ExpectsURL() {
		use = string(task) + " <video-url>"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: task.Title(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, e, flags, task, args)
		},
	}
	flags.register(cmd, task == domain.TaskMetadata)
	return cmd
}

func runGenerate(cmd *cobra.Command, e *env, flags generateFlags, task domain.TaskTag, args []string) error {
	c := e.container
	if c.Dispatcher == nil {
		return fmt.Errorf("generation unavailable: %w", c.DispatchErr)
	}

	prompt, err := readPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	subType := ""
	if task == domain.TaskMetadata {
		subType = flags.metadataType
		if subType == "" {
			subType = c.Config.Preferences.DefaultMetadataType
		}
		parsed, err := domain.ParseMetadataSubType(subType)
		if err != nil {
			return domain.WrapGenerationError(err, domain.ErrInvalidRequest, err.Error())
		}
		subType = string(parsed)
	}

	ctx := cmd.Context()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	var spinner *Spinner
	if !e.renderer.JSON() && isTerminal(e.errOut) {
		spinner = NewSpinner(e.errOut, "Generating "+task.Title()+"...")
		spinner.Start()
	}
	outcome, err := c.Dispatcher.Submit(ctx, generate.Request{
		Prompt:       prompt,
		TaskType:     string(task),
		MetadataType: subType,
	})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if !flags.noHistory {
		if _, err := c.History.Record(task, subType, prompt, outcome.Payload); err != nil {
			c.Logger.Error("history not saved", err, nil)
			e.renderer.Warn("result not saved to history: %v", err)
		}
	}
	if err := c.Sessions.RecordBalance(outcome.CoinsLeft); err != nil {
		c.Logger.Warn("balance not saved", map[string]interface{}{"error": err.Error()})
	}

	if err := e.renderer.Outcome(task, subType, prompt, outcome); err != nil {
		return err
	}

	if flags.copy || c.Config.ShouldCopyToClipboard() {
		if !e.clipboard.Enabled() {
			c.Logger.Debug("clipboard unavailable", nil)
		} else if err := e.clipboard.Copy(outcome.Payload.CopyText()); err != nil {
			c.Logger.Warn("clipboard copy failed", map[string]interface{}{"error": err.Error()})
		} else if !e.renderer.JSON() {
			e.renderer.Dim("Copied to clipboard")
		}
	}
	return nil
}

// readPrompt joins args, or reads piped stdin when no args are given.
func readPrompt(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return "", nil
	}
	data, err := io.ReadAll(io.LimitReader(in, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
