package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show ytgenius version information",
		// Version needs no config, session or history.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			return displayVersionInformation(cmd.OutOrStdout())
		},
	}
}

func displayVersionInformation(out io.Writer) error {
	fmt.Fprintf(out, "ytgenius version %s\n", version.Version)

	if version.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", version.Commit)
	}

	if version.BuildDate != "" {
		fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
	}

	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())

	return nil
}

func newDoctorCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose config, session, history and service reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := e.container.DoctorService.Run(cmd.Context())

			// Display report even if there were errors
			if e.renderer.JSON() {
				if jsonErr := e.renderer.writeJSON(report); jsonErr != nil {
					return jsonErr
				}
			} else {
				displayDoctorReport(cmd.OutOrStdout(), report)
			}

			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d diagnostic check(s) failed", len(failed))
			}
			return nil
		},
	}
}

func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}

type settingsFlags struct {
	defaultTask  string
	metadataType string
	output       string
	copy         string
}

func newSettingsCommand(e *env) *cobra.Command {
	var flags settingsFlags
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show your account and update preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.changed(cmd) {
				if err := updatePreferences(cmd, e, flags); err != nil {
					return err
				}
			}
			return showSettings(cmd, e)
		},
	}
	cmd.Flags().StringVar(&flags.defaultTask, "default-task", "", "Task used when none is given")
	cmd.Flags().StringVar(&flags.metadataType, "metadata-type", "", "Default metadata type")
	cmd.Flags().StringVar(&flags.output, "output-mode", "", "Default output mode: auto|plain|json")
	cmd.Flags().StringVar(&flags.copy, "copy", "", "Copy results to the clipboard: true|false")
	return cmd
}

func (f settingsFlags) changed(cmd *cobra.Command) bool {
	for _, name := range []string{"default-task", "metadata-type", "output-mode", "copy"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func updatePreferences(cmd *cobra.Command, e *env, flags settingsFlags) error {
	cfg, err := e.container.ConfigLoader.LoadFile(cmd.Context())
	if err != nil {
		return err
	}
	fl := cmd.Flags()
	if fl.Changed("default-task") {
		cfg.Preferences.DefaultTask = strings.ToLower(flags.defaultTask)
	}
	if fl.Changed("metadata-type") {
		cfg.Preferences.DefaultMetadataType = strings.ToLower(flags.metadataType)
	}
	if fl.Changed("output-mode") {
		cfg.Preferences.Output = strings.ToLower(flags.output)
	}
	if fl.Changed("copy") {
		switch strings.ToLower(flags.copy) {
		case "true", "yes", "on", "1":
			cfg.Preferences.CopyToClipboard = true
		case "false", "no", "off", "0":
			cfg.Preferences.CopyToClipboard = false
		default:
			return fmt.Errorf("--copy must be true or false, got %q", flags.copy)
		}
	}
	if err := saveConfigWithValidation(e, cfg); err != nil {
		return err
	}
	e.container.Config.Preferences = cfg.Preferences
	e.renderer.Success("Preferences saved to %s", e.container.ConfigLoader.Path())
	return nil
}

func showSettings(cmd *cobra.Command, e *env) error {
	out := cmd.OutOrStdout()
	c := e.container

	e.renderer.Header("ACCOUNT")
	session, err := c.Sessions.CurrentSession(cmd.Context())
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Fprintln(out, "Not signed in")
	} else {
		fmt.Fprintf(out, "Name:   %s\n", session.User.Name())
		fmt.Fprintf(out, "Email:  %s\n", session.User.Email)
		fmt.Fprintf(out, "ID:     %s\n", session.User.ID)
		if session.LastKnownBalance != nil {
			fmt.Fprintf(out, "Coins:  %d (as of last request)\n", *session.LastKnownBalance)
		}
	}

	prefs := c.Config.Preferences
	fmt.Fprintln(out)
	e.renderer.Header("PREFERENCES")
	fmt.Fprintf(out, "Default task:           %s\n", prefs.DefaultTask)
	fmt.Fprintf(out, "Default metadata type:  %s\n", prefs.DefaultMetadataType)
	fmt.Fprintf(out, "Output:                 %s\n", prefs.Output)
	fmt.Fprintf(out, "Copy to clipboard:      %t\n", prefs.CopyToClipboard)
	fmt.Fprintf(out, "History:                %s (%d/%d)\n", c.HistoryTarget, len(c.History.List()), c.History.Capacity())
	fmt.Fprintf(out, "Service:                %s\n", c.Config.Service.BaseURL)

	fmt.Fprintln(out)
	e.renderer.Dim("ytgenius %s", version.Version)
	return nil
}
