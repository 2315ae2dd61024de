package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doeshing/ytgenius/internal/domain"
)

const msgNoHistoryRecorded = "No history yet. Start creating!"

func newHistoryCommand(e *env) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse the last 50 results kept on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(e, domain.DefaultHistoryLimit)
		},
	}

	historyCmd.AddCommand(
		newHistoryListCommand(e),
		newHistoryShowCommand(e),
		newHistoryDeleteCommand(e),
		newHistoryClearCommand(e),
		newHistoryExportCommand(e),
	)
	return historyCmd
}

func newHistoryListCommand(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent results, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(e, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show (0 for all)")
	return cmd
}

func listHistory(e *env, limit int) error {
	records := e.container.History.List()
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	if len(records) == 0 && !e.renderer.JSON() {
		e.renderer.Dim(msgNoHistoryRecorded)
		return nil
	}
	return e.renderer.Records(records)
}

func newHistoryShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a stored result (latest when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				rec   domain.HistoryRecord
				found bool
			)
			if len(args) == 0 {
				records := e.container.History.List()
				if len(records) > 0 {
					rec, found = records[0], true
				}
			} else {
				id, err := parseRecordID(args[0])
				if err != nil {
					return err
				}
				rec, found = e.container.History.Get(id)
			}
			if !found {
				return fmt.Errorf("no history record found")
			}
			return e.renderer.Record(rec)
		},
	}
}

func newHistoryDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one stored result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			if _, found := e.container.History.Get(id); !found {
				e.renderer.Dim("No record with id %d", id)
				return nil
			}
			if err := e.container.History.Delete(id); err != nil {
				return err
			}
			e.renderer.Success("Deleted %d", id)
			return nil
		},
	}
}

func newHistoryClearCommand(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !e.prompter.Enabled() {
					return fmt.Errorf("refusing to clear history without --yes")
				}
				ok, err := e.prompter.Confirm(fmt.Sprintf("Delete all %d history records?", len(e.container.History.List())))
				if err != nil {
					return err
				}
				if !ok {
					e.renderer.Dim("Cancelled")
					return nil
				}
			}
			if err := e.container.History.Clear(); err != nil {
				return err
			}
			e.renderer.Success("History cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newHistoryExportCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history as a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records := e.container.History.List()
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("encode history: %w", err)
			}
			path := args[0]
			if path == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
				return err
			}
			if err := os.WriteFile(path, append(data, '\n'), domain.DataFilePermissions); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			e.renderer.Success("Exported %d records to %s", len(records), path)
			return nil
		},
	}
}

func parseRecordID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q", raw)
	}
	return id, nil
}
