package commands

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Inspect and manage live Agent connections",
}

var connectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every connection the Manager currently tracks",
	RunE: func(cmd *cobra.Command, args []string) error {
		conns, err := newClient().ListConnections()
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "STATE"})
		for _, c := range conns {
			table.Append([]string{c.ID, c.State})
		}
		table.Render()
		return nil
	},
}

var connectionsReleaseCmd = &cobra.Command{
	Use:   "release <connection-id>",
	Short: "Trigger an orderly release on one connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().ForceRelease(args[0])
	},
}

var connectionsAbortCmd = &cobra.Command{
	Use:   "abort <connection-id>",
	Short: "Abort one connection immediately, without an orderly release",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Abort connection %s", args[0]),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			return fmt.Errorf("aborted: %w", err)
		}
		return newClient().ForceAbort(args[0])
	},
}

func init() {
	connectionsCmd.AddCommand(connectionsListCmd)
	connectionsCmd.AddCommand(connectionsReleaseCmd)
	connectionsCmd.AddCommand(connectionsAbortCmd)
}
