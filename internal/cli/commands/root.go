// Package commands implements pcdctl's cobra commands: operator
// actions against a running PCD Manager's admin API.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/otcheredev/pcd-manager/internal/cli/client"
)

var (
	apiURL string
	token  string
)

var rootCmd = &cobra.Command{
	Use:           "pcdctl",
	Short:         "pcdctl manages a running PCD Manager instance",
	Long:          `pcdctl is the operator CLI for PCD Manager: list connections, force release or abort an association, and register extended configurations ahead of time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix("PCDCTL")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "PCD Manager admin API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("PCDCTL_TOKEN"), "admin API bearer token")

	rootCmd.AddCommand(connectionsCmd)
	rootCmd.AddCommand(extConfigCmd)
}

func newClient() *client.Client {
	return client.New(apiURL, token)
}
