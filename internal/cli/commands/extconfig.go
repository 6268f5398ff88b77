package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otcheredev/pcd-manager/internal/cli/client"
)

var (
	extConfigSystemID string
	extConfigReportID uint16
	extConfigObjClass uint16
	extConfigObjHandle uint16
)

var extConfigCmd = &cobra.Command{
	Use:   "extconfig",
	Short: "Pre-register extended configurations",
}

var extConfigRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a single-object extended configuration ahead of an Agent connecting",
	Long: `Registers an extended configuration with exactly one object and no
attributes, ahead of an Agent connecting, so the fast path in the FSM's
AARE handler doesn't wait out the configuring timeout. For a full
multi-object configuration with real attribute values, POST a JSON
body to the admin API's /extconfig endpoint directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if extConfigSystemID == "" || extConfigReportID == 0 || extConfigObjClass == 0 {
			return fmt.Errorf("--system-id, --config-report-id, and --obj-class are required")
		}
		req := client.RegisterExtConfigRequest{
			SystemIDHex:    extConfigSystemID,
			ConfigReportID: extConfigReportID,
			Objects: []client.ConfigObject{
				{ObjClass: extConfigObjClass, ObjHandle: extConfigObjHandle},
			},
		}
		if err := newClient().RegisterExtConfig(req); err != nil {
			return err
		}
		fmt.Printf("registered extended configuration for system %s, config_report_id=%d\n", extConfigSystemID, extConfigReportID)
		return nil
	},
}

func init() {
	extConfigRegisterCmd.Flags().StringVar(&extConfigSystemID, "system-id", "", "system id, hex-encoded")
	extConfigRegisterCmd.Flags().Uint16Var(&extConfigReportID, "config-report-id", 0, "config report id")
	extConfigRegisterCmd.Flags().Uint16Var(&extConfigObjClass, "obj-class", 0, "MDC object class of the single registered object")
	extConfigRegisterCmd.Flags().Uint16Var(&extConfigObjHandle, "obj-handle", 0, "object handle (defaults to 0)")
	extConfigCmd.AddCommand(extConfigRegisterCmd)
}
