package main

import (
	"encoding/json"
	"fmt"

	"github.com/contre95/scanrelay/src/features/config"
	"github.com/contre95/scanrelay/src/features/receiver"
	"github.com/contre95/scanrelay/src/scanning"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "scanrelay",
	Short: "Relay storage broadcasts to a media scan service",
	Long: `Scanrelay turns boot, mount, unmount and scan-file broadcasts into
commands for an external media scan service.

Without a subcommand it runs the server.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
	RunE:              runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server, Telegram bot and scan handoff",
	RunE:  runServe,
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Print the commands a broadcast would produce",
	Example: `  scanrelay dispatch --action boot
  scanrelay dispatch --action mounted --data file:///storage/usb1
  scanrelay dispatch --action scan_file --data file:///sdcard/a.mp3 --root /sdcard`,
	RunE: runDispatch,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgManager, err := config.Load(configPath)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), cfgManager.GetYAML())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the configuration file")

	dispatchCmd.Flags().String("action", "", "broadcast action (full intent name or alias)")
	dispatchCmd.Flags().String("data", "", "broadcast data URI")
	dispatchCmd.Flags().String("root", "", "external storage root (defaults to the configured one)")
	dispatchCmd.MarkFlagRequired("action")

	rootCmd.AddCommand(serveCmd, dispatchCmd, configCmd)
}

// loadEnv loads a .env file when one exists; it never overrides variables
// already set in the environment.
func loadEnv(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgManager, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return serve(cmd.Context(), cfgManager)
}

func runDispatch(cmd *cobra.Command, args []string) error {
	action, _ := cmd.Flags().GetString("action")
	data, _ := cmd.Flags().GetString("data")
	root, _ := cmd.Flags().GetString("root")

	if root == "" {
		cfgManager, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		root = cfgManager.ExternalStorageRoot()
	}

	event := receiver.ParseBroadcast(action, data)
	out, err := json.MarshalIndent(struct {
		Event    scanning.Event     `json:"event"`
		Commands []scanning.Command `json:"commands"`
	}{event, scanning.Dispatch(event, root)}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
