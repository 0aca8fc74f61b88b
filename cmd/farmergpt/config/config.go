// Package configcmder provides the config command for managing persistent
// farmergpt configuration stored in the .farmergpt/ directory.
package configcmder

import (
	"github.com/spf13/cobra"

	"github.com/farmergpt/farmergpt/pkg/cliui"
)

const configLongDesc string = `Manage persistent farmergpt configuration.

Configuration is stored as config.toml in the .farmergpt/ directory and provides
default values for command flags. Environment variables (FARMERGPT_*) and
CLI flags always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  provider.type, provider.base_url, provider.api_key, provider.model, provider.timeout,
  transcriber.base_url, transcriber.api_key, transcriber.model,
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  storage.supabase_url, storage.supabase_key, storage.supabase_extended,
  memory.provider, memory.window, memory.redis_url, memory.ttl,
  api.listen, api.frontend_dir,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  worker.count, worker.queue_size

Use subcommands to get, set, or list configuration values:
  farmergpt config set <key> <value>    Set a configuration value
  farmergpt config get <key>            Get a configuration value
  farmergpt config list                 List all configuration values

Examples:
  farmergpt config set storage.driver supabase
  farmergpt config set memory.window 8
  farmergpt config get provider.model
  farmergpt config list`

const configShortDesc string = "Manage persistent farmergpt configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// printTarget reports which config file a subcommand operates on.
func printTarget(cmd *cobra.Command, target string) {
	if target != "" {
		cmd.Printf("\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	cmd.Printf("\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
