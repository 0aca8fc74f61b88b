// Package farmergptcmder
package farmergptcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/farmergpt/farmergpt/cmd/farmergpt/ask"
	chatcmder "github.com/farmergpt/farmergpt/cmd/farmergpt/chat"
	configcmder "github.com/farmergpt/farmergpt/cmd/farmergpt/config"
	servecmder "github.com/farmergpt/farmergpt/cmd/farmergpt/serve"
	versioncmder "github.com/farmergpt/farmergpt/cmd/version"
)

const farmergptLongDesc string = `FarmerGPT is an expert farming advisor backed by a hosted language model.

Ask questions about crops, soil, pests, irrigation or livestock in English,
Telugu, Malayalam, Kannada, Hindi or Tenglish:
  farmergpt serve          Run the HTTP API
  farmergpt ask "<q>"      Ask a single question
  farmergpt chat           Start an interactive conversation
  farmergpt config         Manage persistent configuration`

const farmergptShortDesc string = "FarmerGPT - Farming Advisor"

func NewFarmerGPTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "farmergpt",
		Short:         farmergptShortDesc,
		Long:          farmergptLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .farmergpt/ config directory")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
