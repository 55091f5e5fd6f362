package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/printforge/fleet/pkg/api"
)

var (
	serverURL    string
	tenantID     string
	apiKey       string
	outputFormat string
	cfgFile      string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "CLI for the printforge fleet server",
	Long:  `fleetctl manages printers, print jobs, worklist tasks and component inventory on a printforge fleet server.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fleetctl/config)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "fleet server URL (default from config or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "tenant ID (default from config)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
}

// initConfig reads in config file and environment variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(filepath.Join(home, ".fleetctl"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.BindEnv("api_key", "FLEET_API_KEY")
	viper.BindEnv("server_url", "FLEET_SERVER_URL")
	viper.BindEnv("tenant_id", "FLEET_TENANT_ID")

	_ = viper.ReadInConfig()

	if serverURL == "" {
		serverURL = viper.GetString("server_url")
	}
	if tenantID == "" {
		tenantID = viper.GetString("tenant_id")
	}
	if apiKey == "" {
		apiKey = viper.GetString("api_key")
	}

	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	if tenantID == "" {
		tenantID = "default"
	}
}

// newClient builds the API client from resolved configuration
func newClient() *api.Client {
	return api.NewClient(serverURL, tenantID, apiKey)
}

// IsJSONOutput returns whether --output json was requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}
