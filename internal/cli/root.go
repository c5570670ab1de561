package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ambelin/attune/internal/config"
	"github.com/ambelin/attune/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "attune",
	Short: "Behavioral adaptation engine for early-learning apps",
	Long:  "Attune watches how a child interacts with learning content and adapts what gets served next. Single Go binary, local SQLite state.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(decayCmd)
}

// loadConfig resolves the active config: the --config file when given,
// built-in defaults otherwise.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// openDB opens the database for CLI commands. ATTUNE_DB overrides the
// configured path.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := os.Getenv("ATTUNE_DB")
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}
