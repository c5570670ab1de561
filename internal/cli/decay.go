package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Run one interest-decay sweep over all stored profiles",
	Long:  "Applies time decay to every stored behavioral profile and drops interests that have faded below the floor. The serve daemon runs this on a schedule; the command exists for cron-less setups and maintenance.",
	RunE:  runDecay,
}

func runDecay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	halfLife := time.Duration(cfg.Engine.DecayHalfLifeHours * float64(time.Hour))
	updated, err := db.DecayVectors(halfLife, cfg.Engine.DecayDropThreshold, time.Now())
	if err != nil {
		return fmt.Errorf("decay sweep: %w", err)
	}

	fmt.Printf("decayed %d profile(s)\n", updated)
	return nil
}
