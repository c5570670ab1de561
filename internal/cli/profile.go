package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ambelin/attune/internal/engine"
)

var profileCmd = &cobra.Command{
	Use:   "profile <child-id>",
	Short: "Show a child's stored behavioral profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	childID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	payload, err := db.LoadVector(childID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if payload == nil {
		fmt.Printf("No behavior profile found for %s. Run some sessions first.\n", childID)
		return nil
	}

	prof, err := engine.ProfileFromJSON(payload)
	if err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}

	fmt.Printf("## %s\n", childID)
	if streak, err := db.StreakDays(childID); err == nil && streak > 0 {
		fmt.Printf("%d-day streak\n", streak)
	}
	fmt.Println()

	if tops := prof.TopInterests(10); len(tops) > 0 {
		fmt.Println("## Interests")
		for _, t := range tops {
			ti := prof.Interests[t]
			last := time.UnixMilli(ti.LastInteraction).Format("2006-01-02")
			fmt.Printf("- %s: %.2f (last seen %s)\n", t, ti.Weight, last)
		}
		fmt.Println()
	}

	if len(prof.Mastery) > 0 {
		topics := make([]string, 0, len(prof.Mastery))
		for t := range prof.Mastery {
			topics = append(topics, t)
		}
		sort.Strings(topics)

		fmt.Println("## Mastery")
		for _, t := range topics {
			rec := prof.Mastery[t]
			fmt.Printf("- %s: level %d/3, %d successes, last quiz %d\n",
				t, rec.Level, rec.SuccessCount, rec.LastQuizScore)
		}
		fmt.Println()
	}

	if stats, err := db.TopicSuccessRates(childID); err == nil && len(stats) > 0 {
		fmt.Println("## Success Rates")
		for _, st := range stats {
			fmt.Printf("- %s: %d/%d\n", st.Topic, st.Successes, st.Attempts)
		}
		fmt.Println()
	}

	if recs, err := db.RecentRecommendations(childID, 5); err == nil && len(recs) > 0 {
		fmt.Println("## Recently Served")
		for _, r := range recs {
			suffix := ""
			if r.IsChallenge {
				suffix = " (challenge)"
			}
			fmt.Printf("- %s [L%d, %s]%s\n", r.Topic, r.DifficultyLevel, r.ContentMode, suffix)
		}
	}

	return nil
}
