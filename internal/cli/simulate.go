package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ambelin/attune/internal/catalog"
	"github.com/ambelin/attune/internal/engine"
	"github.com/ambelin/attune/internal/script"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <script.jsonl>",
	Short: "Replay a session script against an in-process engine",
	Long:  "Replays a JSONL event script with a simulated clock and prints what the engine made of it. Nothing is written to the database.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	steps, err := script.ParseFile(args[0])
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("script %s has no steps", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Manual clock: the script controls time, not the wall. The engine's
	// tickers stay unstarted; pulse steps drive the periodic checks.
	now := time.Now()
	eng := engine.New(cfg.Engine, engine.WithClock(func() time.Time { return now }))
	topics := catalog.Default()

	accepted, rejected := 0, 0
	for i, step := range steps {
		if step.AdvanceMS > 0 {
			now = now.Add(time.Duration(step.AdvanceMS) * time.Millisecond)
		}

		switch step.Kind {
		case script.KindPulse:
			eng.Pulse()

		case script.KindRecommend:
			topic := step.Topic
			if topic == "" {
				prof := eng.Profile()
				topic = topics.Suggest(prof.TopInterests(3), prof.Seen)
			}
			rec := eng.Recommend(topic)
			fmt.Printf("%3d  recommend   %s [%s L%d, %s] challenge=%v\n            %s\n",
				i+1, rec.Topic, rec.Difficulty, rec.DifficultyLevel, rec.ContentMode, rec.IsChallenge, rec.Reason)

		default:
			ev := step.Event
			if ev.Kind == engine.EventInteractionStart && ev.ItemID == "" {
				ev.ItemID = uuid.NewString()
			}
			res := eng.Apply(ev)
			if res.Accepted {
				accepted++
			} else {
				rejected++
				fmt.Printf("%3d  %-11s rejected (%s)\n", i+1, ev.Kind, res.Reason)
			}
		}
	}

	m := eng.Metrics()
	fmt.Println()
	fmt.Printf("events: %d accepted, %d rejected\n", accepted, rejected)
	fmt.Printf("attention %dms, frustration %d, energy %s, mode %s, dormancy %s\n",
		m.AttentionSpanMS, m.FrustrationLevel, m.EnergyLevel, eng.Mode(), eng.Dormancy())

	prof := eng.Profile()
	if tops := prof.TopInterests(5); len(tops) > 0 {
		fmt.Print("interests:")
		for _, t := range tops {
			fmt.Printf(" %s(%.2f)", t, prof.Interests[t].Weight)
		}
		fmt.Println()
	}

	return nil
}
