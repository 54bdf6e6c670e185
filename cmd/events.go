// This file implements the events command for inspecting and manually
// triggering catalog events.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cyberahree/rockin/core/config"
	"github.com/cyberahree/rockin/core/events"
	"github.com/cyberahree/rockin/core/events/modules"
	"github.com/cyberahree/rockin/core/flags"
	"github.com/cyberahree/rockin/core/location"
	"github.com/spf13/cobra"
)

// triggerWaitCeiling bounds how long the trigger command waits for an event
// to call back before giving up; the watchdog fires well before this.
const triggerWaitCeiling = 3 * time.Minute

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect and trigger sprite events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the event catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, manager, err := buildEngine()
		if err != nil {
			return err
		}
		defer manager.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tENABLED\tWEIGHT\tCOOLDOWN")
		for _, info := range engine.Events() {
			fmt.Fprintf(w, "%s\t%s\t%v\t%.2f\t%s\n",
				info.ID, info.Name, info.Enabled, info.Weight, info.Cooldown)
		}
		return w.Flush()
	},
}

var eventsTriggerCmd = &cobra.Command{
	Use:   "trigger [event-id]",
	Short: "Manually trigger an event (random pick when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, manager, err := buildEngine()
		if err != nil {
			return err
		}
		defer manager.Close()

		started := false
		if len(args) == 1 {
			started = engine.Trigger(args[0])
		} else {
			started = engine.TriggerRandom()
		}
		if !started {
			return fmt.Errorf("no event was started")
		}

		waitForIdle(engine)
		return nil
	},
}

func init() {
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsTriggerCmd)
	rootCmd.AddCommand(eventsCmd)
}

// buildEngine wires the scheduler with the built-in catalog and the console
// collaborators.
func buildEngine() (*events.Scheduler, *config.Manager, error) {
	manager := config.NewManager(configPath)
	if err := manager.Load(); err != nil {
		return nil, nil, err
	}

	resolver := location.NewResolver(func() bool {
		return manager.Get().Location.AllowLookup
	})

	registry := flags.NewRegistry()
	engine := events.New(events.Config{
		Flags:    registry,
		Catalog:  modules.Catalog(modules.Deps{Location: resolver}),
		Settings: manager.Get().Events.SchedulerSettings(),
		Sounds:   consoleSounds{},
		Speech:   newConsoleSpeech(),
		Scene:    demoScene(),
		Sprite:   newStaticSprite(),
		Logger:   slog.Default(),
		OnEventStarted: func(id, name string) {
			fmt.Printf("== event started: %s (%s)\n", name, id)
		},
	})

	manager.OnChange(func(cfg *config.Config) {
		engine.ApplySettings(cfg.Events.SchedulerSettings())
	})

	return engine, manager, nil
}

// waitForIdle polls until the active run clears.
func waitForIdle(engine *events.Scheduler) {
	deadline := time.Now().Add(triggerWaitCeiling)
	for time.Now().Before(deadline) {
		if _, active := engine.ActiveEvent(); !active {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
