// This file implements the run command: a headless scheduler loop with
// console collaborators, useful for exercising the engine without the
// desktop frontend.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyberahree/rockin/core/events"
	"github.com/spf13/cobra"
)

var runFast bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the event scheduler headless until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, manager, err := buildEngine()
		if err != nil {
			return err
		}
		defer manager.Close()

		if err := manager.Watch(); err != nil && configPath != "" {
			fmt.Fprintf(os.Stderr, "config watch unavailable: %v\n", err)
		}

		if runFast {
			engine.ApplySettings(events.Settings{
				Enabled:          true,
				StartupDelay:     2 * time.Second,
				IntervalMin:      5 * time.Second,
				IntervalMax:      15 * time.Second,
				MaxEventDuration: 60 * time.Second,
			})
		}

		engine.Start()
		defer engine.Stop()

		fmt.Println("scheduler running, ctrl-c to stop")

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		fmt.Println("stopping")
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runFast, "fast", false, "use short demo intervals instead of configured ones")
	rootCmd.AddCommand(runCmd)
}
