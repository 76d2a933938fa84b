package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ecglearn/pkg/viewer"
	"github.com/OpenTraceLab/ecglearn/pkg/viewer/script"
)

var replayTrace bool

var replayCmd = &cobra.Command{
	Use:   "replay <script>...",
	Short: "Replay gesture scripts against the viewer engine",
	Long: `Runs gesture scripts (.gest) headless against a fresh viewer engine
configured like the viewer window, checking every expect statement.

Example script:
  viewport 800 600
  down 1 at 300 300
  down 2 at 500 300
  move 2 to 700 300
  up 1
  up 2
  expect scale 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVarP(&replayTrace, "trace", "t", false, "print the transform after every statement")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg, "ecgl.replay")

	parser, err := script.NewParser()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	failed := 0
	for _, path := range args {
		s, err := parser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", path, err)
		}
		engine, err := viewer.NewEngine(cfg.Viewer)
		if err != nil {
			return err
		}
		runner := script.NewRunner(engine, logger.Named(path))
		if replayTrace {
			runner.Trace = func(st script.Step) {
				tap := ""
				if st.Tap {
					tap = " (tap)"
				}
				fmt.Fprintf(out, "%4d  %-28s %s [%s]%s\n", st.Pos.Line, st.Statement, st.Transform, st.Mode, tap)
			}
		}
		if err := runner.Run(cmd.Context(), s); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d statements)\n", path, len(s.Statements))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scripts failed", failed, len(args))
	}
	return nil
}
