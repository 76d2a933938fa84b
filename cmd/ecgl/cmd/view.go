package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ecglearn/internal/ui"
	"github.com/OpenTraceLab/ecglearn/internal/watch"
	"github.com/OpenTraceLab/ecglearn/pkg/backend"
)

var (
	viewWatch  bool
	viewDark   bool
	viewUpload bool
)

var viewCmd = &cobra.Command{
	Use:   "view [image]",
	Short: "View an ECG image in the interactive viewer",
	Long: `Opens an image (png, jpeg, gif, bmp, webp) in a Gio window.

Controls:
  Pinch / Scroll Wheel  - Zoom around the fingers / cursor
  Drag                  - Pan (only when zoomed in)
  Tap / Click           - Cycle zoom 1x -> 2x -> 3x -> 1x
  + / -                 - Zoom in / out
  R                     - Rotate 90°
  0                     - Reset view
  F                     - Toggle fullscreen
  Escape                - Leave fullscreen
  L                     - Toggle log pane`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().BoolVarP(&viewWatch, "watch", "w", false, "reload the image when the file changes")
	viewCmd.Flags().BoolVar(&viewDark, "dark", false, "dark theme")
	viewCmd.Flags().BoolVar(&viewUpload, "upload", false, "enable uploading to the data dir blob store")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg, "ecgl.ui")

	opts := ui.Options{
		Config:       cfg.Viewer,
		Logger:       logger,
		DarkMode:     viewDark,
		UploadPrefix: cfg.User,
	}
	if len(args) == 1 {
		opts.Source = args[0]
		if viewWatch {
			w, err := watch.NewWatcher(nil, args[0])
			if err != nil {
				return fmt.Errorf("error watching %s: %w", args[0], err)
			}
			defer w.Close()
			opts.Watcher = w
		}
	} else if viewWatch {
		return fmt.Errorf("--watch needs an image argument")
	}
	if viewUpload {
		blobs, err := backend.NewDirBlobs(cfg.BlobDir())
		if err != nil {
			return err
		}
		opts.Blobs = blobs
	}

	logger.Info("starting viewer", "source", opts.Source, "watch", viewWatch)
	return ui.Run(opts)
}
