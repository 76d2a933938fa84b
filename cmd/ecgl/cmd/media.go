package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Manage uploaded ECG images",
	Long:  `Commands for the blob store in the data dir that holds uploaded strips.`,
}

var mediaUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload images under the configured user",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMediaUpload,
}

var mediaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured user's uploads",
	Args:  cobra.NoArgs,
	RunE:  runMediaList,
}

var mediaRemoveCmd = &cobra.Command{
	Use:   "rm <name>...",
	Short: "Delete uploads by name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMediaRemove,
}

func init() {
	rootCmd.AddCommand(mediaCmd)
	mediaCmd.AddCommand(mediaUploadCmd)
	mediaCmd.AddCommand(mediaListCmd)
	mediaCmd.AddCommand(mediaRemoveCmd)
}

func runMediaUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStack(ctx, cmd, "ecgl.media")
	if err != nil {
		return err
	}
	for _, file := range args {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("error opening %s: %w", file, err)
		}
		url, err := st.blobs.Upload(ctx, f, path.Join(st.cfg.User, filepath.Base(file)))
		f.Close()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", file, url)
	}
	return nil
}

func runMediaList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStack(ctx, cmd, "ecgl.media")
	if err != nil {
		return err
	}
	blobs, err := st.blobs.List(ctx, st.cfg.User+"/")
	if err != nil {
		return err
	}
	for _, b := range blobs {
		fmt.Fprintf(cmd.OutOrStdout(), "%-40s %8d  %s\n", b.Name, b.Size, b.URL)
	}
	return nil
}

func runMediaRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStack(ctx, cmd, "ecgl.media")
	if err != nil {
		return err
	}
	for _, name := range args {
		if err := st.blobs.Delete(ctx, path.Join(st.cfg.User, name)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
	}
	return nil
}
