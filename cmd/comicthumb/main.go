// Command comicthumb generates a JPEG thumbnail for a comic archive.
//
// It is the command-line boundary for shell integration: a thumbnail
// host invokes it with an archive path and an output path and inspects
// the exit code.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/meigma/comicfs"
)

// Exit codes reported to the thumbnail host.
const (
	exitOpenFailed  = 2
	exitUnsupported = 3
	exitThumbFailed = 4
	exitWriteFailed = 5
)

// exitError carries a distinct process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func main() {
	var (
		size    int
		verbose bool
	)

	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: false,
	})
	logger := slog.New(handler)

	root := &cobra.Command{
		Use:   "comicthumb <archive> <output.jpg>",
		Short: "Generate a JPEG thumbnail for a comic archive",
		Long: `Generate a JPEG thumbnail for a CBZ, CBR, or CBW comic archive.

The manifest-declared thumbnail is used when the archive has one;
otherwise the first page is decoded and scaled down.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				handler.SetLevel(charmlog.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), logger, args[0], args[1], size)
		},
	}
	root.Flags().IntVarP(&size, "size", "s", comicfs.DefaultThumbnailSize, "bounding box for the longer edge, in pixels")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("thumbnail generation failed", "error", err)
		var xerr *exitError
		if errors.As(err, &xerr) {
			os.Exit(xerr.code)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, archivePath, outputPath string, size int) error {
	a, err := comicfs.Open(archivePath, comicfs.WithLogger(logger))
	if err != nil {
		code := exitOpenFailed
		if errors.Is(err, comicfs.ErrUnsupportedFormat) {
			code = exitUnsupported
		}
		return &exitError{code: code, err: fmt.Errorf("open %s: %w", archivePath, err)}
	}
	defer a.Close()

	thumb, err := a.Thumbnail(ctx, size)
	if err != nil {
		return &exitError{code: exitThumbFailed, err: fmt.Errorf("thumbnail %s: %w", archivePath, err)}
	}

	if err := os.WriteFile(outputPath, thumb, 0o644); err != nil {
		return &exitError{code: exitWriteFailed, err: err}
	}

	logger.Info("thumbnail written", "path", outputPath, "bytes", len(thumb))
	return nil
}
