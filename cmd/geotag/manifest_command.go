package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"geotag/internal/manifest"
	"geotag/internal/services"
)

func newManifestCommand(_ *commandContext) *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:         "manifest DIR",
		Short:       "Show the frame catalog of an output directory",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if _, err := os.Stat(filepath.Join(dir, manifest.FileName)); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return services.Wrap(services.ErrNotFound, "manifest", "open", fmt.Sprintf("no %s in %s", manifest.FileName, dir), err)
				}
				return fmt.Errorf("stat manifest: %w", err)
			}

			store, err := manifest.Open(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.LatestRun(cmd.Context())
			if err != nil {
				if errors.Is(err, manifest.ErrNoRuns) {
					return services.Wrap(services.ErrNotFound, "manifest", "latest run", dir, err)
				}
				return err
			}
			frames, err := store.Frames(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			finished := "in progress"
			if run.FinishedAt != nil {
				finished = run.FinishedAt.Local().Format(time.DateTime)
			}
			summary := [][]string{
				{"Run", run.ID},
				{"Video", run.Video},
				{"Captions", run.Captions},
				{"Every", strconv.Itoa(run.Every)},
				{"Match", run.MatchMode},
				{"Encoding", run.Encoding},
				{"Started", run.StartedAt.Local().Format(time.DateTime)},
				{"Finished", finished},
				{"Frames read", strconv.Itoa(run.FramesRead)},
				{"Written", strconv.Itoa(run.Written)},
				{"Failures", strconv.Itoa(run.Failures)},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, summary, nil))

			rows := make([][]string, 0, len(frames))
			for _, f := range frames {
				if failedOnly && f.Status == manifest.StatusWritten {
					continue
				}
				file := f.File
				if file == "" {
					file = "-"
				}
				rows = append(rows, []string{
					strconv.Itoa(f.FrameIndex),
					file,
					strconv.Itoa(f.CaptionIndex),
					formatOffset(f.Position),
					formatCoordinate(f.Latitude),
					formatCoordinate(f.Longitude),
					formatCoordinate(f.Altitude),
					string(f.Status),
					f.Error,
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No frames to show")
				return nil
			}
			headers := []string{"Frame", "File", "Caption", "Position", "Latitude", "Longitude", "Altitude", "Status", "Error"}
			aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only list frames that were not fully written")
	return cmd
}

func formatCoordinate(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
