package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/content"
	"filmsuite/internal/journal"
	"filmsuite/internal/pipeline"
)

type statusView struct {
	Name             string          `json:"name"`
	Key              string          `json:"key"`
	Upload           string          `json:"upload"`
	TranscriptCached bool            `json:"transcript_cached"`
	TranscriptStale  bool            `json:"transcript_stale"`
	Chapters         int             `json:"chapters"`
	Clips            []int           `json:"clips"`
	MissingClips     []int           `json:"missing_clips"`
	Contents         map[string]bool `json:"contents"`
	Exports          []string        `json:"exports"`
}

func newStatusView(status pipeline.Status) statusView {
	view := statusView{
		Name:             status.Asset.Name,
		Key:              status.Asset.Key,
		Upload:           status.Asset.Path,
		TranscriptCached: status.TranscriptCached,
		TranscriptStale:  status.TranscriptStale,
		Chapters:         status.Chapters,
		Clips:            status.Clips,
		MissingClips:     status.MissingClips(),
		Contents:         make(map[string]bool, len(status.Contents)),
		Exports:          status.Exports,
	}
	for kind, present := range status.Contents {
		view.Contents[string(kind)] = present
	}
	return view
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status <video>",
		Short: "Show which artifacts exist for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(c context.Context, p *pipeline.Pipeline) error {
				asset, err := p.Find(artifacts.VideoName(args[0]))
				if err != nil {
					return err
				}
				status, err := p.Status(asset)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, newStatusView(status))
				}
				renderStatus(cmd, status)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func renderStatus(cmd *cobra.Command, status pipeline.Status) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	rows := [][]string{{"Transcript", yesNo(status.TranscriptCached), fmt.Sprintf("%d chapters", status.Chapters)}}

	clipDetail := fmt.Sprintf("%d of %d", len(status.Clips), status.Chapters)
	if missing := status.MissingClips(); len(missing) > 0 && status.TranscriptCached {
		clipDetail += " (missing " + joinInts(missing) + ")"
	}
	rows = append(rows, []string{"Clips", yesNo(status.Chapters > 0 && len(status.MissingClips()) == 0), clipDetail})

	for _, kind := range content.Kinds() {
		rows = append(rows, []string{kind.Label(), yesNo(status.Contents[kind]), ""})
	}
	exportDetail := ""
	if n := len(status.Exports); n > 0 {
		exportDetail = "latest " + status.Exports[n-1]
	}
	rows = append(rows, []string{"Exports", strconv.Itoa(len(status.Exports)), exportDetail})

	fmt.Fprintf(out, "%s (%s)\n", status.Asset.Name, status.Asset.Path)
	fmt.Fprintln(out, renderTable([]string{"Artifact", "Present", "Detail"}, rows, nil))
	if status.TranscriptStale {
		fmt.Fprintln(out, paint(ansiYellow,
			"warning: the upload is newer than its cached transcript; run `filmsuite transcribe --force` if the video changed", colorize))
	}
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, strconv.Itoa(value))
	}
	return strings.Join(parts, ", ")
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history <video>",
		Short: "Show journaled pipeline outcomes for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return fmt.Errorf("the journal is disabled; set [journal] enabled = true to record history")
			}
			store, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			events, err := store.List(cmd.Context(), artifacts.Key(artifacts.VideoName(args[0])), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, events)
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No history recorded")
				return nil
			}
			rows := make([][]string, 0, len(events))
			for _, event := range events {
				rows = append(rows, []string{
					event.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					event.Component + "." + event.Operation,
					event.Subject,
					event.Outcome,
					event.Duration.Round(time.Millisecond).String(),
					event.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Time", "Operation", "Subject", "Outcome", "Took", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Most recent events to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}
