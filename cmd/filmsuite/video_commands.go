package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/clips"
	"filmsuite/internal/content"
	"filmsuite/internal/pipeline"
	"filmsuite/internal/timecode"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <video-file>",
		Short: "Store a video upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(c context.Context, p *pipeline.Pipeline) error {
				asset, err := p.Ingest(c, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Stored %s\n", asset.Path)
				fmt.Fprintf(out, "  Name: %s\n", asset.Name)
				fmt.Fprintf(out, "  Key:  %s\n", asset.Key)
				return nil
			})
		},
	}
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "transcribe <video>",
		Short: "Transcribe a video, or print its cached transcript summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(c context.Context, p *pipeline.Pipeline) error {
				var session *pipeline.Session
				if force {
					asset, err := p.Resolve(c, args[0])
					if err != nil {
						return err
					}
					if err := p.InvalidateTranscript(c, asset); err != nil {
						return err
					}
					if session, err = p.OpenAsset(c, asset); err != nil {
						return err
					}
				} else {
					var err error
					if session, err = ctx.selectSession(c, args[0]); err != nil {
						return err
					}
				}
				if jsonOut {
					return writeJSON(cmd, session.Transcript)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Transcript for %s (%s)\n", session.Asset.Name, session.TranscriptSource)
				fmt.Fprintf(out, "  Words:    %d\n", len(strings.Fields(session.Transcript.Text)))
				fmt.Fprintf(out, "  Chapters: %d\n", len(session.Transcript.Chapters))
				categories := session.Transcript.TopCategories(10)
				if len(categories) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(categories))
				for _, category := range categories {
					rows = append(rows, []string{category.Label, strconv.FormatFloat(category.Score, 'f', 2, 64)})
				}
				fmt.Fprintln(out, renderTable([]string{"Category", "Relevance"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Discard the cached transcript and transcribe again")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full transcript as JSON")
	return cmd
}

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	var youtube bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "chapters <video>",
		Short: "List a video's chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(c context.Context, _ *pipeline.Pipeline) error {
				session, err := ctx.selectSession(c, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case youtube && jsonOut:
					return writeJSON(cmd, session.Markers())
				case youtube:
					if markers := session.Markers(); len(markers) > 0 {
						fmt.Fprintln(out, timecode.FormatMarkers(markers))
					}
					return nil
				case jsonOut:
					return writeJSON(cmd, session.Chapters())
				}
				chapters := session.Chapters()
				if len(chapters) == 0 {
					fmt.Fprintln(out, "No chapters detected")
					return nil
				}
				rows := make([][]string, 0, len(chapters))
				for i, chapter := range chapters {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						timecode.ToTimecode(chapter.Start),
						timecode.ToTimecode(chapter.End),
						chapter.Headline,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Start", "End", "Headline"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&youtube, "youtube", false, "Print YouTube chapter markers")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func newClipCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clip <video> [chapter...]",
		Short: "Extract chapter clips",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ordinals, err := parseOrdinals(args[1:])
			if err != nil {
				return err
			}
			if len(ordinals) == 0 && !all {
				return errors.New("specify chapter numbers or --all")
			}
			return ctx.withPipeline(cmd, func(c context.Context, _ *pipeline.Pipeline) error {
				session, err := ctx.selectSession(c, args[0])
				if err != nil {
					return err
				}
				var results []clips.Result
				if all {
					results = session.ExtractAllClips(c)
				} else {
					for _, ordinal := range ordinals {
						clip, err := session.ExtractClip(c, ordinal)
						results = append(results, clips.Result{Ordinal: ordinal, Clip: clip, Err: err})
					}
				}
				return reportClips(cmd, session, results)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Extract every chapter")
	return cmd
}

func reportClips(cmd *cobra.Command, session *pipeline.Session, results []clips.Result) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(results))
	var failures []clips.Result
	for _, result := range results {
		if result.Err != nil {
			failures = append(failures, result)
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(result.Ordinal),
			result.Clip.Chapter.Headline,
			string(result.Clip.Source),
			filepath.Base(result.Clip.Path),
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"#", "Headline", "Source", "File"}, rows, []columnAlignment{alignRight}))
	}
	for _, failure := range failures {
		fmt.Fprintln(out, failureLine(fmt.Sprintf("chapter %d", failure.Ordinal), failure.Err, colorize))
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d clips failed for %s; rerun `filmsuite clip` with just those chapters", len(failures), len(results), session.Asset.Name)
	}
	return nil
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "generate <video> [kind...]",
		Short: "Generate content from the transcript",
		Long: "Generate content from the transcript. Kinds: " +
			strings.Join(kindNames(), ", ") + ". Without kinds every kind is generated.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args[1:])
			if err != nil {
				return err
			}
			return ctx.withPipeline(cmd, func(c context.Context, _ *pipeline.Pipeline) error {
				session, err := ctx.selectSession(c, args[0])
				if err != nil {
					return err
				}
				results := make([]content.Result, 0, len(kinds))
				for _, kind := range kinds {
					if force {
						results = append(results, session.Regenerate(c, kind))
					} else {
						results = append(results, session.Generate(c, kind))
					}
				}
				return reportContent(cmd, session, results, true)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Discard cached text and generate again")
	return cmd
}

func reportContent(cmd *cobra.Command, session *pipeline.Session, results []content.Result, printText bool) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	var failed []string
	for _, result := range results {
		if result.Present && printText {
			sectionHeader(out, result.Kind.Label(), colorize)
			fmt.Fprintln(out, result.Text)
			fmt.Fprintln(out)
		}
		if result.Err == nil {
			continue
		}
		if result.Present {
			fmt.Fprintln(out, paint(ansiYellow, fmt.Sprintf("  %s: not cached: %v", result.Kind, result.Err), colorize))
			continue
		}
		fmt.Fprintln(out, failureLine(string(result.Kind), result.Err, colorize))
		failed = append(failed, string(result.Kind))
	}
	if len(failed) > 0 {
		return fmt.Errorf("generation failed for %s; retry with `filmsuite generate %s %s`",
			strings.Join(failed, ", "), session.Asset.Name, strings.Join(failed, " "))
	}
	return nil
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <video> <kind>",
		Short: "Print cached generated content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := content.ParseKind(args[1])
			if err != nil {
				return err
			}
			return ctx.withPipeline(cmd, func(c context.Context, p *pipeline.Pipeline) error {
				asset, err := p.Find(artifacts.VideoName(args[0]))
				if err != nil {
					return err
				}
				text, found, err := p.Content(asset, kind)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("no %s for %s yet; run `filmsuite generate %s %s`", kind.Label(), asset.Name, asset.Name, kind)
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <video>",
		Short: "Package every artifact into a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(c context.Context, p *pipeline.Pipeline) error {
				asset, err := p.Resolve(c, args[0])
				if err != nil {
					return err
				}
				pkg, err := p.Export(c, asset)
				if err != nil {
					return err
				}
				printPackage(cmd, pkg.Path, pkg.Transcript, len(pkg.Clips), pkg.Contents)
				return nil
			})
		},
	}
}

func printPackage(cmd *cobra.Command, path string, transcript bool, clipCount int, kinds []content.Kind) {
	out := cmd.OutOrStdout()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, string(kind))
	}
	if len(names) == 0 {
		names = append(names, "none")
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	fmt.Fprintf(out, "  Transcript: %s\n", yesNo(transcript))
	fmt.Fprintf(out, "  Clips:      %d\n", clipCount)
	fmt.Fprintf(out, "  Content:    %s\n", strings.Join(names, ", "))
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var withClips bool
	var withExport bool
	var kindFlags []string

	cmd := &cobra.Command{
		Use:   "run <video>...",
		Short: "Transcribe, extract clips, generate content and export in one session per video",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(kindFlags)
			if err != nil {
				return err
			}
			return ctx.withPipeline(cmd, func(c context.Context, _ *pipeline.Pipeline) error {
				var problems []error
				for _, arg := range args {
					session, err := ctx.selectSession(c, arg)
					if err != nil {
						fmt.Fprintln(cmd.OutOrStdout(), failureLine(arg, err, shouldColorize(cmd.OutOrStdout())))
						problems = append(problems, err)
						continue
					}
					problems = append(problems, runSession(c, cmd, session, withClips, withExport, kinds)...)
				}
				return errors.Join(problems...)
			})
		},
	}
	cmd.Flags().BoolVar(&withClips, "clips", true, "Extract every chapter clip")
	cmd.Flags().BoolVar(&withExport, "export", true, "Write an export archive at the end")
	cmd.Flags().StringSliceVar(&kindFlags, "kinds", nil, "Content kinds to generate (default all)")
	return cmd
}

func runSession(c context.Context, cmd *cobra.Command, session *pipeline.Session, withClips, withExport bool, kinds []content.Kind) []error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "Session %s for %s (transcript %s, %d chapters)\n",
		session.ID, session.Asset.Name, session.TranscriptSource, len(session.Chapters()))

	var problems []error
	if withClips {
		sectionHeader(out, "Clips", colorize)
		if err := reportClips(cmd, session, session.ExtractAllClips(c)); err != nil {
			problems = append(problems, err)
		}
	}
	if len(kinds) > 0 {
		sectionHeader(out, "Content", colorize)
		results := session.GenerateAll(c, kinds)
		for _, result := range results {
			if result.Present {
				fmt.Fprintf(out, "  %s: %s\n", result.Kind, result.Source)
			}
		}
		if err := reportContent(cmd, session, results, false); err != nil {
			problems = append(problems, err)
		}
	}
	if withExport {
		sectionHeader(out, "Export", colorize)
		pkg, err := session.Export(c)
		if err != nil {
			problems = append(problems, err)
		} else {
			printPackage(cmd, pkg.Path, pkg.Transcript, len(pkg.Clips), pkg.Contents)
		}
	}
	return problems
}

func kindNames() []string {
	kinds := content.Kinds()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, string(kind))
	}
	return names
}
