package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/repolens/internal/chart"
	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/normalize"
	"github.com/verte-zerg/repolens/internal/query"
	"github.com/verte-zerg/repolens/internal/report"
	"github.com/verte-zerg/repolens/internal/store"
	"github.com/verte-zerg/repolens/internal/watchlist"
)

var (
	fetchMode    string
	fetchOwner   string
	fetchProject string
	fetchWidth   int
	fetchChart   string
	fetchColor   bool
	fetchFrom    string
	fetchOut     string

	showPlain bool
	showWidth int
	showChart string

	historyLimit int
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [identifier...]",
		Short: "Fetch analytics and print a report",
		Long: "Fetch analytics for accounts, owner/project pairs or URLs and print a plain report.\n" +
			"Without --mode each identifier is classified by its shape.",
		RunE: runFetchCmd,
	}
	cmd.Flags().StringVar(&fetchMode, "mode", "", "treat identifiers as account, project or url")
	cmd.Flags().StringVar(&fetchOwner, "owner", "", "project owner (with --project)")
	cmd.Flags().StringVar(&fetchProject, "project", "", "project name (with --owner)")
	cmd.Flags().IntVar(&fetchWidth, "width", 0, "report width (default: terminal width)")
	cmd.Flags().StringVar(&fetchChart, "chart", defaultChart, "language chart style (pie or bar)")
	cmd.Flags().BoolVar(&fetchColor, "color", false, "color the report (default: when writing to a terminal)")
	cmd.Flags().StringVar(&fetchFrom, "from", "", "read identifiers from a watchlist file")
	cmd.Flags().StringVar(&fetchOut, "out", "", "write the report to a file")
	return cmd
}

type fetchTarget struct {
	mode query.Mode
	in   query.Input
	raw  string
}

func fetchTargets(cmd *cobra.Command, args []string) ([]fetchTarget, error) {
	targets := []fetchTarget{}
	if fetchOwner != "" || fetchProject != "" {
		targets = append(targets, fetchTarget{
			mode: query.ModeProject,
			in:   query.Input{Owner: fetchOwner, Project: fetchProject},
			raw:  fetchOwner + "/" + fetchProject,
		})
	}
	identifiers := append([]string{}, args...)
	if fetchFrom != "" {
		listed, err := watchlist.Load(fetchFrom)
		if err != nil {
			return nil, err
		}
		identifiers = append(identifiers, listed...)
	}
	var forced *query.Mode
	if cmd.Flags().Changed("mode") {
		mode, err := query.ParseMode(fetchMode)
		if err != nil {
			return nil, err
		}
		forced = &mode
	}
	for _, id := range identifiers {
		mode, in := query.Guess(id)
		if forced != nil {
			mode = *forced
			in = inputFor(mode, id)
		}
		targets = append(targets, fetchTarget{mode: mode, in: in, raw: strings.TrimSpace(id)})
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("nothing to fetch: pass an identifier, --owner/--project or --from")
	}
	return targets, nil
}

// inputFor places id in the field of mode, leaving validation to the resolver.
func inputFor(mode query.Mode, id string) query.Input {
	switch mode {
	case query.ModeProject:
		owner, project, _ := strings.Cut(strings.TrimSpace(id), "/")
		return query.Input{Owner: owner, Project: project}
	case query.ModeURL:
		return query.Input{URL: id}
	default:
		return query.Input{Account: id}
	}
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	targets, err := fetchTargets(cmd, args)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "chart", &fetchChart, a.cfg.View.Chart)
	style, err := chart.ParseLanguageStyle(fetchChart)
	if err != nil {
		return err
	}
	opts := a.reportOptions(cmd, fetchWidth, style, fetchOut == "")
	if cmd.Flags().Changed("color") {
		opts.Color = fetchColor
	}

	ctx, cancel := signalContext()
	defer cancel()

	var models []*model.ChartModel
	var lastErr error
	for _, t := range targets {
		cm, err := a.fetchOne(ctx, t)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return fmt.Errorf("interrupted")
			}
			if len(targets) > 1 {
				title, msg := model.Describe(err)
				logErrf("%s: %s: %s\n", t.raw, title, msg)
			}
			continue
		}
		models = append(models, cm)
	}
	if len(targets) == 1 && lastErr != nil {
		return userError(lastErr)
	}

	render := func(w io.Writer) error {
		for i, cm := range models {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := report.Write(w, cm, opts); err != nil {
				return err
			}
		}
		return nil
	}
	if len(models) > 0 {
		if fetchOut != "" {
			if err := report.WriteFile(fetchOut, render); err != nil {
				return err
			}
			logErrf("Wrote %s\n", fetchOut)
		} else if err := render(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if failed := len(targets) - len(models); failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(targets))
	}
	return nil
}

// fetchOne resolves, fetches, stores and normalizes one target, logging the search either way.
func (a *app) fetchOne(ctx context.Context, t fetchTarget) (*model.ChartModel, error) {
	entry := model.SearchEntry{Kind: t.mode.Kind(), Identifier: t.raw}
	defer func() {
		entry.CreatedAt = time.Now()
		if _, err := a.store.LogSearch(ctx, entry); err != nil {
			a.logger.Warn("failed to log search", "identifier", entry.Identifier, "err", err)
		}
	}()

	ref, err := a.resolver.Resolve(t.mode, t.in)
	if err != nil {
		entry.ErrorCode = model.CodeName(err)
		return nil, err
	}
	entry.Kind = ref.Kind()
	entry.Identifier = ref.Identifier()

	start := time.Now()
	rec, err := a.client.Fetch(ctx, ref)
	entry.ProcessingTime = time.Since(start)
	if err != nil {
		entry.ErrorCode = model.CodeName(err)
		return nil, err
	}
	cm, err := normalize.Open(rec, time.Now(), normalize.WithHost(a.resolver.Parser.Host()))
	if err != nil {
		entry.ErrorCode = model.CodeName(err)
		return nil, err
	}
	if _, err := a.store.SaveRecord(ctx, rec); err != nil {
		a.logger.Warn("failed to save record", "identifier", rec.Identifier, "err", err)
	}
	entry.Success = true
	return cm, nil
}

func (a *app) reportOptions(cmd *cobra.Command, width int, style chart.LanguageStyle, toTerminal bool) report.Options {
	termWidth, isTerm := stdoutWidth()
	if !cmd.Flags().Changed("width") && isTerm && toTerminal {
		width = termWidth
	}
	color := isTerm && toTerminal
	applyBoolConfig(cmd, "color", &color, a.cfg.View.Color)
	return report.Options{Width: width, Color: color, Style: style}
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the most recent saved result",
		Args:  cobra.NoArgs,
		RunE:  runShowCmd,
	}
	cmd.Flags().BoolVar(&showPlain, "plain", false, "print a plain report instead of opening the viewer")
	cmd.Flags().IntVar(&showWidth, "width", 0, "report width with --plain (default: terminal width)")
	cmd.Flags().StringVar(&showChart, "chart", defaultChart, "language chart style (pie or bar)")
	return cmd
}

func runShowCmd(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	applyStringConfig(cmd, "chart", &showChart, a.cfg.View.Chart)
	style, err := chart.ParseLanguageStyle(showChart)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	rec, err := a.store.LatestRecord(ctx)
	if err != nil && !errors.Is(err, store.ErrNoRecord) {
		return fmt.Errorf("failed to load saved result: %w", err)
	}
	found := err == nil

	if showPlain {
		if !found {
			return fmt.Errorf("no saved result: run a search first")
		}
		cm, err := normalize.Open(rec, time.Now(), normalize.WithHost(a.resolver.Parser.Host()))
		if err != nil {
			return userError(err)
		}
		return report.Write(cmd.OutOrStdout(), cm, a.reportOptions(cmd, showWidth, style, true))
	}

	mode := query.ModeAccount
	if m, err := query.ParseMode(lo.FromPtrOr(a.cfg.View.Mode, defaultMode)); err == nil {
		mode = m
	}
	viewer := a.newViewer(mode, style)
	if found {
		viewer.ShowRecord(rec)
	} else {
		viewer.ShowEmpty(nil)
	}
	return runProgram(viewer)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the search log",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", defaultHistoryLimit, "number of recent searches to list")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("--limit must be > 0")
	}
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	summary, err := a.store.Summary(ctx, historyTop)
	if err != nil {
		return fmt.Errorf("failed to load search summary: %w", err)
	}
	recent, err := a.store.RecentSearches(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load recent searches: %w", err)
	}
	return report.WriteHistory(cmd.OutOrStdout(), summary, recent)
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove saved results",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.store.ClearRecords(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear saved results: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %d saved result(s).\n", n); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
