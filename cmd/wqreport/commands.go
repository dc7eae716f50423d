package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/loader"
	"github.com/couchcryptid/water-quality-etl/internal/observability"
	"github.com/couchcryptid/water-quality-etl/internal/pipeline"
	"github.com/couchcryptid/water-quality-etl/internal/render"
	"github.com/couchcryptid/water-quality-etl/internal/table"
)

type options struct {
	file     string
	category string
	format   string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "wqreport",
		Short:         "Classify water-quality samples and export the results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "sample file to load (required)")
	root.PersistentFlags().StringVarP(&opts.category, "category", "c", string(domain.Compliance), "analysis category")
	root.PersistentFlags().StringVarP(&opts.format, "format", "o", formatJSON, "output format: json, csv, yaml or png (chart only)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log load progress to stderr")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(
		newRecordsCmd(opts),
		newGroupsCmd(opts),
		newChartCmd(opts),
		newSummaryCmd(opts),
	)
	return root
}

func newRecordsCmd(opts *options) *cobra.Command {
	var query, field, value string

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Print the classified records of one category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := table.ParseField(field)
			if err != nil {
				return err
			}
			p, c, err := loadCategory(cmd, opts)
			if err != nil {
				return err
			}
			records, err := p.Records(c, pipeline.Query{Text: query, Field: f, Value: value})
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.format, recordRows(records))
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive text search over displayed columns")
	cmd.Flags().StringVar(&field, "field", "", "filter field: location, analyte or verdict")
	cmd.Flags().StringVar(&value, "value", "", "filter value; None shows every row")
	return cmd
}

func newGroupsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the chart groups of one category in selection order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, c, err := loadCategory(cmd, opts)
			if err != nil {
				return err
			}
			snap, err := p.Snapshot(c)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.format, groupRows(snap))
		},
	}
}

func newChartCmd(opts *options) *cobra.Command {
	var panel int

	cmd := &cobra.Command{
		Use:   "chart [key]",
		Short: "Render one chart group; the default group when no key is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, c, err := loadCategory(cmd, opts)
			if err != nil {
				return err
			}
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				groups, err := p.Groups(c)
				if err != nil {
					return err
				}
				if groups.Default == "" {
					return fmt.Errorf("category %s has no chart groups", c)
				}
				key = groups.Default
			}
			chart, err := p.Chart(c, key)
			if err != nil {
				return err
			}
			switch opts.format {
			case formatPNG:
				return render.PNG(cmd.OutOrStdout(), chart, render.Options{Panel: panel})
			case formatCSV:
				return write(cmd.OutOrStdout(), opts.format, pointRows(chart))
			}
			return write(cmd.OutOrStdout(), opts.format, chart)
		},
	}
	cmd.Flags().IntVar(&panel, "panel", 0, "panel to draw with --format png; pair charts have one panel per location")
	return cmd
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print record and verdict counts for every category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := load(cmd, opts, nil)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.format, summaryRows(p.Summary()))
		},
	}
}

func loadCategory(cmd *cobra.Command, opts *options) (*pipeline.Pipeline, domain.Category, error) {
	prof, err := domain.LookupProfile(opts.category)
	if err != nil {
		return nil, "", err
	}
	p, err := load(cmd, opts, []domain.Category{prof.Category})
	if err != nil {
		return nil, "", err
	}
	return p, prof.Category, nil
}

// load runs one reload of the file. Unlike the service, a source that cannot
// be read is an error here.
func load(cmd *cobra.Command, opts *options, categories []domain.Category) (*pipeline.Pipeline, error) {
	if err := checkFormat(opts.format); err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())

	p := pipeline.New(loader.New(logger), nil, logger, metrics, 1)
	report, err := p.Reload(context.Background(), opts.file, categories)
	if err != nil {
		return nil, err
	}
	for _, c := range report.Categories {
		if c.SourceError != "" {
			return nil, errors.New(c.SourceError)
		}
	}
	return p, nil
}
