package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vizkit/adapters/excel"
	"vizkit/app"
	"vizkit/domain/chart"
	domainStats "vizkit/domain/stats"
	"vizkit/internal"
	"vizkit/internal/config"
	internalDataset "vizkit/internal/dataset"
	"vizkit/internal/format"
	"vizkit/internal/testkit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	envFile  string
	logLevel string
	sheet    string
	noHeader bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:           "vizkit",
		Short:         "Render datasets as charts and summarize them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "Environment file to load when present")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "ERROR|WARN|INFO|DEBUG|TRACE (default: LOG_LEVEL or INFO)")
	rootCmd.PersistentFlags().StringVar(&g.sheet, "sheet", "", "XLSX sheet to read (default: first sheet)")
	rootCmd.PersistentFlags().BoolVar(&g.noHeader, "no-header", false, "Treat the first row as data; columns become col0..colN")

	rootCmd.AddCommand(
		newRenderCmd(&g),
		newStatsCmd(&g),
		newTypesCmd(&g),
		newSampleCmd(),
	)
	return rootCmd
}

// newVisualizer loads the environment and config and wires a visualizer
func newVisualizer(g *globalFlags, errOut io.Writer) (*app.Visualizer, error) {
	if g.envFile != "" {
		if err := godotenv.Load(g.envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", g.envFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if g.logLevel != "" {
		level = g.logLevel
	}
	logger := internal.NewLoggerTo(errOut, internal.ParseLogLevel(level))

	readerCfg := excel.DefaultReaderConfig()
	readerCfg.Sheet = g.sheet
	if g.noHeader {
		readerCfg.Header = excel.HeaderAbsent
	}

	return app.NewVisualizer(app.Options{
		Config: cfg,
		Reader: excel.NewDataReader(readerCfg, logger),
		Logger: logger,
	})
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	var (
		chartType  string
		configFile string
		outFile    string
		fields     chart.FieldMapping
		title      string
		width      float64
		height     float64
		sortDir    string
		trend      bool
		steps      []string
	)

	cmd := &cobra.Command{
		Use:   "render [data-file]",
		Short: "Render a dataset file as an SVG chart",
		Long: `Render a CSV, TSV, JSON or XLSX file as a chart and write it as SVG.

Settings come from a TOML chart file (--config) and are overridden by flags.

Example: vizkit render sales.csv --type bar --x region --y revenue --out sales.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viz, err := newVisualizer(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer viz.Close()

			cfg := chart.NewConfig()
			if configFile != "" {
				if cfg, err = config.LoadChartFile(configFile, nil); err != nil {
					return err
				}
			}
			if !fields.IsZero() {
				cfg.Fields = fields
			}
			if title != "" {
				cfg.Title = title
			}
			if width > 0 || height > 0 {
				dims := chart.DefaultDimensions()
				if width > 0 {
					dims.Width = width
				}
				if height > 0 {
					dims.Height = height
				}
				cfg.Dimensions = dims
			}
			if sortDir != "" {
				cfg.Visual.SortDirection = sortDir
			}
			if trend {
				cfg.Visual.TrendLine = true
			}

			process, err := parseSteps(steps)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outFile != "" && outFile != "-" {
				f, err := os.Create(outFile)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outFile, err)
				}
				defer f.Close()
				out = f
			}

			req := app.RenderRequest{DataPath: args[0], Type: chartType, Chart: cfg, Process: process}
			if req.Type == "" && cfg.Type == "" {
				req.Type = "bar"
			}
			return viz.Render(cmd.Context(), req, out)
		},
	}

	cmd.Flags().StringVarP(&chartType, "type", "t", "", "Chart type (see 'vizkit types'); overrides the config file")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "TOML chart config file")
	cmd.Flags().StringVarP(&outFile, "out", "o", "-", "Output SVG file, - for stdout")
	cmd.Flags().StringVar(&fields.X, "x", "", "Field for the x channel")
	cmd.Flags().StringVar(&fields.Y, "y", "", "Field for the y channel")
	cmd.Flags().StringVar(&fields.Color, "color", "", "Field for the color channel")
	cmd.Flags().StringVar(&fields.Size, "size", "", "Field for the size channel")
	cmd.Flags().StringVar(&title, "title", "", "Chart title")
	cmd.Flags().Float64Var(&width, "width", 0, "Chart width (default: VIZ_WIDTH or 800)")
	cmd.Flags().Float64Var(&height, "height", 0, "Chart height (default: VIZ_HEIGHT or 400)")
	cmd.Flags().StringVar(&sortDir, "sort", "", "Sort bars by value: asc|desc")
	cmd.Flags().BoolVar(&trend, "trend", false, "Draw a least squares trend line on scatter charts")
	cmd.Flags().StringSliceVar(&steps, "process", nil, "Processing steps before drawing: clean,outliers,normalize")
	return cmd
}

// parseSteps turns --process values into options; no steps means no processing
func parseSteps(steps []string) (*internalDataset.ProcessOptions, error) {
	if len(steps) == 0 {
		return nil, nil
	}
	var opts internalDataset.ProcessOptions
	for _, step := range steps {
		switch strings.ToLower(strings.TrimSpace(step)) {
		case "clean":
			opts.Clean = true
		case "outliers":
			opts.HandleOutliers = true
		case "normalize":
			opts.Normalize = true
		case "all":
			opts = internalDataset.DefaultProcessOptions()
		default:
			return nil, fmt.Errorf("unknown processing step %q (use clean, outliers, normalize or all)", step)
		}
	}
	return &opts, nil
}

func newStatsCmd(g *globalFlags) *cobra.Command {
	var (
		fields    []string
		histogram string
		bins      int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "stats [data-files...]",
		Short: "Summarize the numeric fields of dataset files",
		Long: `Print count, mean, median, spread, quartiles and shape for each numeric field.

Files are loaded concurrently. With --histogram, the distribution of one field
is printed as well.

Example: vizkit stats sales.csv costs.xlsx --fields revenue,margin`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viz, err := newVisualizer(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer viz.Close()

			datasets, err := viz.LoadAll(cmd.Context(), args...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report := make(map[string][]app.FieldStats, len(args))
			for i, ds := range datasets {
				stats, err := viz.Describe(ds, fields...)
				if err != nil {
					return err
				}
				report[args[i]] = stats
				if !asJSON {
					printStats(out, args[i], len(ds), stats)
				}

				if histogram == "" {
					continue
				}
				cleaned, err := viz.Processor().Clean(ds)
				if err != nil {
					return err
				}
				dist, err := viz.Processor().FrequencyDistribution(cleaned, histogram, bins)
				if err != nil {
					return err
				}
				if !asJSON {
					printDistribution(out, histogram, dist)
				}
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Fields to summarize (default: every numeric field)")
	cmd.Flags().StringVar(&histogram, "histogram", "", "Field to print a frequency distribution for")
	cmd.Flags().IntVar(&bins, "bins", 0, "Histogram bins (default: VIZ_HISTOGRAM_BINS or 10)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summaries as JSON")
	return cmd
}

func printStats(w io.Writer, source string, records int, stats []app.FieldStats) {
	fmt.Fprintf(w, "%s (%s records)\n", source, format.Int(records))
	if len(stats) == 0 {
		fmt.Fprintln(w, "  no numeric fields")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "field\tcount\tmean\tmedian\tstd dev\tmin\tq1\tq3\tmax\tskew\tkurtosis\t")
	for _, s := range stats {
		sum := s.Summary
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			s.Field, format.Int(sum.Count),
			format.Grouped(sum.Mean, 2), format.Grouped(sum.Median, 2), format.Grouped(sum.StdDev, 2),
			format.Grouped(sum.Min, 2), format.Grouped(sum.Q1, 2), format.Grouped(sum.Q3, 2), format.Grouped(sum.Max, 2),
			format.Fixed(s.Shape.Skewness, 3), format.Fixed(s.Shape.Kurtosis, 3))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func printDistribution(w io.Writer, field string, dist domainStats.Distribution) {
	fmt.Fprintf(w, "%s distribution\n", field)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if dist.Numeric {
		for i, b := range dist.Bins {
			closing := ")"
			if i == len(dist.Bins)-1 {
				closing = "]"
			}
			fmt.Fprintf(tw, "  [%s, %s%s\t%s\n", format.SI(b.Lower, 2), format.SI(b.Upper, 2), closing, format.Int(b.Count))
		}
	} else {
		for _, c := range dist.Categories {
			fmt.Fprintf(tw, "  %s\t%s\n", format.Value(c.Value), format.Int(c.Count))
		}
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func newTypesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered chart types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viz, err := newVisualizer(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer viz.Close()
			for _, name := range viz.Registry().ListTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newSampleCmd() *cobra.Command {
	var (
		customers int
		seed      uint64
		formatStr string
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a generated e-commerce orders dataset",
		Long: `Generate a deterministic orders dataset to try the charts on.

Example: vizkit sample --customers 200 --format csv --out orders.csv
         vizkit render orders.csv --type geo --x longitude --y latitude --color channel`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := excel.ParseFormat(formatStr)
			if !ok {
				return fmt.Errorf("unsupported format %q (use csv, tsv, json or xlsx)", formatStr)
			}
			cfg := testkit.DefaultShoppingConfig()
			cfg.CustomerCount = customers
			cfg.Seed = seed
			ds := testkit.NewShoppingDataGenerator(cfg).Generate()

			out := cmd.OutOrStdout()
			if outFile != "" && outFile != "-" {
				file, err := os.Create(outFile)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outFile, err)
				}
				defer file.Close()
				out = file
			}
			return excel.WriteDataset(out, ds, f)
		},
	}

	cmd.Flags().IntVar(&customers, "customers", 100, "Number of customers; each places one or more orders")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().StringVarP(&formatStr, "format", "f", "csv", "Output format: csv|tsv|json|xlsx")
	cmd.Flags().StringVarP(&outFile, "out", "o", "-", "Output file, - for stdout")
	return cmd
}
