package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/wordsql/pkg/config"
	"github.com/umputun/wordsql/pkg/constraint"
	"github.com/umputun/wordsql/pkg/generator"
	"github.com/umputun/wordsql/pkg/loader"
	"github.com/umputun/wordsql/pkg/pipeline"
	"github.com/umputun/wordsql/pkg/schema"
	"github.com/umputun/wordsql/pkg/sqlgen"
)

type options struct {
	Table     string   `short:"t" long:"table" description:"table name"`
	Values    []string `short:"v" long:"value" description:"column spec, name:type:constraint"`
	Wordlists []string `short:"w" long:"wordlist" description:"wordlist spec, column:path:transform"`
	Dbms      string   `short:"d" long:"dbms" description:"output dialect" choice:"generic" choice:"sqlite" choice:"postgres" choice:"mysql"`
	Output    string   `short:"o" long:"output" description:"output file [default: results.txt]"`

	Conf      string `short:"c" long:"conf" env:"WORDSQL_CONF" description:"job file, yaml or toml"`
	DB        string `long:"db" env:"WORDSQL_DB" description:"database connection string to load rows into"`
	NoOutput  bool   `long:"no-output" description:"don't write output file, database only"`
	PerColumn bool   `long:"per-column" description:"track unique values per column"`

	Version bool `long:"version" description:"show version"`
	Dbg     bool `long:"dbg" description:"debug mode"`
}

var revision = "latest"

func main() {
	fmt.Printf("wordsql %s\n", revision)

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		os.Exit(1)
	}
	if opts.Version {
		os.Exit(0) // already printed
	}
	setupLog(opts.Dbg)

	if err := run(opts); err != nil {
		if opts.Dbg {
			log.Panicf("[ERROR] %v", err)
		}
		fmt.Printf("failed, %v\n", formatErrorString(err.Error()))
		os.Exit(1)
	}
}

func run(opts options) error {
	st := time.Now()
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	job, err := config.Load(opts.Conf, &config.Overrides{
		Table:     opts.Table,
		Output:    opts.Output,
		Dialect:   opts.Dbms,
		DB:        opts.DB,
		PerColumn: opts.PerColumn,
		Columns:   opts.Values,
		Wordlists: opts.Wordlists,
	})
	if err != nil {
		return fmt.Errorf("can't load job: %w", err)
	}
	if opts.NoOutput && job.DB == "" {
		return fmt.Errorf("no output and no database, nothing to do")
	}

	sch, err := schema.Parse(job.Columns, job.Wordlists)
	if err != nil {
		return fmt.Errorf("can't parse schema: %w", err)
	}
	dialect, err := sqlgen.ByName(job.Dialect)
	if err != nil {
		return err
	}

	sources, closeSources, err := pipeline.OpenFiles(sch.Paths())
	if err != nil {
		return err
	}
	defer closeSources() // nolint ro files

	var sinks []generator.Sink
	if job.DB != "" {
		db, dbErr := loader.New(ctx, job.DB)
		if dbErr != nil {
			return fmt.Errorf("can't open database: %w", dbErr)
		}
		defer db.Close() // nolint
		sinks = append(sinks, db)
	}

	// output file created last, all configuration problems reported before it exists
	var fileSink *generator.WriterSink
	if !opts.NoOutput {
		fh, fErr := os.Create(job.Output)
		if fErr != nil {
			return fmt.Errorf("can't create output file %s: %w", job.Output, fErr)
		}
		defer fh.Close() // nolint
		fileSink = generator.NewWriterSink(fh)
		sinks = append([]generator.Sink{fileSink}, sinks...)
	}

	scope := constraint.Shared
	if job.PerColumn {
		scope = constraint.PerColumn
	}
	gen := generator.Generator{
		Table:   job.Table,
		Schema:  sch,
		Dialect: dialect,
		Pipeline: &pipeline.Pipeline{
			Bindings: sch.Bindings,
			Checker:  constraint.NewTracker(scope),
			OnReject: rejectReporter(os.Stdout),
		},
		Sinks: sinks,
	}

	stats, genErr := gen.Run(ctx, sources)
	if fileSink != nil {
		// flush rows accepted before a failure too
		if err = fileSink.Flush(); err != nil && genErr == nil {
			genErr = fmt.Errorf("can't write output file %s: %w", job.Output, err)
		}
	}
	if genErr != nil {
		return genErr
	}

	log.Printf("[INFO] completed table %s, lines: %d, rows: %d, rejected: %d in %v", job.Table,
		stats.Lines, stats.Accepted, stats.Rejected, time.Since(st).Truncate(time.Millisecond))
	if !opts.NoOutput {
		log.Printf("[INFO] statements written to %s", job.Output)
	}
	return nil
}

// rejectReporter prints advisory message for every dropped row
func rejectReporter(w io.Writer) func(pipeline.Rejection) {
	colorizer := color.New(color.FgYellow).SprintfFunc()
	return func(r pipeline.Rejection) {
		msg := colorizer("rejected value %q for column %s (%s), line %d", r.Value, r.Column.Name, r.Column.Constraint, r.Line)
		fmt.Fprintln(w, msg) // nolint
	}
}

func formatErrorString(input string) string {
	headerRe := regexp.MustCompile(`(.*: \d+ errors? occurred:)`)
	headerMatch := headerRe.FindStringSubmatch(input)

	if len(headerMatch) == 0 {
		return input
	}

	errorsRe := regexp.MustCompile(`\* (.+)`)
	errorsMatches := errorsRe.FindAllStringSubmatch(input, -1)

	formattedErrors := make([]string, 0, len(errorsMatches))
	for _, match := range errorsMatches {
		formattedErrors = append(formattedErrors, strings.TrimSpace(match[1]))
	}

	formattedString := fmt.Sprintf("%s\n", strings.TrimSpace(headerMatch[1]))
	for i, err := range formattedErrors {
		formattedString += fmt.Sprintf("   [%d] %s\n", i, err)
	}

	return formattedString
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
