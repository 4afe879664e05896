// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finquery/finquery/healthcheck"
	"github.com/finquery/finquery/ingest"
	"github.com/finquery/finquery/library"
	"github.com/finquery/finquery/provider"
)

var (
	symbolsFile string
	startDate   string
	endDate     string
	period      string
	interval    string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [symbols...]",
	Short: "Load security metadata, prices, and fundamentals into the library",
	Long: `The ingest sub-command runs the full pipeline for each symbol: resolve
security metadata, fetch end-of-day price history, and load annual balance
sheet, income statement, and cash flow snapshots. All writes are idempotent
upserts, so re-running a failed ingest is always safe.`,
	Run: func(_ *cobra.Command, args []string) {
		runPipeline(args, ingest.VariantFundamentals)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	for _, cmd := range []*cobra.Command{ingestCmd, statsCmd} {
		cmd.Flags().StringVar(&symbolsFile, "symbols-file", "", "CSV file with a symbol column")
		cmd.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&endDate, "end", "", "end date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&period, "period", "1y", "trailing period when no start date is given (1mo 3mo 6mo 1y 2y 5y 10y ytd max)")
		cmd.Flags().StringVar(&interval, "interval", "1d", "bar interval")
	}
}

// runPipeline executes the ingestion pipeline shared by the ingest and
// stats commands.
func runPipeline(args []string, variant ingest.Variant) {
	ctx := context.Background()

	symbols := collectSymbols(args)
	if len(symbols) == 0 {
		log.Fatal().Msg("no symbols given; pass them as arguments, via --symbols-file, or in the config file")
	}

	start, end := resolveDateRange()

	myLibrary, err := library.NewFromDB(ctx, viper.GetString("DBUrl"))
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to library")
	}
	defer myLibrary.Close()

	runner := ingest.NewRunner(myLibrary, provider.NewYahoo(), ingest.Config{
		Symbols:   symbols,
		StartDate: start,
		EndDate:   end,
		Interval:  interval,
		Variant:   variant,
	})

	startTime := time.Now()
	report := runner.Run(ctx)
	runTime := time.Since(startTime)

	failed := report.FailedSymbols()
	log.Info().
		Str("RunTime", durafmt.Parse(runTime).String()).
		Int("Symbols", len(symbols)).
		Int("Failed", len(failed)).
		Int64("RowsWritten", report.RowsWritten()).
		Msg("ingestion finished")

	run := &library.IngestRun{
		ID:               uuid.New(),
		StartedAt:        report.StartTime,
		FinishedAt:       report.EndTime,
		SymbolsRequested: len(symbols),
		SymbolsFailed:    len(failed),
		RowsWritten:      report.RowsWritten(),
	}
	if err := myLibrary.SaveRun(ctx, run, report); err != nil {
		log.Error().Err(err).Msg("could not record ingest run")
	}

	if checkID := viper.GetString("healthchecks.checkid"); checkID != "" {
		if len(failed) == 0 {
			if err := healthcheck.Ping(checkID); err != nil {
				log.Error().Err(err).Msg("healthcheck ping failed")
			}
		} else {
			if err := healthcheck.Fail(checkID); err != nil {
				log.Error().Err(err).Msg("healthcheck fail signal failed")
			}
		}
	}

	printReport(report)

	if len(failed) > 0 {
		log.Warn().Strs("Symbols", failed).Msg("some symbols failed")
		os.Exit(1)
	}
}

// collectSymbols merges symbols from args, --symbols-file, and the config
// file, in that order of precedence.
func collectSymbols(args []string) []string {
	if len(args) > 0 {
		symbols := make([]string, len(args))
		for i, arg := range args {
			symbols[i] = strings.ToUpper(arg)
		}
		return symbols
	}

	if symbolsFile != "" {
		fh, err := os.Open(symbolsFile)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", symbolsFile).Msg("could not open symbols file")
		}
		defer fh.Close()

		symbols, err := ingest.SymbolsFromCSV(fh)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", symbolsFile).Msg("could not parse symbols file")
		}
		return symbols
	}

	return viper.GetStringSlice("symbols")
}

func resolveDateRange() (time.Time, time.Time) {
	end := time.Now()
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			log.Fatal().Err(err).Str("End", endDate).Msg("invalid end date")
		}
		end = parsed
	}

	if startDate != "" {
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			log.Fatal().Err(err).Str("Start", startDate).Msg("invalid start date")
		}
		return start, end
	}

	start, err := provider.ParsePeriod(period, end)
	if err != nil {
		log.Fatal().Err(err).Str("Period", period).Msg("invalid period")
	}
	return start, end
}

func printReport(report *ingest.RunReport) {
	for _, stage := range report.Stages {
		event := log.Info()
		switch stage.Status {
		case ingest.StatusFailed:
			event = log.Error()
		case ingest.StatusSkipped:
			event = log.Warn()
		}
		event.
			Str("Symbol", stage.Symbol).
			Str("Stage", stage.Stage).
			Str("Status", stage.Status).
			Int("Rows", stage.Rows).
			Msg("stage result")
	}
}
