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
	"github.com/spf13/cobra"

	"github.com/finquery/finquery/ingest"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats [symbols...]",
	Short: "Load prices and compute per-symbol summary statistics",
	Long: `The stats sub-command runs the statistics pipeline variant: resolve
security metadata, fetch end-of-day price history, then compute summary
statistics (mean, standard deviation, skewness, kurtosis, min/max, return
volatility) over the closing prices. A symbol needs more than ten non-null
closes in the range for a statistics row to be written; fundamentals are not
loaded.`,
	Run: func(_ *cobra.Command, args []string) {
		runPipeline(args, ingest.VariantStats)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
