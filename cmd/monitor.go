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
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finquery/finquery/healthcheck"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Create a healthchecks.io monitor for the ingest schedule",
	Long: `The monitor sub-command registers a check with healthchecks.io that
expects a ping on every successful ingest run. The check id is saved in the
config file; once set, the ingest and stats commands ping the check after
each run and signal a failure when any symbol fails.

Requires healthchecks.apikey in the config file or environment.`,
	Run: func(_ *cobra.Command, _ []string) {
		var confirmed bool

		checkName := "finquery ingest"

		// spread scheduled runs across the pre-market window
		minuteChoice := rand.Intn(12) * 5
		hourChoice := rand.Intn(9)
		schedule := fmt.Sprintf("%d %d * * 1-5", minuteChoice, hourChoice)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("What should the check be named?").
					Value(&checkName),
				huh.NewInput().
					Title("What cron schedule does your ingest run on?").
					Value(&schedule),
				huh.NewConfirm().
					Title("Create the healthchecks.io check?").
					Value(&confirmed),
			),
		)

		if err := form.Run(); err != nil {
			log.Fatal().Err(err).Msg("failed to create wizard")
		}

		if !confirmed {
			log.Info().Msg("not creating monitor")
			return
		}

		checkID, err := healthcheck.Create(checkName, []string{"finquery"}, schedule)
		if err != nil {
			log.Fatal().Err(err).Msg("creating healthcheck failed")
		}

		viper.Set("healthchecks.checkid", checkID)
		if err := writeConfig(); err != nil {
			log.Fatal().Err(err).Str("CheckID", checkID).Msg("could not save check id to config file")
		}

		keyword := func(s string) string {
			return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
		}
		fmt.Println(
			lipgloss.NewStyle().
				Width(60).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(1, 2).
				Render(fmt.Sprintf("%s\n\nID: %s\nName: %s\nSchedule: %s",
					lipgloss.NewStyle().Bold(true).Render("NEW MONITOR"),
					keyword(checkID), keyword(checkName), keyword(schedule))),
		)
	},
}

// unmonitorCmd represents the unmonitor command
var unmonitorCmd = &cobra.Command{
	Use:   "unmonitor",
	Short: "Delete the configured healthchecks.io monitor",
	Run: func(_ *cobra.Command, _ []string) {
		checkID := viper.GetString("healthchecks.checkid")
		if checkID == "" {
			log.Fatal().Msg("no monitor configured; run `finquery monitor` first")
		}

		confirmed := false
		confirmForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Are you sure you want to delete check '%s'?", checkID)).
					Value(&confirmed),
			),
		)

		if err := confirmForm.Run(); err != nil {
			log.Fatal().Err(err).Msg("failed to create wizard")
		}

		if !confirmed {
			log.Info().Msg("keeping monitor")
			return
		}

		if err := healthcheck.Delete(checkID); err != nil {
			log.Fatal().Err(err).Str("CheckID", checkID).Msg("could not delete healthcheck")
		}

		viper.Set("healthchecks.checkid", "")
		if err := writeConfig(); err != nil {
			log.Fatal().Err(err).Msg("could not update config file")
		}

		log.Info().Str("CheckID", checkID).Msg("monitor deleted")
	},
}

// writeConfig persists the current viper settings, creating the default
// config file when none was loaded.
func writeConfig() error {
	if viper.ConfigFileUsed() != "" {
		return viper.WriteConfig()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(home, ".finquery.toml"))
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(unmonitorCmd)
}
