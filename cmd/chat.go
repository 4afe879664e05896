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
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finquery/finquery/chat"
	"github.com/finquery/finquery/library"
)

var chatAddr string

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Serve the natural-language query UI",
	Long: `The chat sub-command serves a browser UI where questions about the data
library are answered by an LLM agent with read access to the schema. The
OpenAI API key is entered in the browser at session start and is held only in
that session's memory.`,
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("DBUrl"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer myLibrary.Close()

		banner := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7aa2f7")).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder())
		fmt.Println(banner.Render(fmt.Sprintf("finquery chat\nlibrary: %s\nhttp://%s", myLibrary.Name, chatAddr)))

		server := chat.NewServer(myLibrary.Pool)
		if err := server.ListenAndServe(chatAddr); err != nil {
			log.Fatal().Err(err).Msg("chat server exited with error")
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatAddr, "addr", "localhost:8710", "listen address")
}
