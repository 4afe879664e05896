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

// Package agent turns natural-language questions about the security library
// into SQL, executes it, and summarizes the result.
package agent

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/finquery/finquery/llm"
)

// MaxResultRows caps how many rows of a query result are shown to the model.
const MaxResultRows = 50

const systemPrompt = `You are a financial data analyst with read access to a
PostgreSQL database of equity prices and fundamentals. Tables include
securities, eod_prices, balance_sheet, income_statement, cash_flow and
summary_stats; every table is keyed by ticker symbol. Use the list_tables and
describe_table tools to inspect the schema, then run_query to answer the
user's question. Write standard PostgreSQL. Answer concisely and include the
numbers you found.`

// Querier is the subset of pgxpool.Pool the agent needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Answer is the agent's reply to a single question.
type Answer struct {
	Text string `json:"text"`
	SQL  string `json:"sql,omitempty"`
}

// SQLAgent answers questions by driving an LLM tool-calling loop over the
// library database.
type SQLAgent struct {
	db            Querier
	client        *llm.Client
	maxIterations int
}

// New builds an agent over the given database connection.
func New(db Querier, client *llm.Client) *SQLAgent {
	return &SQLAgent{
		db:            db,
		client:        client,
		maxIterations: 10,
	}
}

// Ask runs one question through the tool loop. history carries the prior
// turns of the conversation; the returned answer includes the last SQL the
// model executed, when it ran any.
func (a *SQLAgent) Ask(ctx context.Context, history []llm.Message, question string) (*Answer, error) {
	var lastSQL string

	registry := llm.NewToolRegistry()
	registry.Register(llm.Tool{
		Name:        "list_tables",
		Description: "List the tables available in the database.",
		Parameters:  llm.ObjectSchema("No parameters.", nil),
		Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
			return a.listTables(ctx)
		},
	})
	registry.Register(llm.Tool{
		Name:        "describe_table",
		Description: "Show the columns and types of a table.",
		Parameters: llm.ObjectSchema("", map[string]*llm.JSONSchema{
			"table": llm.StringProp("Name of the table to describe."),
		}, "table"),
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Table string `json:"table"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("agent: bad describe_table arguments: %w", err)
			}
			return a.describeTable(ctx, params.Table)
		},
	})
	registry.Register(llm.Tool{
		Name:        "run_query",
		Description: "Execute a SQL query and return the result rows.",
		Parameters: llm.ObjectSchema("", map[string]*llm.JSONSchema{
			"sql": llm.StringProp("The PostgreSQL query to execute."),
		}, "sql"),
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				SQL string `json:"sql"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("agent: bad run_query arguments: %w", err)
			}
			lastSQL = params.SQL
			log.Debug().Str("SQL", params.SQL).Msg("agent query")
			return a.runQuery(ctx, params.SQL)
		},
	})

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.SystemMessage(systemPrompt))
	messages = append(messages, history...)
	messages = append(messages, llm.UserMessage(question))

	resp, _, err := llm.RunToolLoop(ctx, a.client, registry, messages, a.maxIterations)
	if err != nil {
		return nil, err
	}

	return &Answer{Text: resp.Content, SQL: lastSQL}, nil
}

func (a *SQLAgent) listTables(ctx context.Context) (string, error) {
	return a.runQuery(ctx, `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name`)
}

func (a *SQLAgent) describeTable(ctx context.Context, table string) (string, error) {
	rows, err := a.db.Query(ctx, `SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position`, table)
	if err != nil {
		return "", err
	}
	out, err := formatRows(rows)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "(no rows)" {
		return fmt.Sprintf("table %q not found", table), nil
	}
	return out, nil
}

func (a *SQLAgent) runQuery(ctx context.Context, sql string) (string, error) {
	rows, err := a.db.Query(ctx, sql)
	if err != nil {
		return "", err
	}
	return formatRows(rows)
}

// formatRows renders a result set as a pipe-separated table, capped at
// MaxResultRows.
func formatRows(rows pgx.Rows) (string, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f.Name)
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(names, " | "))
	sb.WriteByte('\n')

	count := 0
	truncated := false
	for rows.Next() {
		if count >= MaxResultRows {
			truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return "", err
		}
		cells := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprintf("%v", v)
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteByte('\n')
		count++
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if count == 0 {
		return "(no rows)", nil
	}
	if truncated {
		fmt.Fprintf(&sb, "... truncated at %d rows\n", MaxResultRows)
	}
	return sb.String(), nil
}
