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
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey string
	model  string
	client *resty.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint, e.g. a proxy or a
// test server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.client.SetBaseURL(strings.TrimRight(url, "/")) }
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// NewClient builds a chat completions client. The API key is held in memory
// only and never written to disk.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c := &Client{
		apiKey: apiKey,
		model:  DefaultModel,
		client: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(120 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the model requests are sent with.
func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  *JSONSchema `json:"parameters"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat sends the conversation and returns the model's next turn.
func (c *Client) Chat(ctx context.Context, messages []Message, tools []Tool) (*Response, error) {
	start := time.Now()

	body := chatRequest{
		Model:    c.model,
		Messages: toWireMessages(messages),
	}
	for _, t := range tools {
		body.Tools = append(body.Tools, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	var (
		result chatResponse
		errRes apiError
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		SetError(&errRes).
		Post("/chat/completions")
	if err != nil {
		log.Error().Err(err).Str("Model", c.model).Msg("chat completion request failed")
		return nil, err
	}

	if resp.StatusCode() != http.StatusOK {
		switch resp.StatusCode() {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", ErrNoAPIKey, errRes.Error.Message)
		case http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %s", ErrRateLimit, errRes.Error.Message)
		}
		if errRes.Error.Message != "" {
			return nil, fmt.Errorf("llm: API error (%d): %s", resp.StatusCode(), errRes.Error.Message)
		}
		return nil, fmt.Errorf("llm: HTTP %d", resp.StatusCode())
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("llm: response contains no choices")
	}

	choice := result.Choices[0]
	out := &Response{
		Content:      choice.Message.Content,
		FinishReason: FinishReason(choice.FinishReason),
		Usage:        result.Usage,
		Model:        result.Model,
		Latency:      time.Since(start),
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	log.Debug().
		Str("Model", out.Model).
		Int("ToolCalls", len(out.ToolCalls)).
		Int("TotalTokens", out.Usage.TotalTokens).
		Dur("Latency", out.Latency).
		Msg("chat completion")

	return out, nil
}

func toWireMessages(messages []Message) []wireMessage {
	out := make([]wireMessage, len(messages))
	for i, m := range messages {
		msg := wireMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, tc := range m.ToolCalls {
			wtc := wireToolCall{ID: tc.ID, Type: "function"}
			wtc.Function.Name = tc.Name
			wtc.Function.Arguments = string(tc.Arguments)
			msg.ToolCalls = append(msg.ToolCalls, wtc)
		}
		out[i] = msg
	}
	return out
}
