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

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Tool is a function the model may call during a conversation.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  *JSONSchema `json:"parameters"`
	Handler     ToolHandler `json:"-"`
}

// ToolHandler executes a tool call and returns the result fed back to the
// model.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// ToolRegistry holds the tools offered to the model.
type ToolRegistry struct {
	tools map[string]Tool
	order []string
}

// NewToolRegistry builds an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool, overwriting any previous tool with the same name.
func (r *ToolRegistry) Register(tool Tool) {
	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
}

// List returns the registered tools in registration order.
func (r *ToolRegistry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Execute runs a single tool call.
func (r *ToolRegistry) Execute(ctx context.Context, call ToolCall) (string, error) {
	tool, ok := r.tools[call.Name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, call.Name)
	}
	if tool.Handler == nil {
		return "", fmt.Errorf("llm: tool %q has no handler", call.Name)
	}
	return tool.Handler(ctx, call.Arguments)
}

// RunToolLoop drives the tool-calling conversation: send the messages, run
// any requested tools, append the results, and repeat until the model
// answers in text or maxIterations is hit. It returns the final response and
// the full transcript.
func RunToolLoop(ctx context.Context, client *Client, registry *ToolRegistry, messages []Message, maxIterations int) (*Response, []Message, error) {
	if maxIterations <= 0 {
		maxIterations = 10
	}

	tools := registry.List()
	msgs := make([]Message, len(messages))
	copy(msgs, messages)

	for i := 0; i < maxIterations; i++ {
		resp, err := client.Chat(ctx, msgs, tools)
		if err != nil {
			return nil, msgs, err
		}

		if !resp.HasToolCalls() {
			return resp, append(msgs, AssistantMessage(resp.Content)), nil
		}

		msgs = append(msgs, AssistantToolCallMessage(resp.ToolCalls))

		for _, call := range resp.ToolCalls {
			output, err := registry.Execute(ctx, call)
			if err != nil {
				log.Warn().Err(err).Str("Tool", call.Name).Msg("tool call failed")
				output = fmt.Sprintf("error executing %s: %v", call.Name, err)
			}
			msgs = append(msgs, ToolResultMessage(call.ID, call.Name, output))
		}
	}

	return nil, msgs, fmt.Errorf("llm: tool loop exceeded %d iterations", maxIterations)
}
