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
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finquery/finquery/agent"
	"github.com/finquery/finquery/llm"
)

// Turn is one question/answer exchange in a session transcript.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	SQL      string    `json:"sql,omitempty"`
	AskedAt  time.Time `json:"asked_at"`
}

// Session holds the per-browser conversation state. The agent inside carries
// the API key in memory; nothing here is ever written to the database.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	agent Asker

	mu      sync.Mutex
	history []llm.Message
	turns   []Turn
}

func newSession(a Asker) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		agent:     a,
	}
}

// Ask forwards the question to the agent and appends the exchange to the
// transcript. Questions within a session are serialized.
func (s *Session) Ask(ctx context.Context, question string) (*agent.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.agent.Ask(ctx, s.history, question)
	if err != nil {
		return nil, err
	}

	s.history = append(s.history,
		llm.UserMessage(question),
		llm.AssistantMessage(answer.Text))
	s.turns = append(s.turns, Turn{
		Question: question,
		Answer:   answer.Text,
		SQL:      answer.SQL,
		AskedAt:  time.Now(),
	})

	return answer, nil
}

// Turns returns a copy of the session transcript.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}
