// Copyright (C) 2025 SAGE-X Project
//
// This file is part of elo-auth-go.
//
// elo-auth-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// elo-auth-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with elo-auth-go.  If not, see <https://www.gnu.org/licenses/>.

package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
)

// sseEvent is one dispatched Server-Sent Event
type sseEvent struct {
	Event string
	Data  []byte
	ID    string
}

// readSSE splits an event stream into events. Multi-line data fields are
// joined with \n; comments and unknown fields are ignored.
//
//	event: message
//	data: {"jsonrpc":"2.0","id":1,"result":{...}}
//	id: 123
func readSSE(ctx context.Context, r io.Reader) iter.Seq2[sseEvent, error] {
	return func(yield func(sseEvent, error) bool) {
		reader := bufio.NewReader(r)
		var current sseEvent
		var data bytes.Buffer

		for {
			if err := ctx.Err(); err != nil {
				yield(sseEvent{}, err)
				return
			}

			line, err := reader.ReadBytes('\n')
			if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
				if errors.Is(err, io.EOF) {
					return
				}
				yield(sseEvent{}, fmt.Errorf("error reading SSE stream: %w", err))
				return
			}

			line = bytes.TrimRight(line, "\r\n")

			if len(line) == 0 {
				if data.Len() > 0 {
					current.Data = bytes.Clone(data.Bytes())
					data.Reset()
					if !yield(current, nil) {
						return
					}
				}
				current = sseEvent{}
				continue
			}

			field, value, found := bytes.Cut(line, []byte(":"))
			if !found || len(field) == 0 {
				continue
			}
			value = bytes.TrimPrefix(value, []byte(" "))

			switch string(field) {
			case "event":
				current.Event = string(value)
			case "data":
				if data.Len() > 0 {
					data.WriteByte('\n')
				}
				data.Write(value)
			case "id":
				current.ID = string(value)
			}
		}
	}
}

// parseSSEStream turns an SSE response into A2A events and closes the body.
func parseSSEStream(ctx context.Context, resp *http.Response) iter.Seq2[a2a.Event, error] {
	return func(yield func(a2a.Event, error) bool) {
		defer resp.Body.Close()

		for ev, err := range readSSE(ctx, resp.Body) {
			if err != nil {
				yield(nil, err)
				return
			}

			event, err := parseSSEData(ev.Data)
			if !yield(event, err) {
				return
			}
		}
	}
}

// parseSSEData extracts the A2A event from one JSON-RPC response.
//
// The result is either wrapped ({"message": {...}}, {"task": ...},
// {"statusUpdate": ...}, {"artifactUpdate": ...}) or a bare event tagged
// with "kind".
func parseSSEData(data []byte) (a2a.Event, error) {
	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to parse SSE JSON-RPC response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("JSON-RPC error in SSE stream: %d - %s",
			rpcResp.Error.Code, rpcResp.Error.Message)
	}

	var envelope struct {
		Message        json.RawMessage `json:"message"`
		Task           json.RawMessage `json:"task"`
		StatusUpdate   json.RawMessage `json:"statusUpdate"`
		ArtifactUpdate json.RawMessage `json:"artifactUpdate"`
		Kind           string          `json:"kind"`
	}
	if err := json.Unmarshal(rpcResp.Result, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse SSE result structure: %w", err)
	}

	switch {
	case envelope.Message != nil:
		return decodeEvent[a2a.Message](envelope.Message, "Message")
	case envelope.Task != nil:
		return decodeEvent[a2a.Task](envelope.Task, "Task")
	case envelope.StatusUpdate != nil:
		return decodeEvent[a2a.TaskStatusUpdateEvent](envelope.StatusUpdate, "TaskStatusUpdateEvent")
	case envelope.ArtifactUpdate != nil:
		return decodeEvent[a2a.TaskArtifactUpdateEvent](envelope.ArtifactUpdate, "TaskArtifactUpdateEvent")
	}

	switch envelope.Kind {
	case "message":
		return decodeEvent[a2a.Message](rpcResp.Result, "Message")
	case "task":
		return decodeEvent[a2a.Task](rpcResp.Result, "Task")
	case "status-update":
		return decodeEvent[a2a.TaskStatusUpdateEvent](rpcResp.Result, "TaskStatusUpdateEvent")
	case "artifact-update":
		return decodeEvent[a2a.TaskArtifactUpdateEvent](rpcResp.Result, "TaskArtifactUpdateEvent")
	}

	return nil, fmt.Errorf("unknown SSE event type in result")
}

func decodeEvent[T any, PT interface {
	*T
	a2a.Event
}](data json.RawMessage, name string) (a2a.Event, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s from SSE: %w", name, err)
	}
	return PT(&v), nil
}

// callSSE makes an authenticated JSON-RPC call expecting an SSE stream.
func (t *SessionHTTPTransport) callSSE(ctx context.Context, method string, params any) iter.Seq2[a2a.Event, error] {
	return func(yield func(a2a.Event, error) bool) {
		req, err := t.newRPCRequest(ctx, method, params)
		if err != nil {
			yield(nil, err)
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		resp, err := t.httpClient.Do(req)
		if err != nil {
			yield(nil, fmt.Errorf("HTTP request failed: %w", err))
			return
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			yield(nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status))
			return
		}

		contentType := resp.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "text/event-stream") {
			resp.Body.Close()
			yield(nil, fmt.Errorf("unexpected Content-Type: %s, expected text/event-stream", contentType))
			return
		}

		for event, err := range parseSSEStream(ctx, resp) {
			if !yield(event, err) {
				return
			}
		}
	}
}
