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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sync/atomic"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2aclient"
	"github.com/rs/zerolog"

	"github.com/sage-x-project/elo-auth-go/pkg/client"
)

const (
	methodSendMessage   = "message/send"
	methodStreamMessage = "message/stream"
)

// Option configures a SessionHTTPTransport
type Option func(*SessionHTTPTransport)

// WithRequireAuth controls whether a request that cannot be signed is
// refused (true, the default) or sent without authentication fields.
func WithRequireAuth(require bool) Option {
	return func(t *SessionHTTPTransport) {
		t.requireAuth = require
	}
}

// WithLogger sets the transport logger
func WithLogger(logger zerolog.Logger) Option {
	return func(t *SessionHTTPTransport) {
		t.logger = logger
	}
}

// SessionHTTPTransport implements a2aclient.Transport for HTTP/JSON-RPC 2.0
// and attaches authentication fields to every request.
//
// Chat messages are signed over the text of their parts, so a receiver can
// check the signature against what it displays. Every other call is signed
// over the JSON-RPC method name and request body.
type SessionHTTPTransport struct {
	baseURL     string
	signer      client.FieldSigner
	httpClient  *http.Client
	requireAuth bool
	logger      zerolog.Logger
	nextID      atomic.Int64
}

// NewSessionHTTPTransport creates a new session-authenticated HTTP transport.
//
// Parameters:
//   - baseURL: The base URL of the A2A agent (e.g., "https://agent.example.com")
//   - signer: Produces the authentication fields, usually a *session.Session
//   - httpClient: Optional HTTP client (nil to use http.DefaultClient)
func NewSessionHTTPTransport(
	baseURL string,
	signer client.FieldSigner,
	httpClient *http.Client,
	opts ...Option,
) a2aclient.Transport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	t := &SessionHTTPTransport{
		baseURL:     baseURL,
		signer:      signer,
		httpClient:  httpClient,
		requireAuth: true,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With().Str("component", "transport").Str("base_url", baseURL).Logger()
	return t
}

// ========================================
// JSON-RPC 2.0 Helper Methods
// ========================================

// jsonRPCRequest represents a JSON-RPC 2.0 request
type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

// jsonRPCResponse represents a JSON-RPC 2.0 response
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
	ID      int64           `json:"id"`
}

// jsonRPCError represents a JSON-RPC 2.0 error
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// MessagePayload returns the strings a chat message is signed over: the text
// of each text part, in order. ok is false for a nil message or one holding
// any part that is not text; such a message is signed over the whole request.
func MessagePayload(msg *a2a.Message) (payload []string, ok bool) {
	if msg == nil {
		return nil, false
	}

	payload = make([]string, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case *a2a.TextPart:
			if p == nil {
				return nil, false
			}
			payload = append(payload, p.Text)
		case a2a.TextPart:
			payload = append(payload, p.Text)
		default:
			return nil, false
		}
	}
	return payload, true
}

// RequestPayload rebuilds the signed payload from a raw JSON-RPC request
// body, as a receiving agent sees it.
func RequestPayload(body []byte) ([]string, error) {
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	if req.Method == methodSendMessage || req.Method == methodStreamMessage {
		var params a2a.MessageSendParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid message params: %w", err)
		}
		if payload, ok := MessagePayload(params.Message); ok {
			return payload, nil
		}
	}
	return []string{req.Method, string(body)}, nil
}

// signedPayload picks the payload for a JSON-RPC call
func signedPayload(method string, params any, body []byte) []string {
	if method == methodSendMessage || method == methodStreamMessage {
		if sendParams, ok := params.(*a2a.MessageSendParams); ok && sendParams != nil {
			if payload, ok := MessagePayload(sendParams.Message); ok {
				return payload
			}
		}
	}
	return []string{method, string(body)}
}

// authenticate attaches the authentication fields for payload to req
func (t *SessionHTTPTransport) authenticate(ctx context.Context, req *http.Request, payload []string) error {
	if t.signer == nil {
		if t.requireAuth {
			return fmt.Errorf("failed to authenticate request: no signer configured")
		}
		return nil
	}

	result := t.signer.CreateMessageFields(ctx, payload...)
	if result.Err != nil {
		if t.requireAuth {
			return fmt.Errorf("failed to authenticate request: %w", result.Err)
		}
		t.logger.Warn().Err(result.Err).Msg("sending request unauthenticated")
		return nil
	}

	client.SetHeaders(req.Header, result.Fields)
	return nil
}

// newRPCRequest builds an authenticated JSON-RPC POST
func (t *SessionHTTPTransport) newRPCRequest(ctx context.Context, method string, params any) (*http.Request, error) {
	rpcReq := jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      t.nextID.Add(1),
	}

	body, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON-RPC request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/rpc", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if err := t.authenticate(ctx, req, signedPayload(method, params, body)); err != nil {
		return nil, err
	}

	t.logger.Debug().Str("method", method).Int64("id", rpcReq.ID).Msg("sending JSON-RPC request")
	return req, nil
}

// call makes an authenticated JSON-RPC 2.0 call and returns the raw result
func (t *SessionHTTPTransport) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req, err := t.newRPCRequest(ctx, method, params)
	if err != nil {
		return nil, err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s: %s", resp.StatusCode, resp.Status, string(respBody))
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON-RPC response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("JSON-RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return rpcResp.Result, nil
}

// ========================================
// A2A Protocol Methods (a2aclient.Transport interface)
// ========================================

// GetTask implements the 'tasks/get' protocol method.
func (t *SessionHTTPTransport) GetTask(ctx context.Context, query *a2a.TaskQueryParams) (*a2a.Task, error) {
	result, err := t.call(ctx, "tasks/get", query)
	if err != nil {
		return nil, err
	}

	var task a2a.Task
	if err := json.Unmarshal(result, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Task: %w", err)
	}

	return &task, nil
}

// CancelTask implements the 'tasks/cancel' protocol method.
func (t *SessionHTTPTransport) CancelTask(ctx context.Context, id *a2a.TaskIDParams) (*a2a.Task, error) {
	result, err := t.call(ctx, "tasks/cancel", id)
	if err != nil {
		return nil, err
	}

	var task a2a.Task
	if err := json.Unmarshal(result, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Task: %w", err)
	}

	return &task, nil
}

// SendMessage implements the 'message/send' protocol method (non-streaming).
func (t *SessionHTTPTransport) SendMessage(ctx context.Context, message *a2a.MessageSendParams) (a2a.SendMessageResult, error) {
	result, err := t.call(ctx, methodSendMessage, message)
	if err != nil {
		return nil, err
	}

	// A Message carries "messageId", a Task carries "id"
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	if _, hasMessageID := raw["messageId"]; hasMessageID {
		var msg a2a.Message
		if err := json.Unmarshal(result, &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Message: %w", err)
		}
		return &msg, nil
	}

	if _, hasID := raw["id"]; hasID {
		var task a2a.Task
		if err := json.Unmarshal(result, &task); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Task: %w", err)
		}
		return &task, nil
	}

	return nil, fmt.Errorf("result is neither Task nor Message")
}

// ResubscribeToTask implements the 'tasks/resubscribe' protocol method over SSE.
func (t *SessionHTTPTransport) ResubscribeToTask(ctx context.Context, id *a2a.TaskIDParams) iter.Seq2[a2a.Event, error] {
	return t.callSSE(ctx, "tasks/resubscribe", id)
}

// SendStreamingMessage implements the 'message/stream' protocol method over SSE.
func (t *SessionHTTPTransport) SendStreamingMessage(ctx context.Context, message *a2a.MessageSendParams) iter.Seq2[a2a.Event, error] {
	return t.callSSE(ctx, methodStreamMessage, message)
}

// GetTaskPushConfig implements the 'tasks/pushNotificationConfig/get' protocol method.
func (t *SessionHTTPTransport) GetTaskPushConfig(ctx context.Context, params *a2a.GetTaskPushConfigParams) (*a2a.TaskPushConfig, error) {
	result, err := t.call(ctx, "tasks/pushNotificationConfig/get", params)
	if err != nil {
		return nil, err
	}

	var config a2a.TaskPushConfig
	if err := json.Unmarshal(result, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal TaskPushConfig: %w", err)
	}

	return &config, nil
}

// ListTaskPushConfig implements the 'tasks/pushNotificationConfig/list' protocol method.
func (t *SessionHTTPTransport) ListTaskPushConfig(ctx context.Context, params *a2a.ListTaskPushConfigParams) ([]*a2a.TaskPushConfig, error) {
	result, err := t.call(ctx, "tasks/pushNotificationConfig/list", params)
	if err != nil {
		return nil, err
	}

	var configs []*a2a.TaskPushConfig
	if err := json.Unmarshal(result, &configs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal TaskPushConfig list: %w", err)
	}

	return configs, nil
}

// SetTaskPushConfig implements the 'tasks/pushNotificationConfig/set' protocol method.
func (t *SessionHTTPTransport) SetTaskPushConfig(ctx context.Context, config *a2a.TaskPushConfig) (*a2a.TaskPushConfig, error) {
	result, err := t.call(ctx, "tasks/pushNotificationConfig/set", config)
	if err != nil {
		return nil, err
	}

	var resultConfig a2a.TaskPushConfig
	if err := json.Unmarshal(result, &resultConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal TaskPushConfig: %w", err)
	}

	return &resultConfig, nil
}

// DeleteTaskPushConfig implements the 'tasks/pushNotificationConfig/delete' protocol method.
func (t *SessionHTTPTransport) DeleteTaskPushConfig(ctx context.Context, params *a2a.DeleteTaskPushConfigParams) error {
	_, err := t.call(ctx, "tasks/pushNotificationConfig/delete", params)
	return err
}

// GetAgentCard fetches the card from the well-known URL, signed over [GET, url].
func (t *SessionHTTPTransport) GetAgentCard(ctx context.Context) (*a2a.AgentCard, error) {
	url := t.baseURL + "/.well-known/agent-card.json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if err := t.authenticate(ctx, req, []string{http.MethodGet, url}); err != nil {
		return nil, err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var card a2a.AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("failed to decode agent card: %w", err)
	}

	return &card, nil
}

// Destroy cleans up resources (HTTP client doesn't need cleanup).
func (t *SessionHTTPTransport) Destroy() error {
	return nil
}
