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
	"context"
	stdcrypto "crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/elo-auth-go/pkg/certificate"
	"github.com/sage-x-project/elo-auth-go/pkg/identity"
	"github.com/sage-x-project/elo-auth-go/pkg/keys"
	"github.com/sage-x-project/elo-auth-go/pkg/session"
	"github.com/sage-x-project/elo-auth-go/pkg/signer"
)

var testIdentity = identity.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")

// newReadySession returns a Ready session backed by a freshly generated key
func newReadySession(t testing.TB) *session.Session {
	t.Helper()

	keyPair, err := keys.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	material, err := keys.New(keys.Params{
		KeyPair:              keyPair,
		CertificateSignature: []byte("certificate-signature"),
		ExpiresAt:            time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	s, err := session.New(session.Options{
		Identity: testIdentity,
		Fetcher: certificate.FetcherFunc(func(context.Context, certificate.Credentials, identity.Identity) (*keys.KeyMaterial, error) {
			return material, nil
		}),
	})
	require.NoError(t, err)
	require.NoError(t, s.Initialize(certificate.Credentials{AccessToken: "token"}))

	ready, err := s.Wait(context.Background())
	require.NoError(t, err)
	return ready
}

// setupTestTransport creates a test transport with a mock server
func setupTestTransport(t *testing.T, handler http.HandlerFunc) (*SessionHTTPTransport, *httptest.Server) {
	server := httptest.NewServer(handler)

	transport := NewSessionHTTPTransport(server.URL, newReadySession(t), nil).(*SessionHTTPTransport)

	return transport, server
}

// assertAuthenticated checks the auth headers on r and that the signature covers payload
func assertAuthenticated(t *testing.T, r *http.Request, payload ...string) {
	t.Helper()

	assert.Equal(t, testIdentity.Bits(), r.Header.Get(session.KeyUUID))

	nonce, err := strconv.ParseInt(r.Header.Get(session.KeyRandomLong), 10, 64)
	require.NoError(t, err)

	der, err := base64.StdEncoding.DecodeString(r.Header.Get(session.KeyPublicKey))
	require.NoError(t, err)
	pub, err := x509.ParsePKIXPublicKey(der)
	require.NoError(t, err)

	signature, err := base64.StdEncoding.DecodeString(r.Header.Get(session.KeyData))
	require.NoError(t, err)

	digest := sha256.Sum256(signer.Canonicalize(testIdentity, nonce, payload...))
	assert.NoError(t, rsa.VerifyPKCS1v15(pub.(*rsa.PublicKey), stdcrypto.SHA256, digest[:], signature))

	assert.NotEmpty(t, r.Header.Get(session.KeyInstant))
	assert.NotEmpty(t, r.Header.Get(session.KeySignatureBytes))
}

// readRPC decodes the request and returns it with its raw body
func readRPC(t *testing.T, r *http.Request) (jsonRPCRequest, []byte) {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	var req jsonRPCRequest
	require.NoError(t, json.Unmarshal(body, &req))
	return req, body
}

// mockJSONRPCResponse creates a mock JSON-RPC 2.0 response
func mockJSONRPCResponse(result interface{}) []byte {
	resp := jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      1,
	}

	resultJSON, _ := json.Marshal(result)
	resp.Result = resultJSON

	respJSON, _ := json.Marshal(resp)
	return respJSON
}

// mockJSONRPCError creates a mock JSON-RPC 2.0 error response
func mockJSONRPCError(code int, message string) []byte {
	resp := jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      1,
		Error: &jsonRPCError{
			Code:    code,
			Message: message,
		},
	}

	respJSON, _ := json.Marshal(resp)
	return respJSON
}

// stubSigner returns a fixed result
type stubSigner struct {
	result session.SignResult
	calls  atomic.Int32
}

func (s *stubSigner) CreateMessageFields(context.Context, ...string) session.SignResult {
	s.calls.Add(1)
	return s.result
}

func TestNewSessionHTTPTransport(t *testing.T) {
	sess := newReadySession(t)
	baseURL := "https://example.com"

	transport := NewSessionHTTPTransport(baseURL, sess, nil).(*SessionHTTPTransport)

	assert.Equal(t, baseURL, transport.baseURL)
	assert.Equal(t, sess, transport.signer)
	assert.Equal(t, http.DefaultClient, transport.httpClient)
	assert.True(t, transport.requireAuth)
}

func TestSessionHTTPTransport_GetTask(t *testing.T) {
	expectedTask := &a2a.Task{
		ID: "task-123",
		Status: a2a.TaskStatus{
			State: a2a.TaskStateSubmitted,
		},
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rpc", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req, body := readRPC(t, r)
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "tasks/get", req.Method)

		// Non-chat calls are signed over method and body
		assertAuthenticated(t, r, "tasks/get", string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(mockJSONRPCResponse(expectedTask))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	task, err := transport.GetTask(context.Background(), &a2a.TaskQueryParams{ID: "task-123"})

	require.NoError(t, err)
	assert.Equal(t, expectedTask.ID, task.ID)
	assert.Equal(t, expectedTask.Status.State, task.Status.State)
}

func TestSessionHTTPTransport_RequestIDsIncrease(t *testing.T) {
	var mu sync.Mutex
	var ids []int64
	handler := func(w http.ResponseWriter, r *http.Request) {
		req, _ := readRPC(t, r)
		mu.Lock()
		ids = append(ids, req.ID)
		mu.Unlock()
		w.Write(mockJSONRPCResponse(&a2a.Task{ID: "task-1"}))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	for i := 0; i < 3; i++ {
		_, err := transport.GetTask(context.Background(), &a2a.TaskQueryParams{ID: "task-1"})
		require.NoError(t, err)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestSessionHTTPTransport_CancelTask(t *testing.T) {
	expectedTask := &a2a.Task{
		ID: "task-123",
		Status: a2a.TaskStatus{
			State: a2a.TaskStateCanceled,
		},
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		req, _ := readRPC(t, r)
		assert.Equal(t, "tasks/cancel", req.Method)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(mockJSONRPCResponse(expectedTask))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	task, err := transport.CancelTask(context.Background(), &a2a.TaskIDParams{ID: "task-123"})

	require.NoError(t, err)
	assert.Equal(t, expectedTask.ID, task.ID)
	assert.Equal(t, a2a.TaskStateCanceled, task.Status.State)
}

func TestSessionHTTPTransport_SendMessage_SignsText(t *testing.T) {
	expectedTask := &a2a.Task{
		ID: "task-456",
		Status: a2a.TaskStatus{
			State: a2a.TaskStateWorking,
		},
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		req, _ := readRPC(t, r)
		assert.Equal(t, "message/send", req.Method)

		// Chat messages are signed over their text parts only
		assertAuthenticated(t, r, "Hello", "world")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(mockJSONRPCResponse(expectedTask))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	message := &a2a.MessageSendParams{
		Message: &a2a.Message{
			ID:   "msg-123",
			Role: a2a.MessageRoleUser,
			Parts: []a2a.Part{
				&a2a.TextPart{Text: "Hello"},
				&a2a.TextPart{Text: "world"},
			},
		},
	}

	result, err := transport.SendMessage(context.Background(), message)

	require.NoError(t, err)
	task, ok := result.(*a2a.Task)
	require.True(t, ok, "result should be a Task")
	assert.Equal(t, expectedTask.ID, task.ID)
	assert.Equal(t, expectedTask.Status.State, task.Status.State)
}

func TestSessionHTTPTransport_SendMessage_ReturnsMessage(t *testing.T) {
	expectedMessage := a2a.NewMessage(
		a2a.MessageRoleAgent,
		&a2a.TextPart{Text: "Response"},
	)
	expectedMessage.ID = "msg-789"

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(mockJSONRPCResponse(expectedMessage))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	message := &a2a.MessageSendParams{
		Message: a2a.NewMessage(
			a2a.MessageRoleUser,
			&a2a.TextPart{Text: "Hello"},
		),
	}

	result, err := transport.SendMessage(context.Background(), message)
	require.NoError(t, err)

	msg, ok := result.(*a2a.Message)
	require.True(t, ok, "expected Message, got %T", result)
	assert.Equal(t, expectedMessage.ID, msg.ID)
	assert.Equal(t, expectedMessage.Role, msg.Role)
}

func TestSessionHTTPTransport_SendMessage_UnknownResult(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write(mockJSONRPCResponse(map[string]string{"foo": "bar"}))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	_, err := transport.SendMessage(context.Background(), &a2a.MessageSendParams{
		Message: a2a.NewMessage(a2a.MessageRoleUser, &a2a.TextPart{Text: "Hello"}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither Task nor Message")
}

func TestSessionHTTPTransport_PushConfig(t *testing.T) {
	expectedConfig := &a2a.TaskPushConfig{
		TaskID: "task-123",
		Config: a2a.PushConfig{
			URL: "https://callback.example.com",
		},
	}

	var mu sync.Mutex
	var methods []string
	handler := func(w http.ResponseWriter, r *http.Request) {
		req, _ := readRPC(t, r)
		mu.Lock()
		methods = append(methods, req.Method)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch req.Method {
		case "tasks/pushNotificationConfig/list":
			w.Write(mockJSONRPCResponse([]*a2a.TaskPushConfig{expectedConfig, expectedConfig}))
		case "tasks/pushNotificationConfig/delete":
			w.Write(mockJSONRPCResponse(nil))
		default:
			w.Write(mockJSONRPCResponse(expectedConfig))
		}
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	ctx := context.Background()

	config, err := transport.GetTaskPushConfig(ctx, &a2a.GetTaskPushConfigParams{TaskID: "task-123"})
	require.NoError(t, err)
	assert.Equal(t, expectedConfig.Config.URL, config.Config.URL)

	configs, err := transport.ListTaskPushConfig(ctx, &a2a.ListTaskPushConfigParams{})
	require.NoError(t, err)
	assert.Len(t, configs, 2)

	config, err = transport.SetTaskPushConfig(ctx, expectedConfig)
	require.NoError(t, err)
	assert.Equal(t, expectedConfig.TaskID, config.TaskID)

	require.NoError(t, transport.DeleteTaskPushConfig(ctx, &a2a.DeleteTaskPushConfigParams{TaskID: "task-123"}))

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{
		"tasks/pushNotificationConfig/get",
		"tasks/pushNotificationConfig/list",
		"tasks/pushNotificationConfig/set",
		"tasks/pushNotificationConfig/delete",
	}, methods)
}

func TestSessionHTTPTransport_GetAgentCard(t *testing.T) {
	expectedCard := &a2a.AgentCard{
		Name:               "Test Agent",
		Description:        "A test agent",
		PreferredTransport: a2a.TransportProtocolJSONRPC,
	}

	var serverURL string
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/.well-known/agent-card.json", r.URL.Path)
		assertAuthenticated(t, r, http.MethodGet, serverURL+"/.well-known/agent-card.json")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(expectedCard)
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()
	serverURL = server.URL

	card, err := transport.GetAgentCard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, expectedCard.Name, card.Name)
	assert.Equal(t, expectedCard.Description, card.Description)
	assert.Equal(t, expectedCard.PreferredTransport, card.PreferredTransport)
}

func TestSessionHTTPTransport_JSONRPCError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(mockJSONRPCError(-32600, "Invalid Request"))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	_, err := transport.GetTask(context.Background(), &a2a.TaskQueryParams{ID: "task-123"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON-RPC error")
	assert.Contains(t, err.Error(), "-32600")
	assert.Contains(t, err.Error(), "Invalid Request")
}

func TestSessionHTTPTransport_HTTPError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	_, err := transport.GetTask(context.Background(), &a2a.TaskQueryParams{ID: "task-123"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error")
	assert.Contains(t, err.Error(), "500")
}

func TestSessionHTTPTransport_NotReadyRefused(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	stub := &stubSigner{result: session.SignResult{Err: &session.NotReadyError{State: session.StatePending}}}
	transport := NewSessionHTTPTransport(server.URL, stub, nil)

	_, err := transport.GetTask(context.Background(), &a2a.TaskQueryParams{ID: "task-123"})
	require.Error(t, err)

	var notReady *session.NotReadyError
	assert.ErrorAs(t, err, &notReady)
	assert.Zero(t, hits.Load())
}

func TestSessionHTTPTransport_UnsignedFallback(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(session.KeyData))
		w.Write(mockJSONRPCResponse(&a2a.Task{ID: "task-1"}))
	}
	server := httptest.NewServer(http.HandlerFunc(handler))
	defer server.Close()

	stub := &stubSigner{result: session.SignResult{Err: errors.New("boom")}}
	transport := NewSessionHTTPTransport(server.URL, stub, nil, WithRequireAuth(false))

	task, err := transport.GetTask(context.Background(), &a2a.TaskQueryParams{ID: "task-1"})
	require.NoError(t, err)
	assert.Equal(t, (&a2a.Task{ID: "task-1"}).ID, task.ID)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestSessionHTTPTransport_Destroy(t *testing.T) {
	transport := NewSessionHTTPTransport("https://example.com", &stubSigner{}, nil)
	assert.NoError(t, transport.Destroy())
}

func TestMessagePayload(t *testing.T) {
	tests := []struct {
		name   string
		msg    *a2a.Message
		want   []string
		wantOK bool
	}{
		{
			name:   "pointer text parts",
			msg:    a2a.NewMessage(a2a.MessageRoleUser, &a2a.TextPart{Text: "first"}, &a2a.TextPart{Text: "second"}),
			want:   []string{"first", "second"},
			wantOK: true,
		},
		{
			name:   "value text parts",
			msg:    a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: "pay"}, &a2a.TextPart{Text: "now"}),
			want:   []string{"pay", "now"},
			wantOK: true,
		},
		{
			name:   "no parts",
			msg:    &a2a.Message{Role: a2a.MessageRoleUser},
			want:   []string{},
			wantOK: true,
		},
		{
			name: "data part",
			msg:  a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: "pay"}, a2a.DataPart{Data: map[string]any{"amount": 1}}),
		},
		{
			name: "nil message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := MessagePayload(tt.msg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, payload)
		})
	}
}

func TestSignedPayload_NonTextPartsSignWholeRequest(t *testing.T) {
	newParams := func(amount int) *a2a.MessageSendParams {
		return &a2a.MessageSendParams{
			Message: a2a.NewMessage(a2a.MessageRoleUser,
				a2a.TextPart{Text: "pay"},
				a2a.DataPart{Data: map[string]any{"amount": amount}},
			),
		}
	}

	small, large := newParams(1), newParams(1000)
	smallBody, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", Method: methodSendMessage, Params: small, ID: 1})
	require.NoError(t, err)
	largeBody, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", Method: methodSendMessage, Params: large, ID: 1})
	require.NoError(t, err)

	smallPayload := signedPayload(methodSendMessage, small, smallBody)
	largePayload := signedPayload(methodSendMessage, large, largeBody)

	assert.Equal(t, []string{methodSendMessage, string(smallBody)}, smallPayload)
	assert.NotEqual(t, smallPayload, largePayload)
}

func TestRequestPayload_MatchesSender(t *testing.T) {
	messages := []*a2a.Message{
		a2a.NewMessage(a2a.MessageRoleUser, &a2a.TextPart{Text: "hi"}),
		a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: "pay"}),
		a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: "pay"}, a2a.DataPart{Data: map[string]any{"amount": 1}}),
	}

	for _, method := range []string{methodSendMessage, methodStreamMessage} {
		for _, msg := range messages {
			params := &a2a.MessageSendParams{Message: msg}
			body, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 7})
			require.NoError(t, err)

			got, err := RequestPayload(body)
			require.NoError(t, err)
			assert.Equal(t, signedPayload(method, params, body), got)
		}
	}

	body := []byte(`{"jsonrpc":"2.0","method":"tasks/get","params":{"id":"task-1"},"id":3}`)
	got, err := RequestPayload(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks/get", string(body)}, got)

	_, err = RequestPayload([]byte("not json"))
	assert.Error(t, err)
}

func TestSessionHTTPTransport_SendMessage_SignsDataParts(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		req, body := readRPC(t, r)
		assert.Equal(t, "message/send", req.Method)

		payload, err := RequestPayload(body)
		require.NoError(t, err)
		assert.Equal(t, []string{"message/send", string(body)}, payload)
		assertAuthenticated(t, r, payload...)

		w.Header().Set("Content-Type", "application/json")
		w.Write(mockJSONRPCResponse(&a2a.Task{ID: "task-789"}))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	_, err := transport.SendMessage(context.Background(), &a2a.MessageSendParams{
		Message: a2a.NewMessage(a2a.MessageRoleUser,
			a2a.TextPart{Text: "pay"},
			a2a.DataPart{Data: map[string]any{"amount": 1000}},
		),
	})
	require.NoError(t, err)
}

func TestSessionHTTPTransport_SendMessage_SignsValueTextParts(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, body := readRPC(t, r)

		payload, err := RequestPayload(body)
		require.NoError(t, err)
		assert.Equal(t, []string{"pay"}, payload)
		assertAuthenticated(t, r, "pay")

		w.Header().Set("Content-Type", "application/json")
		w.Write(mockJSONRPCResponse(&a2a.Task{ID: "task-790"}))
	}

	transport, server := setupTestTransport(t, handler)
	defer server.Close()

	_, err := transport.SendMessage(context.Background(), &a2a.MessageSendParams{
		Message: a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: "pay"}),
	})
	require.NoError(t, err)
}

func ExampleNewSessionHTTPTransport() {
	fetcher, _ := certificate.NewHTTPFetcher(certificate.HTTPConfig{})
	sess, _ := session.New(session.Options{
		Identity: identity.FromBits(0, 1),
		Fetcher:  fetcher,
	})

	transport := NewSessionHTTPTransport(
		"https://agent.example.com",
		sess,
		nil, // use default HTTP client
	)

	fmt.Printf("Transport created for %s\n", sess.Identity().Bits())
	transport.Destroy()
	// Output: Transport created for 0/1
}
