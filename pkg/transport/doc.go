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

// Package transport provides a session-authenticated transport for a2a-go.
//
// SessionHTTPTransport implements a2aclient.Transport over HTTP/JSON-RPC 2.0.
// Every request carries the six authentication fields as HTTP headers.
//
// # Usage
//
//	c, err := transport.NewSessionAuthenticatedClient(ctx, sess, targetAgentCard)
//	if err != nil {
//	    return err
//	}
//	defer c.Destroy()
//
//	task, err := c.SendMessage(ctx, message)
//
// For more control, use the factory option directly:
//
//	c, err := a2aclient.NewFromCard(
//	    ctx,
//	    agentCard,
//	    transport.WithSessionHTTPTransport(sess, nil, transport.WithRequireAuth(false)),
//	    a2aclient.WithInterceptors(loggingInterceptor),
//	)
//
// # Signed Payload
//
// message/send and message/stream are signed over the text of each part, in
// order, when every part is a TextPart (pointer or value). A message carrying
// a data or file part is signed like any other call: over the JSON-RPC method
// name and the exact request body, so no part goes unsigned. The agent card
// fetch is signed over "GET" and its URL.
//
// Receivers rebuild the payload from the raw body with RequestPayload.
//
// # Streaming
//
// SendStreamingMessage and ResubscribeToTask read Server-Sent Events. Each
// event's data is a JSON-RPC response holding a Message, Task,
// TaskStatusUpdateEvent or TaskArtifactUpdateEvent.
package transport
