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

// Package main is an interactive chat client whose messages carry
// authentication fields.
//
// It fetches the player's key pair, then streams replies from an A2A agent:
//
//	ELOAUTH_AUTH_ACCESS_TOKEN=... ELOAUTH_AUTH_UUID=... \
//	    go run ./cmd/examples/chat-client https://chat.example.com
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2aclient"
	"github.com/rs/zerolog"

	"github.com/sage-x-project/elo-auth-go/pkg/certificate"
	"github.com/sage-x-project/elo-auth-go/pkg/config"
	"github.com/sage-x-project/elo-auth-go/pkg/identity"
	"github.com/sage-x-project/elo-auth-go/pkg/logging"
	"github.com/sage-x-project/elo-auth-go/pkg/session"
	"github.com/sage-x-project/elo-auth-go/pkg/transport"
)

// ChatSession manages a chat conversation
type ChatSession struct {
	transport a2aclient.Transport
	contextID string
	taskID    a2a.TaskID
}

// NewChatSession creates a new chat session
func NewChatSession(httpTransport a2aclient.Transport) *ChatSession {
	return &ChatSession{
		transport: httpTransport,
		contextID: a2a.NewContextID(),
	}
}

// SendMessage sends a message and streams the response
func (s *ChatSession) SendMessage(ctx context.Context, userInput string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	params := &a2a.MessageSendParams{
		Message: &a2a.Message{
			Role:      a2a.MessageRoleUser,
			Parts:     []a2a.Part{&a2a.TextPart{Text: userInput}},
			ContextID: s.contextID,
		},
	}

	if s.taskID != "" {
		params.Message.TaskID = s.taskID
	}

	fmt.Printf("\nagent> ")

	responseText := ""

	for event, err := range s.transport.SendStreamingMessage(ctx, params) {
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		switch e := event.(type) {
		case *a2a.Message:
			for _, part := range e.Parts {
				if textPart, ok := part.(*a2a.TextPart); ok {
					// Replies may resend the full text so far
					if strings.HasPrefix(textPart.Text, responseText) {
						fmt.Print(textPart.Text[len(responseText):])
					} else {
						fmt.Print(textPart.Text)
					}
					responseText = textPart.Text
				}
			}

		case *a2a.Task:
			s.taskID = e.ID

		case *a2a.TaskStatusUpdateEvent:
			if e.Status.State.Terminal() {
				fmt.Println()
				return nil
			}
		}
	}

	fmt.Println()
	return nil
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /quit     - Exit the chat")
	fmt.Println("  /help     - Show this help")
	fmt.Println("  <message> - Send a signed message")
	fmt.Println()
}

// openSession starts the fetch and waits for the key pair
func openSession(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*session.Session, error) {
	id, err := identity.Parse(cfg.Auth.UUID)
	if err != nil {
		return nil, err
	}

	fetcher, err := certificate.NewHTTPFetcher(certificate.HTTPConfig{
		URL:      cfg.Certificate.URL,
		Timeout:  cfg.Certificate.Timeout,
		ProxyURL: cfg.Certificate.Proxy,
		Logger:   &logger,
	})
	if err != nil {
		return nil, err
	}

	if err := session.Initialize(session.Options{
		Identity: id,
		Fetcher:  fetcher,
		Prefix:   cfg.Auth.Prefix,
		Logger:   &logger,
	}, certificate.Credentials{AccessToken: cfg.Auth.AccessToken}); err != nil {
		return nil, err
	}

	return session.Default(ctx)
}

func run(agentURL string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	ctx := context.Background()

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sess, err := openSession(waitCtx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create authentication: %w", err)
	}
	logger.Info().Str("identity", sess.Identity().String()).Msg("authentication ready")

	httpTransport := transport.NewSessionHTTPTransport(agentURL, sess, nil, transport.WithLogger(logger))
	defer httpTransport.Destroy()

	chat := NewChatSession(httpTransport)

	fmt.Printf("Connected to %s\n\n", agentURL)
	printHelp()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			switch input {
			case "/quit", "/exit":
				return nil
			case "/help":
				printHelp()
			default:
				fmt.Println("Unknown command. Type /help for help.")
			}
			continue
		}

		if err := chat.SendMessage(ctx, input); err != nil {
			logger.Error().Err(err).Msg("failed to send message")
		}
	}

	return scanner.Err()
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: chat-client <agent-url>")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "chat-client: %v\n", err)
		os.Exit(1)
	}
}
