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

// Package main shows the smallest end-to-end use of elo-auth-go: fetch a key
// pair, print the fields for a payload and send one authenticated message.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/rs/zerolog"

	"github.com/sage-x-project/elo-auth-go/pkg/certificate"
	"github.com/sage-x-project/elo-auth-go/pkg/identity"
	"github.com/sage-x-project/elo-auth-go/pkg/session"
	"github.com/sage-x-project/elo-auth-go/pkg/transport"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	token := os.Getenv("ELOAUTH_AUTH_ACCESS_TOKEN")
	agentURL := os.Getenv("AGENT_URL")
	if agentURL == "" {
		agentURL = "https://agent.example.com"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("1. Fetching key pair...")
	fetcher, err := certificate.NewHTTPFetcher(certificate.HTTPConfig{Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create fetcher")
	}

	sess, err := session.New(session.Options{
		Identity: identity.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5"),
		Fetcher:  fetcher,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session")
	}
	if err := sess.Initialize(certificate.Credentials{AccessToken: token}); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize session")
	}

	if _, err := sess.Wait(ctx); err != nil {
		fmt.Printf("   Could not fetch key pair: %v\n", err)
		fmt.Println("\nSet ELOAUTH_AUTH_ACCESS_TOKEN to a valid access token and run again.")
		return
	}

	fmt.Println("\n2. Signing a payload...")
	result := sess.CreateMessageFields(ctx, "Hello from elo-auth-go!")
	if result.Err != nil {
		logger.Fatal().Err(result.Err).Msg("failed to sign")
	}
	for _, field := range result.Fields {
		fmt.Printf("   %s: %s\n", field.Key, field.Value)
	}

	fmt.Println("\n3. Sending an authenticated message...")
	client, err := transport.NewSessionAuthenticatedClient(ctx, sess, &a2a.AgentCard{
		Name:               "Example Agent",
		URL:                agentURL,
		PreferredTransport: a2a.TransportProtocolJSONRPC,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create client")
	}
	defer client.Destroy()

	reply, err := client.SendMessage(ctx, &a2a.MessageSendParams{
		Message: a2a.NewMessage(a2a.MessageRoleUser, &a2a.TextPart{Text: "Hello from elo-auth-go!"}),
	})
	if err != nil {
		fmt.Printf("   Send failed: %v\n", err)
		return
	}
	fmt.Printf("   Received: %T\n", reply)
}
