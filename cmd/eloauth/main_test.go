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

package main

import (
	"bytes"
	stdcrypto "crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/elo-auth-go/pkg/certificate/certificatetest"
	"github.com/sage-x-project/elo-auth-go/pkg/identity"
	"github.com/sage-x-project/elo-auth-go/pkg/signer"
)

// runCmd executes the root command with args and returns stdout
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), err
}

// setupEnv points the CLI at a fake certificate service
func setupEnv(t *testing.T) *certificatetest.Server {
	t.Helper()

	server, err := certificatetest.NewServer("cli-token")
	require.NoError(t, err)
	t.Cleanup(server.Close)

	t.Chdir(t.TempDir())
	t.Setenv("ELOAUTH_AUTH_ACCESS_TOKEN", "cli-token")
	t.Setenv("ELOAUTH_CERTIFICATE_URL", server.URL)
	t.Setenv("ELOAUTH_LOG_LEVEL", "error")
	return server
}

func TestSignCommand_Text(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "sign", "--uuid", "0/1", "--prefix", "mp-", "hello")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "mp-auth-uuid: 0/1", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "mp-auth-randomlong: "))
	assert.True(t, strings.HasPrefix(lines[5], "mp-elo-auth-data: "))
}

func TestSignCommand_JSONVerifies(t *testing.T) {
	server := setupEnv(t)

	out, err := runCmd(t, "sign", "--uuid", "069a79f4-44e9-4726-a5be-fca90e38aaf5", "-o", "json", "hello", "world")
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	require.Len(t, fields, 6)

	id := identity.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")
	assert.Equal(t, id.Bits(), fields["auth-uuid"])

	nonce, err := strconv.ParseInt(fields["auth-randomlong"], 10, 64)
	require.NoError(t, err)

	signature, err := base64.StdEncoding.DecodeString(fields["elo-auth-data"])
	require.NoError(t, err)

	digest := sha256.Sum256(signer.Canonicalize(id, nonce, "hello", "world"))
	assert.NoError(t, rsa.VerifyPKCS1v15(server.PublicKey(), stdcrypto.SHA256, digest[:], signature))
	assert.Equal(t, 1, server.Requests())
}

func TestSignCommand_MissingToken(t *testing.T) {
	setupEnv(t)
	t.Setenv("ELOAUTH_AUTH_ACCESS_TOKEN", "")

	_, err := runCmd(t, "sign", "--uuid", "0/1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.access_token")
}

func TestSignCommand_RejectedToken(t *testing.T) {
	setupEnv(t)
	t.Setenv("ELOAUTH_AUTH_ACCESS_TOKEN", "wrong-token")

	_, err := runCmd(t, "sign", "--uuid", "0/1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSignCommand_UnknownOutput(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "sign", "--uuid", "0/1", "-o", "xml", "hello")
	assert.Error(t, err)
}

func TestFetchCommand(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "fetch", "--uuid", "0/1")
	require.NoError(t, err)

	assert.Contains(t, out, "Identity:        00000000-0000-0000-0000-000000000001 (0/1)")
	assert.Contains(t, out, "Key type:        rsa")
	assert.Contains(t, out, "Status:          valid")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "elo-auth-go")
	assert.Contains(t, out, "protocol 70")

	out, err = runCmd(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"protocolVersion":"70"`)
}
