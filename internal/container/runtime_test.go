// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records piped calls and answers from fixed tables.
type mockExecutor struct {
	onPath   map[string]bool // binary -> LookPath succeeds
	commands map[string]bool // "bin arg1 arg2" -> RunSilent succeeds
	piped    func(name string, args []string, stdin io.Reader, stdout io.Writer) error
	lastArgs []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.commands[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	m.lastArgs = append([]string{name}, args...)
	if m.piped != nil {
		return m.piped(name, args, stdin, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				onPath:   map[string]bool{"docker": true},
				commands: map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback",
			exec: &mockExecutor{
				onPath:   map[string]bool{"podman": true},
				commands: map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "docker on PATH but daemon down",
			exec: &mockExecutor{
				onPath:   map[string]bool{"docker": true, "podman": true},
				commands: map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "docker preferred",
			exec: &mockExecutor{
				onPath:   map[string]bool{"docker": true, "podman": true},
				commands: map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
		{
			name:    "neither",
			exec:    &mockExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(context.Background(), tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mk      func(executor) *engine
		cmds    map[string]bool
		wantErr bool
	}{
		{"docker found", newDocker, map[string]bool{"docker image inspect pdftotext:latest": true}, false},
		{"docker missing", newDocker, nil, true},
		{"podman found", newPodman, map[string]bool{"podman image exists pdftotext:latest": true}, false},
		{"podman missing", newPodman, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := tt.mk(&mockExecutor{commands: tt.cmds})
			err := rt.ImageExists(context.Background(), "pdftotext:latest")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "pdftotext:latest")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRun(t *testing.T) {
	t.Run("pipes stdin to stdout offline", func(t *testing.T) {
		x := &mockExecutor{piped: func(_ string, _ []string, stdin io.Reader, stdout io.Writer) error {
			data, _ := io.ReadAll(stdin)
			_, err := stdout.Write(append([]byte("text of "), data...))
			return err
		}}
		var out bytes.Buffer
		inv := Invocation{Image: "pdftotext:latest", Args: []string{"pdftotext", "-layout", "-", "-"}}
		err := newPodman(x).Run(context.Background(), inv, strings.NewReader("pdf"), &out)
		require.NoError(t, err)
		assert.Equal(t, "text of pdf", out.String())
		assert.Equal(t, []string{
			"podman", "run", "--rm", "-i", "--network", "none",
			"pdftotext:latest", "pdftotext", "-layout", "-", "-",
		}, x.lastArgs)
	})

	t.Run("network enabled", func(t *testing.T) {
		x := &mockExecutor{}
		err := newDocker(x).Run(context.Background(), Invocation{Image: "img", Network: true}, nil, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, []string{"docker", "run", "--rm", "-i", "img"}, x.lastArgs)
	})

	t.Run("failure wrapped", func(t *testing.T) {
		boom := errors.New("exit status 1")
		x := &mockExecutor{piped: func(string, []string, io.Reader, io.Writer) error { return boom }}
		err := newDocker(x).Run(context.Background(), Invocation{Image: "img"}, nil, io.Discard)
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "img")
	})

	t.Run("image required", func(t *testing.T) {
		err := newDocker(&mockExecutor{}).Run(context.Background(), Invocation{}, nil, io.Discard)
		assert.Error(t, err)
	})
}
