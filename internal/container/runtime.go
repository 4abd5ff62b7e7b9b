// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs command-line tools packaged as container images
// under docker or podman. The pdftotext conversion backend uses it so
// the host needs no poppler install.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Invocation describes one container run.
type Invocation struct {
	// Image is the image reference, e.g. "pdftotext:latest".
	Image string

	// Args are passed after the image name and override its command.
	Args []string

	// Network enables networking. Conversions run offline.
	Network bool
}

// argv returns the runtime arguments for inv.
func (inv Invocation) argv() []string {
	args := []string{"run", "--rm", "-i"}
	if !inv.Network {
		args = append(args, "--network", "none")
	}
	args = append(args, inv.Image)
	return append(args, inv.Args...)
}

// Runtime is a container engine able to run an image with piped I/O.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the binary is on PATH and its daemon or
	// service answers "info".
	Available(ctx context.Context) bool

	// ImageExists returns nil when image is present locally.
	ImageExists(ctx context.Context, image string) error

	// Run executes inv, streaming stdin into the container and its
	// standard output into stdout.
	Run(ctx context.Context, inv Invocation, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor runs real commands. Standard error is captured and attached
// to the returned error.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// engine implements Runtime. Docker and podman differ only in the binary
// and the subcommand that checks for a local image.
type engine struct {
	bin        string
	imageCheck []string
	exec       executor
}

func (e *engine) Name() string { return e.bin }

func (e *engine) Available(ctx context.Context) bool {
	if _, err := e.exec.LookPath(e.bin); err != nil {
		return false
	}
	return e.exec.RunSilent(ctx, e.bin, "info") == nil
}

func (e *engine) ImageExists(ctx context.Context, image string) error {
	args := append(append([]string{}, e.imageCheck...), image)
	if err := e.exec.RunSilent(ctx, e.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, e.bin, err)
	}
	return nil
}

func (e *engine) Run(ctx context.Context, inv Invocation, stdin io.Reader, stdout io.Writer) error {
	if inv.Image == "" {
		return fmt.Errorf("%s run: no image", e.bin)
	}
	if err := e.exec.RunPiped(ctx, e.bin, inv.argv(), stdin, stdout); err != nil {
		return fmt.Errorf("running %s in %s: %w", inv.Image, e.bin, err)
	}
	return nil
}

func newDocker(x executor) *engine {
	return &engine{bin: binDocker, imageCheck: []string{"image", "inspect"}, exec: x}
}

func newPodman(x executor) *engine {
	return &engine{bin: binPodman, imageCheck: []string{"image", "exists"}, exec: x}
}

// DetectRuntime returns docker when it is operational, else podman.
func DetectRuntime(ctx context.Context) (Runtime, error) {
	return detectRuntime(ctx, osExecutor{})
}

func detectRuntime(ctx context.Context, x executor) (Runtime, error) {
	for _, rt := range []*engine{newDocker(x), newPodman(x)} {
		if rt.Available(ctx) {
			return rt, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: neither %s nor %s is operational", binDocker, binPodman)
}
