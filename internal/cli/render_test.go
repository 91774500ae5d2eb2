package cli

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	errs "github.com/matzehuels/tracklayout/pkg/errors"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"input stem", "", "data/track.toml", "data/track"},
		{"stdin", "", "-", "track"},
		{"svg extension stripped", "out.svg", "track.toml", "out"},
		{"json extension stripped", "out.json", "track.toml", "out"},
		{"unknown extension kept", "out.v2", "track.toml", "out.v2"},
		{"plain base", "renders/chr1", "track.toml", "renders/chr1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	_, out := newTestCLI(t)
	artifacts := map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte("{}"),
	}
	ctx := context.Background()

	paths, err := writeArtifacts(ctx, artifacts, []string{"svg", "json"}, "track.toml", "")
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	if strings.Join(paths, ",") != "track.svg,track.json" {
		t.Errorf("paths = %v, want [track.svg track.json]", paths)
	}

	paths, err = writeArtifacts(ctx, artifacts, []string{"svg"}, "track.toml", "chr1.svg")
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	if len(paths) != 1 || paths[0] != "chr1.svg" {
		t.Errorf("single format paths = %v, want [chr1.svg]", paths)
	}
	if data, _ := os.ReadFile("chr1.svg"); string(data) != "<svg/>" {
		t.Errorf("chr1.svg = %q", data)
	}

	paths, err = writeArtifacts(ctx, artifacts, []string{"svg"}, "-", "")
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	if paths != nil || out.String() != "<svg/>" {
		t.Errorf("stdin input: paths = %v, stdout = %q", paths, out.String())
	}
}

func TestRenderCommand(t *testing.T) {
	c, out := newTestCLI(t)
	input := writeTrack(t, "track.toml")

	if err := execute(t, c, "render", input, "-f", "svg,json"); err != nil {
		t.Fatalf("render error: %v", err)
	}

	svg, err := os.ReadFile("track.svg")
	if err != nil {
		t.Fatalf("read track.svg: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "bnd2") {
		t.Errorf("track.svg does not look like the rendered track")
	}

	data, err := os.ReadFile("track.json")
	if err != nil {
		t.Fatalf("read track.json: %v", err)
	}
	if !json.Valid(data) {
		t.Error("track.json is not valid JSON")
	}
	if !strings.Contains(out.String(), "Render complete") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	c, _ := newTestCLI(t)
	input := writeTrack(t, "track.toml")

	err := execute(t, c, "render", input, "-f", "pdf")
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
