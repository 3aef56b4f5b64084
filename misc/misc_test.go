package misc_test

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"testing"

	"FractalRenderer/misc"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("export: %w", misc.ErrCancelled), "Cancelled"},
		{misc.ErrExportActive, "Another export is still running"},
		{&misc.ComputationError{Stage: "downsample", Err: fmt.Errorf("%w: expected 2x2, got 1x1", misc.ErrShapeMismatch)}, "Could not downsample the image"},
		{&misc.ComputationError{Stage: "compute", Err: misc.ErrShapeMismatch}, "The compute step failed"},
		{&misc.ComputationError{Stage: "colorize", Err: misc.ErrShapeMismatch}, "The colorize step failed"},
		{fmt.Errorf("%w: server sent 3 bytes for 1x1", misc.ErrShapeMismatch), "The image has the wrong size"},
		{&misc.ConfigurationError{What: "fractal kernel", Name: "Newton", Err: misc.ErrNotFound}, "Unknown fractal kernel: Newton"},
		{&misc.ComputationError{Stage: "compute", Err: errors.New("boom")}, "The compute step failed"},
		{&misc.DataError{Algorithm: "Smooth", Missing: "moduli"}, "Coloring input was incomplete"},
		{errors.New("boom"), "Unexpected error"},
	}
	for _, c := range cases {
		if got := misc.Describe(c.err); got != c.want {
			t.Errorf("Describe(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestConfigurationErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("select: %w", &misc.ConfigurationError{What: "color map", Name: "Ice", Err: misc.ErrNotFound})
	if !errors.Is(err, misc.ErrNotFound) {
		t.Fatal("expected ErrNotFound in the chain")
	}
	if err.Error() != `select: color map "Ice": not found` {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFloorMod(t *testing.T) {
	cases := []struct{ i, n, want int }{
		{0, 4, 0},
		{5, 4, 1},
		{-1, 4, 3},
		{-8, 4, 0},
	}
	for _, c := range cases {
		if got := misc.FloorMod(c.i, c.n); got != c.want {
			t.Errorf("FloorMod(%d, %d) = %d, want %d", c.i, c.n, got, c.want)
		}
	}
}

func TestLerpRGBA(t *testing.T) {
	black := color.RGBA{A: 0}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 0}
	if got := misc.LerpRGBA(black, white, 0.5); got != (color.RGBA{R: 128, G: 128, B: 128, A: 255}) {
		t.Fatalf("midpoint = %v", got)
	}
	if got := misc.LerpRGBA(black, white, 2); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("overshoot = %v", got)
	}
	if got := misc.RoundChannel(-3); got != 0 {
		t.Fatalf("RoundChannel(-3) = %d", got)
	}
}

func TestRoundChannelHalvesToEven(t *testing.T) {
	cases := []struct {
		v    float64
		want uint8
	}{
		{0.5, 0},
		{1.5, 2},
		{2.5, 2},
		{126.5, 126},
		{127.5, 128},
		{254.5, 254},
		{300, 255},
	}
	for _, c := range cases {
		if got := misc.RoundChannel(c.v); got != c.want {
			t.Errorf("RoundChannel(%g) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestReadWriteFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.bin")
	written, err := misc.WriteFile(name, []byte("fractal"))
	if err != nil || written != 7 {
		t.Fatalf("WriteFile = %d, %v", written, err)
	}
	contents, err := misc.ReadFile(name)
	if err != nil || string(contents) != "fractal" {
		t.Fatalf("ReadFile = %q, %v", contents, err)
	}
	if _, err := misc.ReadFile(""); err == nil {
		t.Fatal("expected an error for an empty name")
	}
	if _, err := misc.ReadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestGetFreePort(t *testing.T) {
	port, err := misc.GetFreePort()
	if err != nil {
		t.Fatalf("GetFreePort: %v", err)
	}
	if port <= 0 || port > 65535 {
		t.Fatalf("port %d out of range", port)
	}
}
