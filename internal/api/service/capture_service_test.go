package service

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"courier/internal/api/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2x2 frame, rows top to bottom: [black, red] [green, blue], BGRA
func testFrame() models.CaptureFrame {
	return models.CaptureFrame{
		Width:  2,
		Height: 2,
		Pixels: []byte{
			0, 0, 0, 0, 0, 0, 255, 0,
			0, 255, 0, 0, 255, 0, 0, 0,
		},
	}
}

func TestFrameToImage(t *testing.T) {
	img, err := FrameToImage(testFrame(), false)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A, "black becomes transparent")
	assert.Equal(t, uint8(255), img.NRGBAAt(1, 0).R)
	assert.Equal(t, uint8(255), img.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 1).G)
	assert.Equal(t, uint8(255), img.NRGBAAt(1, 1).B)

	opaque, err := FrameToImage(testFrame(), true)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), opaque.NRGBAAt(0, 0).A)
}

func TestFrameToImage_Flip(t *testing.T) {
	frame := testFrame()
	frame.FlipVertical = true

	img, err := FrameToImage(frame, true)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).G, "bottom row comes first")
	assert.Equal(t, uint8(255), img.NRGBAAt(1, 1).R)
}

func TestFrameToImage_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		frame models.CaptureFrame
	}{
		{"zero size", models.CaptureFrame{}},
		{"short pixels", models.CaptureFrame{Width: 2, Height: 2, Pixels: make([]byte, 15)}},
		{"negative", models.CaptureFrame{Width: -1, Height: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FrameToImage(tt.frame, false)
			assert.ErrorIs(t, err, ErrInvalidFrame)
		})
	}
}

func saveAndWait(t *testing.T, svc *CaptureService, frame models.CaptureFrame, path string) models.EmailOutcome {
	t.Helper()
	done := make(chan struct{})
	var outcome models.EmailOutcome
	_, err := svc.SaveFrame(frame, path, func(o models.EmailOutcome) {
		outcome = o
		close(done)
	})
	require.NoError(t, err)
	pollUntil(t, svc.runtime.Manager, done)
	return outcome
}

func TestSaveFrame_WritesImages(t *testing.T) {
	runtime, _ := newTestRuntime(t)
	svc := NewCaptureService(runtime, zerolog.Nop())
	dir := t.TempDir()

	for _, name := range []string{"nested/shot.png", "shot.JPG", "shot.bmp"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			outcome := saveAndWait(t, svc, testFrame(), path)
			require.False(t, outcome.Failed(), outcome.Error)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}

	f, err := os.Open(filepath.Join(dir, "nested/shot.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
}

func TestSaveFrame_Failures(t *testing.T) {
	runtime, _ := newTestRuntime(t)
	svc := NewCaptureService(runtime, zerolog.Nop())
	dir := t.TempDir()

	outcome := saveAndWait(t, svc, testFrame(), filepath.Join(dir, "shot.gif"))
	assert.Equal(t, models.EmailFail, outcome.Result)
	assert.ErrorIs(t, outcome.Err, ErrUnsupportedFormat)

	outcome = saveAndWait(t, svc, models.CaptureFrame{Width: 1, Height: 1}, filepath.Join(dir, "shot.png"))
	assert.ErrorIs(t, outcome.Err, ErrInvalidFrame)
	assert.NoFileExists(t, filepath.Join(dir, "shot.png"))

	assert.Equal(t, 0, runtime.Manager.Pending())
}
