package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"courier/internal/api/models"
	"courier/internal/latent"

	"github.com/rs/zerolog"
	"golang.org/x/image/bmp"
)

var ErrInvalidFrame = errors.New("invalid capture frame")

type imageEncoder func(w io.Writer, img image.Image) error

var captureEncoders = map[string]imageEncoder{
	".png":  png.Encode,
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".bmp":  bmp.Encode,
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
}

// CaptureService writes captured frames to disk as images
type CaptureService struct {
	logger  zerolog.Logger
	runtime *TaskRuntime
}

func NewCaptureService(runtime *TaskRuntime, logger zerolog.Logger) *CaptureService {
	return &CaptureService{logger: logger, runtime: runtime}
}

// SaveFrame schedules the encode and write of frame to imagePath; the encoder follows the file extension.
func (slf *CaptureService) SaveFrame(frame models.CaptureFrame, imagePath string, onComplete func(models.EmailOutcome)) (string, error) {
	action := &saveCaptureAction{
		service:    slf,
		frame:      frame,
		imagePath:  imagePath,
		onComplete: onComplete,
	}
	id, err := slf.runtime.dispatch(models.TaskKindCapture, action)
	if err != nil {
		return "", err
	}
	slf.logger.Info().Str("taskId", id).Str("path", imagePath).Msg("Capture save scheduled")
	return id, nil
}

// FrameToImage converts BGRA rows to an image. Pure black pixels become transparent unless opaque is set.
func FrameToImage(frame models.CaptureFrame, opaque bool) (*image.NRGBA, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		srcRow := y
		if frame.FlipVertical {
			srcRow = frame.Height - 1 - y
		}
		for x := 0; x < frame.Width; x++ {
			i := (srcRow*frame.Width + x) * 4
			b, g, r := frame.Pixels[i], frame.Pixels[i+1], frame.Pixels[i+2]
			a := uint8(255)
			if !opaque && r == 0 && g == 0 && b == 0 {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}
	return img, nil
}

func validateFrame(frame models.CaptureFrame) error {
	if frame.Width <= 0 || frame.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidFrame, frame.Width, frame.Height)
	}
	if len(frame.Pixels) != frame.Width*frame.Height*4 {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidFrame, frame.Width*frame.Height*4, len(frame.Pixels))
	}
	return nil
}

func writeImage(path string, img image.Image, encode imageEncoder) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return f.Close()
}

type saveCaptureAction struct {
	service    *CaptureService
	frame      models.CaptureFrame
	imagePath  string
	onComplete func(models.EmailOutcome)
	task       *latent.Task[struct{}]
	finished   bool
}

func (a *saveCaptureAction) Update(t *latent.Tick) {
	if t.First() {
		ext := strings.ToLower(filepath.Ext(a.imagePath))
		encode, ok := captureEncoders[ext]
		if !ok {
			err := fmt.Errorf("%w: image extension %q", ErrUnsupportedFormat, ext)
			a.finish(t, models.EmailOutcome{Result: models.EmailFail, Error: err.Error(), Err: err})
			return
		}
		if err := validateFrame(a.frame); err != nil {
			a.finish(t, models.EmailOutcome{Result: models.EmailFail, Error: err.Error(), Err: err})
			return
		}
		// conversion and write both run on the pool
		frame, path := a.frame, a.imagePath
		a.task = latent.Go(a.service.runtime.Pool, func(ctx context.Context) (struct{}, error) {
			img, err := FrameToImage(frame, ext == ".bmp")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, writeImage(path, img, encode)
		}, t.Wake())
		return
	}

	if !t.Woken() || !a.task.IsReady() {
		return
	}
	out, err := a.task.Consume()
	if err != nil {
		return
	}
	if out.Failed() {
		a.finish(t, models.EmailOutcome{Result: models.EmailFail, Error: out.Err, Err: errors.New(out.Err)})
		return
	}
	a.finish(t, models.EmailOutcome{Result: models.EmailSuccess})
}

func (a *saveCaptureAction) Abort(t *latent.Tick, reason string) {
	a.finish(t, models.EmailOutcome{Result: models.EmailFail, Error: reason, Err: errors.New(reason)})
}

func (a *saveCaptureAction) finish(t *latent.Tick, outcome models.EmailOutcome) {
	if a.finished {
		return
	}
	a.finished = true
	if outcome.Failed() {
		a.service.logger.Warn().Str("taskId", t.ID()).Str("error", outcome.Error).Msg("Capture not saved")
	} else {
		a.service.logger.Info().Str("taskId", t.ID()).Str("path", a.imagePath).Msg("Capture saved")
	}

	a.service.runtime.complete(t.ID(), models.TaskKindCapture, func(record *models.TaskRecord) {
		record.Error = outcome.Error
		if outcome.Failed() {
			record.Status = models.TaskStatusFailed
		} else {
			record.Status = models.TaskStatusSucceeded
		}
	})

	if a.onComplete != nil {
		a.onComplete(outcome)
	}
	t.Finish()
}
