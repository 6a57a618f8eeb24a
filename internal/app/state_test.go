package app

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode temp image: %v", err)
	}
	return path
}

// stubEditor returns a fixed image without touching OpenCV or the network.
type stubEditor struct {
	result image.Image
	err    error
	calls  int
}

func (s *stubEditor) Edit(ctx context.Context, img image.Image, m image.Image) (image.Image, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubEditor) Name() string { return "stub" }

func paintStroke(s *State) {
	s.Mask.BeginStroke(geometry.Point2D{X: 5, Y: 5}, 10)
	s.Mask.ExtendStroke(geometry.Point2D{X: 15, Y: 5})
	s.Mask.CommitStroke()
}

func TestLoadImageResetsMask(t *testing.T) {
	s := NewState()
	if err := s.LoadImage(writeTestPNG(t, 40, 30)); err != nil {
		t.Fatalf("LoadImage() error: %v", err)
	}
	paintStroke(s)
	if !s.Mask.HasContent() {
		t.Fatal("stroke did not commit")
	}

	if err := s.LoadImage(writeTestPNG(t, 20, 10)); err != nil {
		t.Fatalf("second LoadImage() error: %v", err)
	}
	if s.Mask.HasContent() {
		t.Error("mask should be cleared on image load")
	}
	if s.Result != nil {
		t.Error("result should be cleared on image load")
	}
}

func TestCanEditMaskRequiresImage(t *testing.T) {
	s := NewState()
	if s.CanEditMask() {
		t.Error("mask editing should be disabled before an image loads")
	}
	if s.ExportMask() != nil {
		t.Error("ExportMask() should be nil without an image")
	}
}

func TestExportMaskMatchesImageDimensions(t *testing.T) {
	s := NewState()
	if err := s.LoadImage(writeTestPNG(t, 64, 48)); err != nil {
		t.Fatalf("LoadImage() error: %v", err)
	}
	paintStroke(s)

	m := s.ExportMask()
	if m == nil {
		t.Fatal("ExportMask() = nil")
	}
	if m.Bounds().Dx() != 64 || m.Bounds().Dy() != 48 {
		t.Errorf("mask bounds = %v, want 64x48", m.Bounds())
	}
}

func TestRunEditRequiresMask(t *testing.T) {
	s := NewState()
	if err := s.RunEdit(context.Background()); err == nil {
		t.Error("RunEdit() without an image should fail")
	}

	if err := s.LoadImage(writeTestPNG(t, 32, 32)); err != nil {
		t.Fatalf("LoadImage() error: %v", err)
	}
	if err := s.RunEdit(context.Background()); err == nil {
		t.Error("RunEdit() with an empty mask should fail")
	}
}

func TestRunEditStoresResult(t *testing.T) {
	s := NewState()
	if err := s.LoadImage(writeTestPNG(t, 32, 32)); err != nil {
		t.Fatalf("LoadImage() error: %v", err)
	}
	paintStroke(s)

	stub := &stubEditor{result: image.NewRGBA(image.Rect(0, 0, 32, 32))}
	s.Editor = stub

	var resultEvents, busyEvents int
	s.On(EventResultReady, func(interface{}) { resultEvents++ })
	s.On(EventBusyChanged, func(interface{}) { busyEvents++ })

	if err := s.RunEdit(context.Background()); err != nil {
		t.Fatalf("RunEdit() error: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("editor called %d times, want 1", stub.calls)
	}
	if s.Result == nil {
		t.Fatal("Result not stored")
	}
	if resultEvents != 1 {
		t.Errorf("EventResultReady fired %d times, want 1", resultEvents)
	}
	if busyEvents != 2 {
		t.Errorf("EventBusyChanged fired %d times, want 2 (on and off)", busyEvents)
	}
	if s.Busy() {
		t.Error("state still busy after edit")
	}
}

func TestRunEditFailureKeepsState(t *testing.T) {
	s := NewState()
	if err := s.LoadImage(writeTestPNG(t, 16, 16)); err != nil {
		t.Fatalf("LoadImage() error: %v", err)
	}
	paintStroke(s)
	s.Editor = &stubEditor{err: errors.New("service unavailable")}

	if err := s.RunEdit(context.Background()); err == nil {
		t.Fatal("RunEdit() should propagate editor failure")
	}
	if s.Result != nil {
		t.Error("failed edit must not store a result")
	}
	if !s.Mask.HasContent() {
		t.Error("failed edit must keep the mask for retry")
	}
	if s.Busy() {
		t.Error("busy flag stuck after failure")
	}
}

func TestApplyResultPromotesWorkingPicture(t *testing.T) {
	s := NewState()
	if err := s.LoadImage(writeTestPNG(t, 16, 16)); err != nil {
		t.Fatalf("LoadImage() error: %v", err)
	}
	paintStroke(s)
	s.Editor = &stubEditor{result: image.NewRGBA(image.Rect(0, 0, 16, 16))}
	if err := s.RunEdit(context.Background()); err != nil {
		t.Fatalf("RunEdit() error: %v", err)
	}

	result := s.Result
	s.ApplyResult()
	if s.Picture == nil || s.Picture != result {
		t.Error("ApplyResult() did not promote the result")
	}
	if s.Result != nil {
		t.Error("Result should be cleared after apply")
	}
	if s.Mask.HasContent() {
		t.Error("mask should be cleared after apply")
	}
}

func TestBrushDiameter(t *testing.T) {
	s := NewState()
	if got := s.BrushDiameter(); got != DefaultBrushDiameter {
		t.Errorf("default diameter = %v, want %v", got, DefaultBrushDiameter)
	}
	s.SetBrushDiameter(72)
	if got := s.BrushDiameter(); got != 72 {
		t.Errorf("diameter = %v, want 72", got)
	}
}
