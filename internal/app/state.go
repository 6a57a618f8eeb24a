// Package app provides application state, lifecycle management, and events.
package app

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/liliping230531-pixel/qushuiyin/internal/detect"
	"github.com/liliping230531-pixel/qushuiyin/internal/edit"
	"github.com/liliping230531-pixel/qushuiyin/internal/mask"
	"github.com/liliping230531-pixel/qushuiyin/internal/picture"
	"github.com/liliping230531-pixel/qushuiyin/internal/viewport"
)

// DefaultBrushDiameter is the starting brush size in image pixels.
const DefaultBrushDiameter = 40.0

// State holds the application state: the loaded picture, its mask, the
// viewport, and the edit result.
type State struct {
	mu sync.RWMutex

	// Picture is the currently loaded source image, nil before the
	// first load.
	Picture *picture.Picture

	// Result is the most recent inpainted output, nil until an edit
	// succeeds. Cleared on image load.
	Result *picture.Picture

	// Mask accumulates brush strokes for the current picture.
	Mask *mask.Accumulator

	// View is the pan/zoom transform shared by the canvas.
	View *viewport.Viewport

	// Editor performs the inpainting.
	Editor edit.Editor

	// EditConfig is the loaded service configuration.
	EditConfig edit.Config

	brushDiameter float64
	busy          bool
	suggestions   []mask.Stroke

	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventMaskChanged
	EventBusyChanged
	EventResultReady
	EventSuggestionsChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state with the configured editor.
func NewState() *State {
	cfg, err := edit.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("using default edit service config")
	}

	return &State{
		Mask:          mask.NewAccumulator(),
		View:          viewport.New(),
		Editor:        edit.NewEditor(cfg),
		EditConfig:    cfg,
		brushDiameter: DefaultBrushDiameter,
		listeners:     make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadImage loads a picture and resets the mask, result, suggestions,
// and viewport to their initial state.
func (s *State) LoadImage(path string) error {
	p, err := picture.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Picture = p
	s.Result = nil
	s.suggestions = nil
	s.mu.Unlock()

	s.Mask.Reset()
	log.Info().Str("path", path).
		Int("width", p.Width()).Int("height", p.Height()).
		Float64("dpi", p.DPI).
		Msg("image loaded")

	s.Emit(EventImageLoaded, path)
	return nil
}

// HasImage reports whether a picture is loaded.
func (s *State) HasImage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Picture != nil
}

// BrushDiameter returns the current brush setting in image pixels.
func (s *State) BrushDiameter() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brushDiameter
}

// SetBrushDiameter updates the brush setting. Committed strokes keep
// the diameter they were drawn with; only new gestures (and the live
// preview of the current gesture) pick up the change.
func (s *State) SetBrushDiameter(d float64) {
	s.mu.Lock()
	s.brushDiameter = d
	s.mu.Unlock()
}

// Busy reports whether an edit request is in flight. Mask mutation is
// suspended while busy.
func (s *State) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

func (s *State) setBusy(b bool) {
	s.mu.Lock()
	s.busy = b
	s.mu.Unlock()
	s.Emit(EventBusyChanged, b)
}

// CanEditMask reports whether mask mutations are currently allowed.
func (s *State) CanEditMask() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Picture != nil && !s.busy
}

// UndoStroke removes the last committed stroke.
func (s *State) UndoStroke() {
	if !s.CanEditMask() {
		return
	}
	s.Mask.Undo()
	s.Emit(EventMaskChanged, nil)
}

// ResetMask clears all committed strokes.
func (s *State) ResetMask() {
	if !s.CanEditMask() {
		return
	}
	s.Mask.Reset()
	s.Emit(EventMaskChanged, nil)
}

// ExportMask rasterizes the committed strokes at the picture's native
// resolution. Returns nil when no image is loaded.
func (s *State) ExportMask() *image.Gray {
	s.mu.RLock()
	p := s.Picture
	s.mu.RUnlock()

	if p == nil {
		return nil
	}
	return mask.Rasterize(s.Mask.Snapshot(), p.Width(), p.Height())
}

// RunEdit rasterizes the mask and runs the editor. It blocks until the
// edit finishes; callers drive it from a background goroutine. Mask
// edits are disabled for the duration.
func (s *State) RunEdit(ctx context.Context) error {
	s.mu.RLock()
	p := s.Picture
	editor := s.Editor
	s.mu.RUnlock()

	if p == nil {
		return edit.ErrNoImage
	}
	if !s.Mask.HasContent() {
		return fmt.Errorf("mask is empty, paint over the watermark first")
	}
	if s.Busy() {
		return fmt.Errorf("an edit is already running")
	}

	s.setBusy(true)
	defer s.setBusy(false)

	m := mask.Rasterize(s.Mask.Snapshot(), p.Width(), p.Height())
	result, err := editor.Edit(ctx, p.Image, m)
	if err != nil {
		log.Error().Err(err).Str("engine", editor.Name()).Msg("edit failed")
		return err
	}

	s.mu.Lock()
	s.Result = picture.FromImage(result)
	s.mu.Unlock()

	s.Emit(EventResultReady, nil)
	return nil
}

// ApplyResult promotes the edit result to the working picture so the
// user can paint further touch-ups on it. The mask is cleared.
func (s *State) ApplyResult() {
	s.mu.Lock()
	if s.Result == nil {
		s.mu.Unlock()
		return
	}
	s.Picture = s.Result
	s.Result = nil
	s.suggestions = nil
	s.mu.Unlock()

	s.Mask.Reset()
	s.Emit(EventImageLoaded, "")
}

// SaveResult writes the edit result (or, if none, the current picture)
// to the given path, encoding by extension.
func (s *State) SaveResult(path string) error {
	s.mu.RLock()
	p := s.Result
	if p == nil {
		p = s.Picture
	}
	s.mu.RUnlock()

	if p == nil {
		return edit.ErrNoImage
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, p.Image, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(f, p.Image)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	log.Info().Str("path", path).Msg("result saved")
	return nil
}

// DetectWatermarks runs text detection over the loaded picture and
// stores the resulting stroke suggestions.
func (s *State) DetectWatermarks() error {
	s.mu.RLock()
	p := s.Picture
	s.mu.RUnlock()

	if p == nil {
		return edit.ErrNoImage
	}

	engine, err := detect.NewEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	regions, err := engine.FindTextRegions(p.Image)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.suggestions = detect.SuggestStrokes(regions)
	count := len(s.suggestions)
	s.mu.Unlock()

	log.Info().Int("suggestions", count).Msg("watermark detection complete")
	s.Emit(EventSuggestionsChanged, count)
	return nil
}

// Suggestions returns the pending detection suggestions.
func (s *State) Suggestions() []mask.Stroke {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]mask.Stroke, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// AcceptSuggestions commits all pending suggestions into the mask.
func (s *State) AcceptSuggestions() {
	if !s.CanEditMask() {
		return
	}

	s.mu.Lock()
	pending := s.suggestions
	s.suggestions = nil
	s.mu.Unlock()

	for _, stroke := range pending {
		s.Mask.Add(stroke)
	}
	if len(pending) > 0 {
		s.Emit(EventMaskChanged, nil)
	}
	s.Emit(EventSuggestionsChanged, 0)
}

// ClearSuggestions drops pending suggestions without committing them.
func (s *State) ClearSuggestions() {
	s.mu.Lock()
	s.suggestions = nil
	s.mu.Unlock()
	s.Emit(EventSuggestionsChanged, 0)
}
