package detect

import (
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

// minWordConfidence filters out OCR noise; watermark text is usually
// rendered cleanly and scores high.
const minWordConfidence = 60.0

// TextRegion is one detected word with its bounding box in image
// coordinates.
type TextRegion struct {
	Text       string
	Bounds     geometry.RectInt
	Confidence float64
}

// Engine locates text regions using Tesseract.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates a new detection engine.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Watermarks are arbitrary strings, not dictionary words; disable
	// dictionary correction so Tesseract reports what is actually there.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// FindTextRegions runs OCR over the whole picture and returns word
// bounding boxes above the confidence cutoff.
func (e *Engine) FindTextRegions(img image.Image) ([]TextRegion, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to scan")
	}

	processed, err := preprocess(img)
	if err != nil {
		return nil, err
	}
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	if err := e.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	var regions []TextRegion
	for _, box := range boxes {
		if box.Confidence < minWordConfidence || box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: box.Confidence,
			Bounds: geometry.RectInt{
				X:      box.Box.Min.X,
				Y:      box.Box.Min.Y,
				Width:  box.Box.Dx(),
				Height: box.Box.Dy(),
			},
		})
	}

	log.Debug().
		Int("words", len(boxes)).
		Int("kept", len(regions)).
		Msg("text detection complete")

	return regions, nil
}

// preprocess binarises the picture so semi-transparent watermark text
// separates from the photo behind it. The threshold comes from the
// image's channel statistics.
func preprocess(img image.Image) (gocv.Mat, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorRGBToGray)

	thresh := ComputeChannelMetrics(img).Threshold()
	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, float32(thresh), 255, gocv.ThresholdBinary)
	gray.Close()

	return binary, nil
}
