// Command qsy removes watermarks from images without the GUI.
//
// The mask comes either from a prepared mask image (-mask) or from
// automatic text detection (-detect). The cleaned image is written to
// the output path.
//
// Usage: qsy -in photo.jpg -out clean.png [-mask mask.png | -detect]
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/liliping230531-pixel/qushuiyin/internal/detect"
	"github.com/liliping230531-pixel/qushuiyin/internal/edit"
	"github.com/liliping230531-pixel/qushuiyin/internal/mask"
	"github.com/liliping230531-pixel/qushuiyin/internal/picture"
	"github.com/liliping230531-pixel/qushuiyin/internal/version"
)

func main() {
	inPath := flag.String("in", "", "input image path")
	outPath := flag.String("out", "", "output image path")
	maskPath := flag.String("mask", "", "mask image path (white = inpaint)")
	doDetect := flag.Bool("detect", false, "detect watermark text and build the mask automatically")
	saveMask := flag.String("save-mask", "", "optionally write the rasterized mask to this path")
	endpoint := flag.String("endpoint", "", "inpainting service URL (overrides config, empty = local)")
	method := flag.String("method", "", "local inpainting method: telea or ns (overrides config)")
	timeout := flag.Duration("timeout", 0, "edit timeout (overrides config)")
	verbose := flag.Bool("v", false, "verbose logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *showVersion {
		fmt.Printf("qsy %s (%s)\n", version.Version, version.GitCommit)
		return
	}

	if *inPath == "" || *outPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *maskPath == "" && !*doDetect {
		log.Fatal().Msg("either -mask or -detect is required")
	}

	if err := run(*inPath, *outPath, *maskPath, *saveMask, *endpoint, *method, *timeout, *doDetect); err != nil {
		log.Fatal().Err(err).Msg("watermark removal failed")
	}
}

func run(inPath, outPath, maskPath, saveMask, endpoint, method string, timeout time.Duration, doDetect bool) error {
	cfg, err := edit.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("using default edit service config")
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if method != "" {
		cfg.Method = method
	}
	if timeout > 0 {
		cfg.TimeoutSeconds = int(timeout.Seconds())
	}

	p, err := picture.Load(inPath)
	if err != nil {
		return err
	}
	log.Info().Str("path", inPath).
		Int("width", p.Width()).Int("height", p.Height()).
		Msg("image loaded")

	m, err := buildMask(p, maskPath, doDetect)
	if err != nil {
		return err
	}

	if saveMask != "" {
		if err := writePNG(saveMask, m); err != nil {
			return fmt.Errorf("failed to save mask: %w", err)
		}
		log.Info().Str("path", saveMask).Msg("mask saved")
	}

	editor := edit.NewEditor(cfg)
	log.Info().Str("engine", editor.Name()).Msg("running inpainting")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	start := time.Now()
	result, err := editor.Edit(ctx, p.Image, m)
	if err != nil {
		return err
	}
	log.Info().Dur("took", time.Since(start)).Msg("inpainting complete")

	if err := writePNG(outPath, result); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	log.Info().Str("path", outPath).Msg("result saved")
	return nil
}

// buildMask loads the mask from disk or synthesizes one from detected
// watermark text.
func buildMask(p *picture.Picture, maskPath string, doDetect bool) (*image.Gray, error) {
	if maskPath != "" {
		mp, err := picture.Load(maskPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load mask: %w", err)
		}
		if mp.Width() != p.Width() || mp.Height() != p.Height() {
			return nil, fmt.Errorf("mask is %dx%d but image is %dx%d",
				mp.Width(), mp.Height(), p.Width(), p.Height())
		}
		return toBinaryGray(mp.Image), nil
	}

	engine, err := detect.NewEngine()
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	regions, err := engine.FindTextRegions(p.Image)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("no watermark text detected, provide -mask instead")
	}
	for _, r := range regions {
		log.Debug().Str("text", r.Text).
			Float64("confidence", r.Confidence).
			Msgf("detected region at (%d,%d) %dx%d", r.Bounds.X, r.Bounds.Y, r.Bounds.Width, r.Bounds.Height)
	}
	log.Info().Int("regions", len(regions)).Msg("watermark text detected")

	return mask.Rasterize(detect.SuggestStrokes(regions), p.Width(), p.Height()), nil
}

// toBinaryGray forces a loaded mask to pure black and white. Any
// non-black pixel counts as "inpaint".
func toBinaryGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r|g|b != 0 {
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

func writePNG(path string, img image.Image) error {
	data, err := mask.EncodePNG(img)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
