// Package suggest proposes bounding boxes for salient regions of an
// image, giving annotators a starting point instead of a blank canvas.
package suggest

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/ilbumi/satin/pkg/geometry"
)

// Options configures proposal generation.
type Options struct {
	BlurKernel        int     // Gaussian kernel size, must be odd
	CleanupIterations int     // Morphological cleanup strength
	MinAreaFraction   float64 // Smallest region area relative to the image
	MaxAreaFraction   float64 // Largest region area relative to the image
	MaxProposals      int
}

// DefaultOptions returns default proposal options.
func DefaultOptions() Options {
	return Options{
		BlurKernel:        5,
		CleanupIterations: 2,
		MinAreaFraction:   0.0005,
		MaxAreaFraction:   0.5,
		MaxProposals:      20,
	}
}

// Proposal is a candidate bounding box in normalized coordinates.
type Proposal struct {
	Bounds geometry.Rect
	Score  float64 // region area relative to the image, larger first
}

// Propose segments img into foreground regions and returns their
// bounding boxes, best first.
func Propose(img image.Image, opts Options) ([]Proposal, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	if opts.BlurKernel < 3 || opts.BlurKernel%2 == 0 {
		opts.BlurKernel = DefaultOptions().BlurKernel
	}
	if opts.MaxProposals <= 0 {
		opts.MaxProposals = DefaultOptions().MaxProposals
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: opts.BlurKernel, Y: opts.BlurKernel},
		0, 0, gocv.BorderDefault)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(blurred, &mask, float32(adaptiveThreshold(blurred)), 255, gocv.ThresholdBinary)

	// The foreground should be the minority class. A mostly-white mask
	// means the objects are darker than the background, so invert.
	whiteRatio := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols())
	if whiteRatio > 0.5 {
		gocv.BitwiseNot(mask, &mask)
	}

	cleanupMask(&mask, opts.CleanupIterations)

	return collectProposals(mask, opts), nil
}

// adaptiveThreshold picks a cut between background and foreground from
// the intensity distribution, sampling a grid of pixels.
func adaptiveThreshold(gray gocv.Mat) float64 {
	rows, cols := gray.Rows(), gray.Cols()
	step := 4
	samples := make([]float64, 0, (rows/step+1)*(cols/step+1))
	for y := 0; y < rows; y += step {
		for x := 0; x < cols; x += step {
			samples = append(samples, float64(gray.GetUCharAt(y, x)))
		}
	}
	if len(samples) == 0 {
		return 127
	}

	mean, std := stat.MeanStdDev(samples, nil)
	threshold := mean + 0.5*std
	if threshold < 1 {
		threshold = 1
	}
	if threshold > 254 {
		threshold = 254
	}
	return threshold
}

func cleanupMask(mask *gocv.Mat, iterations int) {
	if iterations <= 0 {
		return
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()
	for i := 0; i < iterations; i++ {
		gocv.MorphologyEx(*mask, mask, gocv.MorphClose, kernel)
	}
	for i := 0; i < iterations; i++ {
		gocv.MorphologyEx(*mask, mask, gocv.MorphOpen, kernel)
	}
}

func collectProposals(mask gocv.Mat, opts Options) []Proposal {
	imgW := float64(mask.Cols())
	imgH := float64(mask.Rows())
	imgArea := imgW * imgH

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var result []Proposal
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		frac := area / imgArea
		if frac < opts.MinAreaFraction || frac > opts.MaxAreaFraction {
			continue
		}

		rect := gocv.BoundingRect(contours.At(i))
		bounds := geometry.NewRect(
			float64(rect.Min.X)/imgW,
			float64(rect.Min.Y)/imgH,
			float64(rect.Dx())/imgW,
			float64(rect.Dy())/imgH,
		)
		if !bounds.InUnitSquare() {
			continue
		}
		result = append(result, Proposal{Bounds: bounds, Score: frac})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Score > result[j].Score })
	if len(result) > opts.MaxProposals {
		result = result[:opts.MaxProposals]
	}
	return result
}
