package services

import (
	"image"
	"math"
)

// DetectChart reports whether an image looks chart-like: a dominant circle
// (pie chart) or long straight edge runs (bar chart axes/bars). Crude
// heuristic classifier; false positives and negatives are acceptable.
func DetectChart(img image.Image) bool {
	edges, w, h := edgeMap(img)
	if w < 16 || h < 16 {
		return false
	}
	return hasCircleSignal(edges, w, h) || hasLineSignal(edges, w, h)
}

// edgeMap downsamples the image to at most 256px on the long side and
// marks pixels whose Sobel gradient magnitude crosses a fixed threshold.
func edgeMap(img image.Image) ([]bool, int, int) {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, 0, 0
	}

	stride := 1
	if long := max(srcW, srcH); long > 256 {
		stride = (long + 255) / 256
	}
	w := srcW / stride
	h := srcH / stride
	if w < 3 || h < 3 {
		return nil, w, h
	}

	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x*stride, bounds.Min.Y+y*stride).RGBA()
			gray[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}

	edges := make([]bool, w*h)
	const threshold = 96.0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -gray[(y-1)*w+x-1] + gray[(y-1)*w+x+1] +
				-2*gray[y*w+x-1] + 2*gray[y*w+x+1] +
				-gray[(y+1)*w+x-1] + gray[(y+1)*w+x+1]
			gy := -gray[(y-1)*w+x-1] - 2*gray[(y-1)*w+x] - gray[(y-1)*w+x+1] +
				gray[(y+1)*w+x-1] + 2*gray[(y+1)*w+x] + gray[(y+1)*w+x+1]
			if math.Hypot(gx, gy) >= threshold {
				edges[y*w+x] = true
			}
		}
	}
	return edges, w, h
}

// hasCircleSignal checks whether edge points concentrate at a single
// radius around their centroid, the signature of a pie chart outline.
func hasCircleSignal(edges []bool, w, h int) bool {
	var cx, cy float64
	var count int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges[y*w+x] {
				cx += float64(x)
				cy += float64(y)
				count++
			}
		}
	}
	if count < 80 {
		return false
	}
	cx /= float64(count)
	cy /= float64(count)

	maxRadius := math.Hypot(float64(w), float64(h)) / 2
	const bins = 24
	hist := make([]int, bins)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !edges[y*w+x] {
				continue
			}
			r := math.Hypot(float64(x)-cx, float64(y)-cy)
			bin := int(r / maxRadius * float64(bins))
			if bin >= bins {
				bin = bins - 1
			}
			hist[bin]++
		}
	}

	// A circle puts most edge points into one narrow radius band.
	best := 0
	for i := 0; i+1 < bins; i++ {
		if v := hist[i] + hist[i+1]; v > best {
			best = v
		}
	}
	return float64(best)/float64(count) >= 0.6
}

// hasLineSignal counts rows and columns dominated by a single straight
// edge run, the signature of bar-chart axes and bars.
func hasLineSignal(edges []bool, w, h int) bool {
	longRuns := 0

	for y := 0; y < h; y++ {
		run, bestRun := 0, 0
		for x := 0; x < w; x++ {
			if edges[y*w+x] {
				run++
				if run > bestRun {
					bestRun = run
				}
			} else {
				run = 0
			}
		}
		if float64(bestRun) >= 0.5*float64(w) {
			longRuns++
		}
	}

	for x := 0; x < w; x++ {
		run, bestRun := 0, 0
		for y := 0; y < h; y++ {
			if edges[y*w+x] {
				run++
				if run > bestRun {
					bestRun = run
				}
			} else {
				run = 0
			}
		}
		if float64(bestRun) >= 0.5*float64(h) {
			longRuns++
		}
	}

	return longRuns >= 3
}
