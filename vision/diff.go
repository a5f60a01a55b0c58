package vision

import (
	"image"
	"image/draw"

	"github.com/blobmark/blobmark/config"
	"github.com/blobmark/blobmark/track"
)

// DiffExtractor is the bundled reference backend: it segments moving regions
// by thresholding the absolute difference between the blurred current frame
// and the blurred previous frame, then labels connected components. The first
// frame after construction or Reset yields no regions.
type DiffExtractor struct {
	prev *image.Gray
}

func NewDiffExtractor() *DiffExtractor {
	return &DiffExtractor{}
}

// Reset drops the reference frame, e.g. when the processing resolution
// changes between preview and export.
func (e *DiffExtractor) Reset() {
	e.prev = nil
}

// Extract segments moving regions of the frame. Candidates are reported in
// the frame's own (working) coordinate space.
func (e *DiffExtractor) Extract(frame image.Image, det config.Detection, scale float64) ([]track.Candidate, error) {
	gray := toGray(frame)
	blurred := boxBlur(gray, det.BlurSize)

	prev := e.prev
	e.prev = blurred
	if prev == nil || !prev.Rect.Eq(blurred.Rect) {
		return nil, nil
	}

	mask := threshold(blurred, prev, uint8(det.Threshold))
	return labelRegions(mask, blurred.Rect.Dx(), blurred.Rect.Dy()), nil
}

func toGray(frame image.Image) *image.Gray {
	if g, ok := frame.(*image.Gray); ok {
		return g
	}
	gray := image.NewGray(frame.Bounds())
	draw.Draw(gray, gray.Rect, frame, frame.Bounds().Min, draw.Src)
	return gray
}

// boxBlur applies a size×size mean filter. size is expected odd; even sizes
// are treated as size+1 by the settings normalizer before they get here.
func boxBlur(src *image.Gray, size int) *image.Gray {
	if size <= 1 {
		out := image.NewGray(src.Rect)
		copy(out.Pix, src.Pix)
		return out
	}
	radius := size / 2
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	// Two separable passes keep this O(w·h·size)
	tmp := image.NewGray(src.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum, count := 0, 0
			for k := -radius; k <= radius; k++ {
				xx := x + k
				if xx < 0 || xx >= w {
					continue
				}
				sum += int(src.Pix[y*src.Stride+xx])
				count++
			}
			tmp.Pix[y*tmp.Stride+x] = uint8(sum / count)
		}
	}
	out := image.NewGray(src.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum, count := 0, 0
			for k := -radius; k <= radius; k++ {
				yy := y + k
				if yy < 0 || yy >= h {
					continue
				}
				sum += int(tmp.Pix[yy*tmp.Stride+x])
				count++
			}
			out.Pix[y*out.Stride+x] = uint8(sum / count)
		}
	}
	return out
}

func threshold(cur, prev *image.Gray, thresh uint8) []bool {
	w := cur.Rect.Dx()
	h := cur.Rect.Dy()
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := cur.Pix[y*cur.Stride+x]
			b := prev.Pix[y*prev.Stride+x]
			d := a - b
			if b > a {
				d = b - a
			}
			mask[y*w+x] = d > thresh
		}
	}
	return mask
}

// labelRegions flood-fills 4-connected components of the row-major binary
// mask and reports each as a candidate with its bounding-box center and
// pixel-count area, all in working coordinate space.
func labelRegions(mask []bool, w, h int) []track.Candidate {
	if w <= 0 || h <= 0 {
		return nil
	}
	visited := make([]bool, len(mask))
	stack := make([]int, 0, 256)
	var cands []track.Candidate

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		minX, minY := w, h
		maxX, maxY := 0, 0
		area := 0
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%w, idx/w
			area++
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			for _, n := range [4]int{idx - 1, idx + 1, idx - w, idx + w} {
				if n < 0 || n >= len(mask) || visited[n] || !mask[n] {
					continue
				}
				// Prevent row wrap-around on horizontal neighbors
				if (n == idx-1 && x == 0) || (n == idx+1 && x == w-1) {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}
		bw := float64(maxX - minX + 1)
		bh := float64(maxY - minY + 1)
		cands = append(cands, track.Candidate{
			X:      float64(minX) + bw/2,
			Y:      float64(minY) + bh/2,
			Width:  bw,
			Height: bh,
			Area:   float64(area),
		})
	}
	return cands
}
