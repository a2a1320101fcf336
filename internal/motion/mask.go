package motion

import "github.com/brightloop/camwatch/internal/models"

// binarize implements spec §4.2 step 3: pixels strictly greater than the
// threshold become 255, else 0.
func binarize(raw []float64, threshold int) []uint8 {
	out := make([]uint8, len(raw))
	t := float64(threshold)
	for i, v := range raw {
		if v > t {
			out[i] = 255
		}
	}
	return out
}

func foregroundRatio(mask []uint8) float64 {
	if len(mask) == 0 {
		return 0
	}
	nonzero := 0
	for _, v := range mask {
		if v != 0 {
			nonzero++
		}
	}
	return float64(nonzero) / float64(len(mask))
}

// morphologicalOpen erodes then dilates a binary mask with a square
// structuring element of the given side, using separable min/max passes —
// exact for a full square kernel and far cheaper than a 2D sliding window.
func morphologicalOpen(mask []uint8, w, h, kernelSize int) []uint8 {
	if kernelSize <= 1 {
		return mask
	}
	eroded := boxFilter(mask, w, h, kernelSize, false)
	return boxFilter(eroded, w, h, kernelSize, true)
}

// boxFilter applies a k×k min (dilate=false) or max (dilate=true) filter,
// separated into a horizontal pass then a vertical pass.
func boxFilter(mask []uint8, w, h, kernelSize int, dilate bool) []uint8 {
	radius := kernelSize / 2
	tmp := make([]uint8, w*h)
	out := make([]uint8, w*h)

	for y := 0; y < h; y++ {
		row := mask[y*w : y*w+w]
		for x := 0; x < w; x++ {
			tmp[y*w+x] = windowReduce(row, x, radius, dilate)
		}
	}

	col := make([]uint8, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = tmp[y*w+x]
		}
		for y := 0; y < h; y++ {
			out[y*w+x] = windowReduce(col, y, radius, dilate)
		}
	}
	return out
}

func windowReduce(line []uint8, center, radius int, dilate bool) uint8 {
	lo := center - radius
	if lo < 0 {
		lo = 0
	}
	hi := center + radius
	if hi > len(line)-1 {
		hi = len(line) - 1
	}
	result := line[lo]
	for i := lo + 1; i <= hi; i++ {
		if dilate {
			if line[i] > result {
				result = line[i]
			}
		} else {
			if line[i] < result {
				result = line[i]
			}
		}
	}
	return result
}

type component struct {
	area int
	bbox models.BBox
}

// findComponents locates 4-connected foreground regions, approximating the
// source's cv2.findContours(RETR_EXTERNAL) + boundingRect/contourArea pair:
// area is the pixel count of the component and bbox is its bounding
// rectangle.
func findComponents(mask []uint8, w, h int) []component {
	visited := make([]bool, len(mask))
	var comps []component

	stack := make([]int, 0, 64)
	for start := 0; start < len(mask); start++ {
		if mask[start] == 0 || visited[start] {
			continue
		}

		minX, minY := w, h
		maxX, maxY := -1, -1
		area := 0

		stack = stack[:0]
		stack = append(stack, start)
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

			for _, n := range neighbors4(x, y, w, h) {
				if mask[n] != 0 && !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}

		comps = append(comps, component{
			area: area,
			bbox: models.BBox{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1},
		})
	}
	return comps
}

func neighbors4(x, y, w, h int) []int {
	var out []int
	if x > 0 {
		out = append(out, y*w+x-1)
	}
	if x < w-1 {
		out = append(out, y*w+x+1)
	}
	if y > 0 {
		out = append(out, (y-1)*w+x)
	}
	if y < h-1 {
		out = append(out, (y+1)*w+x)
	}
	return out
}
