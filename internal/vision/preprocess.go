package vision

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"

	"github.com/brightloop/camwatch/internal/models"
)

// imageToFloat32CHW resizes img to targetW×targetH with a high-quality
// resampler and converts it to CHW float32 normalized to [0,1], the layout
// YOLO-family ONNX exports expect. Grounded on the teacher's
// imageToFloat32CHW (internal/vision/pipeline.go) but swaps the hand-rolled
// nearest-neighbor resizeImage for golang.org/x/image/draw's
// CatmullRom scaler — see DESIGN.md for why this dependency was pulled in
// from outside the primary teacher.
func imageToFloat32CHW(img image.Image, targetW, targetH int) []float32 {
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	out := make([]float32, 3*targetW*targetH)
	plane := targetW * targetH
	for y := 0; y < targetH; y++ {
		for x := 0; x < targetW; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()
			idx := y*targetW + x
			out[0*plane+idx] = float32(r>>8) / 255.0
			out[1*plane+idx] = float32(g>>8) / 255.0
			out[2*plane+idx] = float32(b>>8) / 255.0
		}
	}
	return out
}

// cropClip extracts the bbox region from img, clamped to the image bounds
// with no padding — per spec §4.3/§3, crops are clipped only, not padded
// (unlike the teacher's cropFace, which pads 20% for face-recognition
// crops).
func cropClip(img image.Image, bbox models.BBox) image.Image {
	b := img.Bounds()
	rect := image.Rect(
		clampInt(bbox.X, 0, b.Dx())+b.Min.X,
		clampInt(bbox.Y, 0, b.Dy())+b.Min.Y,
		clampInt(bbox.X+bbox.W, 0, b.Dx())+b.Min.X,
		clampInt(bbox.Y+bbox.H, 0, b.Dy())+b.Min.Y,
	)
	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}

func encodeJPEG(img image.Image, quality int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	return buf.Bytes()
}
