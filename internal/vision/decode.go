package vision

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"
)

// DecodeImage decodes a JPEG or PNG byte slice, grounded on the Python
// predecessor's image_ops.decode_image.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG is the exported form of encodeJPEG for callers outside this
// package. No code outside the package calls it: frame bytes pass
// through the event writers unmodified and crops are encoded by Predict.
func EncodeJPEG(img image.Image, quality int) []byte {
	return encodeJPEG(img, quality)
}
