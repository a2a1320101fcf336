// Package vision wraps the pretrained multi-class object detector behind
// the stateless contract required by spec §4.3: predict(image) →
// {persons, vehicles}. Grounded on the teacher's ONNX Runtime session
// lifecycle (internal/vision/detect.go, embed.go) adapted from a
// face-detection model to a YOLO-family COCO detector, per the Python
// predecessor's detector/yolo_detector.py.
package vision

import (
	"fmt"
	"image"
	"sort"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/brightloop/camwatch/internal/config"
	"github.com/brightloop/camwatch/internal/models"
)

// PersonClassID is the COCO class id for "person".
const PersonClassID = 0

// VehicleClassIDs are the COCO class ids treated as vehicles: bicycle,
// car, motorbike, bus, train, truck. Id 4 (airplane) is reserved and
// intentionally excluded.
var VehicleClassIDs = map[int]bool{1: true, 2: true, 3: true, 5: true, 6: true, 7: true}

// Classifier is a stateless wrapper around one ONNX Runtime session
// implementing a YOLO-family detector over 80 COCO classes. Constructed
// once; Predict may be called concurrently is NOT assumed (ORT sessions
// are single-threaded per call from this wrapper's perspective — the
// Detection stage invokes it serially per spec §5's ordering guarantee).
type Classifier struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]

	inputW, inputH int
	numClasses     int
	numBoxes       int

	confThreshold float64
	iouThreshold  float64
	vehicleConf   float64
}

// Prediction is the classifier's full output before crop encoding.
type Prediction struct {
	Persons  []models.Detection
	Vehicles []models.Detection
}

// NewClassifier loads the ONNX model at modelPath. inputW/inputH/numClasses
// describe the model's fixed input/output shape (YOLOv8-style export:
// output [1, 4+numClasses, numBoxes]).
func NewClassifier(cfg config.VisionConfig, inputW, inputH, numClasses, numBoxes int, opts *ort.SessionOptions) (*Classifier, error) {
	inputShape := ort.NewShape(1, 3, int64(inputH), int64(inputW))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, int64(4+numClasses), int64(numBoxes))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath(cfg),
		[]string{"images"},
		[]string{"output0"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create classifier session: %w", err)
	}

	return &Classifier{
		session:       session,
		inputTensor:   inputTensor,
		outputTensor:  outputTensor,
		inputW:        inputW,
		inputH:        inputH,
		numClasses:    numClasses,
		numBoxes:      numBoxes,
		confThreshold: cfg.ConfThreshold,
		iouThreshold:  cfg.IoUThreshold,
		vehicleConf:   cfg.VehicleConf,
	}, nil
}

func modelPath(cfg config.VisionConfig) string { return cfg.ModelPath }

// Predict implements spec §4.3's predict(image) contract: decode, run
// inference, gate by per-class confidence, package bbox + JPEG crop.
func (c *Classifier) Predict(img image.Image) (Prediction, error) {
	b := img.Bounds()
	origW, origH := b.Dx(), b.Dy()

	chw := imageToFloat32CHW(img, c.inputW, c.inputH)
	copy(c.inputTensor.GetData(), chw)

	if err := c.session.Run(); err != nil {
		return Prediction{}, fmt.Errorf("run classifier: %w", err)
	}

	raw := decodeYOLOOutput(c.outputTensor.GetData(), c.numClasses, c.numBoxes, c.confThreshold)
	raw = nmsPerClass(raw, c.iouThreshold)

	scaleX := float64(origW) / float64(c.inputW)
	scaleY := float64(origH) / float64(c.inputH)

	var pred Prediction
	for _, r := range raw {
		bbox := models.BBox{
			X: clampInt(int(r.x*scaleX), 0, origW),
			Y: clampInt(int(r.y*scaleY), 0, origH),
			W: clampInt(int(r.w*scaleX), 0, origW),
			H: clampInt(int(r.h*scaleY), 0, origH),
		}
		bbox.W = clampInt(bbox.X+bbox.W, 0, origW) - bbox.X
		bbox.H = clampInt(bbox.Y+bbox.H, 0, origH) - bbox.Y
		if bbox.W <= 0 || bbox.H <= 0 {
			continue
		}

		switch {
		case r.classID == PersonClassID:
			crop := cropClip(img, bbox)
			pred.Persons = append(pred.Persons, models.Detection{BBox: bbox, Score: r.score, CropBytes: encodeJPEG(crop, 90)})
		case VehicleClassIDs[r.classID]:
			if r.score < c.vehicleConf {
				continue
			}
			crop := cropClip(img, bbox)
			pred.Vehicles = append(pred.Vehicles, models.Detection{BBox: bbox, Score: r.score, CropBytes: encodeJPEG(crop, 90)})
		}
	}

	return pred, nil
}

func (c *Classifier) Close() {
	if c.session != nil {
		c.session.Destroy()
	}
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rawDetection is a pre-scaling decoded box in model input coordinates.
type rawDetection struct {
	x, y, w, h float64 // center-x, center-y, width, height (YOLO native box form)
	score      float64
	classID    int
}

// decodeYOLOOutput reads a [1, 4+numClasses, numBoxes] tensor (the common
// YOLOv8 export layout: four box components followed by per-class scores,
// transposed so boxes are the fast-varying axis) and keeps boxes whose best
// class score clears confThreshold.
func decodeYOLOOutput(data []float32, numClasses, numBoxes int, confThreshold float64) []rawDetection {
	var out []rawDetection
	for i := 0; i < numBoxes; i++ {
		bestScore := float64(-1)
		bestClass := -1
		for cls := 0; cls < numClasses; cls++ {
			s := float64(data[(4+cls)*numBoxes+i])
			if s > bestScore {
				bestScore = s
				bestClass = cls
			}
		}
		if bestScore < confThreshold {
			continue
		}
		cx := float64(data[0*numBoxes+i])
		cy := float64(data[1*numBoxes+i])
		w := float64(data[2*numBoxes+i])
		h := float64(data[3*numBoxes+i])
		out = append(out, rawDetection{
			x:       cx - w/2,
			y:       cy - h/2,
			w:       w,
			h:       h,
			score:   bestScore,
			classID: bestClass,
		})
	}
	return out
}

// nmsPerClass runs standard IoU-based non-maximum suppression within each
// class independently, matching the classifier's per-class IoU threshold.
func nmsPerClass(dets []rawDetection, iouThreshold float64) []rawDetection {
	byClass := make(map[int][]rawDetection)
	for _, d := range dets {
		byClass[d.classID] = append(byClass[d.classID], d)
	}

	var kept []rawDetection
	for _, group := range byClass {
		sort.Slice(group, func(i, j int) bool { return group[i].score > group[j].score })
		keep := make([]bool, len(group))
		for i := range keep {
			keep[i] = true
		}
		for i := 0; i < len(group); i++ {
			if !keep[i] {
				continue
			}
			for j := i + 1; j < len(group); j++ {
				if !keep[j] {
					continue
				}
				if iouRaw(group[i], group[j]) > iouThreshold {
					keep[j] = false
				}
			}
		}
		for i, d := range group {
			if keep[i] {
				kept = append(kept, d)
			}
		}
	}
	return kept
}

func iouRaw(a, b rawDetection) float64 {
	x1 := maxF(a.x, b.x)
	y1 := maxF(a.y, b.y)
	x2 := minF(a.x+a.w, b.x+b.w)
	y2 := minF(a.y+a.h, b.y+b.h)

	inter := maxF(0, x2-x1) * maxF(0, y2-y1)
	areaA := a.w * a.h
	areaB := b.w * b.h
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
