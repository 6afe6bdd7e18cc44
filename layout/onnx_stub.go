//go:build !onnx

package layout

import (
	"errors"

	"github.com/tsawler/papertrail/model"
)

// ErrONNXNotEnabled is returned when the learned classifier is requested in
// a build without the onnx tag.
var ErrONNXNotEnabled = errors.New("ONNX classifier not enabled: build with -tags onnx and onnxruntime")

// ONNXClassifier stub type when built without the onnx tag (see onnx.go).
type ONNXClassifier struct{}

// NewONNXClassifier returns ErrONNXNotEnabled.
func NewONNXClassifier(_ string) (*ONNXClassifier, error) {
	return nil, ErrONNXNotEnabled
}

// Name implements Classifier.
func (c *ONNXClassifier) Name() string { return "onnx" }

// Classify implements Classifier.
func (c *ONNXClassifier) Classify(_ *model.Page, _ PageStats, _ int) (model.BlockLabel, error) {
	return model.BlockLabel{}, ErrONNXNotEnabled
}

// Close is a no-op.
func (c *ONNXClassifier) Close() error { return nil }
