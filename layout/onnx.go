//go:build onnx

package layout

import (
	"fmt"
	"math"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/tsawler/papertrail/model"
)

// ONNXClassifier scores blocks with an ONNX model. The model takes a
// [1, FeatureCount] float32 input named "features" and returns
// [1, len(LearnedRoles)] scores named "scores". Requires the onnxruntime
// shared library.
type ONNXClassifier struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	mu           sync.Mutex
}

// NewONNXClassifier loads the model at modelPath.
func NewONNXClassifier(modelPath string) (*ONNXClassifier, error) {
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, FeatureCount), make([]float32, FeatureCount))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewTensor(ort.NewShape(1, int64(len(LearnedRoles))), make([]float32, len(LearnedRoles)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"features"},
		[]string{"scores"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Name implements Classifier.
func (c *ONNXClassifier) Name() string { return "onnx" }

// Classify implements Classifier. Confidence is the softmax probability of
// the winning role.
func (c *ONNXClassifier) Classify(page *model.Page, stats PageStats, index int) (model.BlockLabel, error) {
	features := Features(page, stats, index)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return model.BlockLabel{}, fmt.Errorf("classifier closed")
	}
	copy(c.inputTensor.GetData(), features)
	if err := c.session.Run(); err != nil {
		return model.BlockLabel{}, fmt.Errorf("inference failed: %w", err)
	}

	best, conf := softmaxArgmax(c.outputTensor.GetData())
	return model.BlockLabel{
		BlockIndex: index,
		Role:       LearnedRoles[best],
		Confidence: conf,
		Source:     c.Name(),
	}, nil
}

// Close destroys the session and tensors.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.session != nil {
		err = c.session.Destroy()
		c.session = nil
	}
	if c.inputTensor != nil {
		_ = c.inputTensor.Destroy()
		c.inputTensor = nil
	}
	if c.outputTensor != nil {
		_ = c.outputTensor.Destroy()
		c.outputTensor = nil
	}
	return err
}

func softmaxArgmax(scores []float32) (int, float64) {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	var sum float64
	for _, s := range scores {
		sum += math.Exp(float64(s - scores[best]))
	}
	return best, 1 / sum
}
