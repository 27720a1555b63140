package growth

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

// FeatureCount is the fixed length of the step feature vector.
const FeatureCount = 8

// ClassifierKind names the output the classifier produces. The kind is fixed
// at load time; callers never re-probe per prediction.
type ClassifierKind string

const (
	KindProbability ClassifierKind = "probability"
	KindDecision    ClassifierKind = "decision"
	KindLabel       ClassifierKind = "label"
)

// Classifier scores a fixed-order feature vector. The meaning of the score
// depends on Kind: a probability, a raw decision score, or a 0/1 class label.
type Classifier interface {
	Kind() ClassifierKind
	Score(features []float64) (float64, error)
}

type linearClassifier struct {
	kind    ClassifierKind
	weights []float64
	bias    float64
}

func (c *linearClassifier) Kind() ClassifierKind {
	return c.kind
}

func (c *linearClassifier) Score(features []float64) (float64, error) {
	if len(features) != len(c.weights) {
		return 0, fmt.Errorf("expected %d features, got %d", len(c.weights), len(features))
	}

	raw := c.bias
	for i, w := range c.weights {
		raw += w * features[i]
	}

	if c.kind == KindLabel {
		if raw >= 0 {
			return 1, nil
		}
		return 0, nil
	}
	return raw, nil
}

type modelFile struct {
	Kind    ClassifierKind `json:"kind"`
	Weights []float64      `json:"weights"`
	Bias    float64        `json:"bias"`
}

func loadClassifier(path string) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}

	switch mf.Kind {
	case KindProbability, KindDecision, KindLabel:
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", mf.Kind)
	}
	if len(mf.Weights) != FeatureCount {
		return nil, fmt.Errorf("model has %d weights, expected %d", len(mf.Weights), FeatureCount)
	}

	return &linearClassifier{kind: mf.Kind, weights: mf.Weights, bias: mf.Bias}, nil
}

// ModelInfo describes the classifier behind a prediction, so callers can tell
// real model output from the heuristic approximation.
type ModelInfo struct {
	ModelPath string `json:"model_path"`
	ModelType string `json:"model_type"`
	IsLoaded  bool   `json:"is_loaded"`
}

// ModelManager wraps the classifier handle. classifier == nil is the explicit
// absent-with-heuristic state: predictions fall back to a weighted average of
// the intent, signal, and engagement feature slots.
type ModelManager struct {
	path       string
	classifier Classifier
}

func NewModelManager(path string) *ModelManager {
	m := &ModelManager{path: path}

	classifier, err := loadClassifier(path)
	if err != nil {
		logger.Warn("Classifier unavailable, using heuristic scoring",
			zap.String("path", path),
			zap.Error(err),
		)
		return m
	}

	m.classifier = classifier
	logger.Info("Classifier loaded",
		zap.String("path", path),
		zap.String("kind", string(classifier.Kind())),
	)
	return m
}

// NewModelManagerWithClassifier builds a manager around an injected
// classifier. A nil classifier yields the heuristic-only manager.
func NewModelManagerWithClassifier(classifier Classifier) *ModelManager {
	return &ModelManager{classifier: classifier}
}

func (m *ModelManager) Loaded() bool {
	return m.classifier != nil
}

// PredictResponseProbability maps a feature vector to a response probability
// in [0,1]. It never fails: classifier errors degrade to the heuristic.
func (m *ModelManager) PredictResponseProbability(features []float64) float64 {
	if m.classifier == nil {
		return heuristicProbability(features)
	}

	score, err := m.classifier.Score(features)
	if err != nil {
		logger.Warn("Classifier scoring failed, using heuristic", zap.Error(err))
		return heuristicProbability(features)
	}

	var proba float64
	switch m.classifier.Kind() {
	case KindProbability, KindLabel:
		proba = score
	case KindDecision:
		proba = 1.0 / (1.0 + math.Exp(-score))
	}

	if math.IsNaN(proba) || math.IsInf(proba, 0) {
		logger.Warn("Classifier produced non-finite score, using heuristic")
		return heuristicProbability(features)
	}

	return clamp01(proba)
}

// heuristicProbability is the fallback: 0.4*intent + 0.3*signal +
// 0.3*engagement over the normalized feature slots, clamped to [0.05, 0.95].
func heuristicProbability(features []float64) float64 {
	intent, signal, engagement := 0.5, 0.5, 0.5
	if len(features) > 0 {
		intent = features[0]
	}
	if len(features) > 1 {
		signal = features[1]
	}
	if len(features) > 2 {
		engagement = features[2]
	}

	base := 0.4*intent + 0.3*signal + 0.3*engagement
	return clamp(0.05, 0.95, base)
}

func (m *ModelManager) Info() ModelInfo {
	info := ModelInfo{
		ModelPath: m.path,
		IsLoaded:  m.classifier != nil,
	}
	if m.classifier != nil {
		info.ModelType = string(m.classifier.Kind())
	} else {
		info.ModelType = "heuristic"
	}
	return info
}
