// Package arch defines the contract this library expects from an external
// trainable model.  The model itself (network layers, optimizer, training
// loop) lives behind the interface; only hyperparameter handling is owned
// here, as an explicit config struct validated at construction.
package arch

import (
	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

// Model is an opaque trainable collaborator.
type Model interface {
	Fit(features, labels [][]float64) (History, error)
	Predict(features [][]float64) ([][]float64, error)
}

// History summarizes one Fit call.
type History struct {
	Epochs  int
	Loss    []float64
	Metrics map[string][]float64
}

// ModelConfig enumerates every recognized model option with its default.
type ModelConfig struct {
	Loss              string
	LearningRate      float64
	OutputDim         int
	OutputActivation  string
	Metrics           []string
	CheckpointPath    string
	EarlyStopPatience int
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Loss:             "categorical_crossentropy",
		LearningRate:     0.001,
		OutputDim:        2,
		OutputActivation: "softmax",
		Metrics:          []string{"acc"},
	}
}

// Validate checks the config eagerly, at construction rather than first use.
func (cfg *ModelConfig) Validate() error {
	if cfg.Loss == "" {
		return errors.Wrap(goef.ErrBadOption, "loss must be set")
	}
	if cfg.LearningRate <= 0 {
		return errors.Wrapf(goef.ErrBadOption, "learning_rate %v must be > 0", cfg.LearningRate)
	}
	if cfg.OutputDim < 1 {
		return errors.Wrapf(goef.ErrBadOption, "output_dim %d must be >= 1", cfg.OutputDim)
	}
	if cfg.EarlyStopPatience < 0 {
		return errors.Wrapf(goef.ErrBadOption, "early_stop_patience %d must be >= 0", cfg.EarlyStopPatience)
	}
	return nil
}

// NewModelConfig applies loose option pairs over the defaults.  Unknown keys
// are rejected here, not accumulated and discovered later.
func NewModelConfig(opts map[string]interface{}) (ModelConfig, error) {
	cfg := DefaultModelConfig()

	for key, val := range opts {
		ok := true
		switch key {
		case "loss":
			cfg.Loss, ok = val.(string)
		case "learning_rate":
			cfg.LearningRate, ok = val.(float64)
		case "output_dim":
			cfg.OutputDim, ok = val.(int)
		case "output_act":
			cfg.OutputActivation, ok = val.(string)
		case "metrics":
			cfg.Metrics, ok = val.([]string)
		case "filepath":
			cfg.CheckpointPath, ok = val.(string)
		case "patience":
			cfg.EarlyStopPatience, ok = val.(int)
		default:
			return ModelConfig{}, errors.Wrapf(goef.ErrBadOption, "option %q", key)
		}
		if !ok {
			return ModelConfig{}, errors.Wrapf(goef.ErrBadOption, "option %q has wrong type", key)
		}
	}

	if err := cfg.Validate(); err != nil {
		return ModelConfig{}, err
	}
	return cfg, nil
}
