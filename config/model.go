package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avollmer/deepfeat/logging"
)

// ModelFiles locates the pretrained CNN on disk. Loading the network is the
// extraction pipeline's job; this package only resolves the paths.
type ModelFiles struct {
	Definition string // network definition (*deploy.prototxt)
	Weights    string // pretrained weights (*.caffemodel)
}

// ResolveModel finds the model definition and weight files inside a model
// directory. Both must be present.
func ResolveModel(dir string) (ModelFiles, error) {
	logger := logging.WithFields(logging.Fields{"component": "config", "model_dir": dir})

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ModelFiles{}, &ConfigError{Msg: fmt.Sprintf("model directory %s does not exist", dir)}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ModelFiles{}, fmt.Errorf("read model directory %s: %w", dir, err)
	}

	var files ModelFiles
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case files.Definition == "" && strings.HasSuffix(name, "deploy.prototxt"):
			files.Definition = filepath.Join(dir, name)
		case files.Weights == "" && strings.HasSuffix(name, ".caffemodel"):
			files.Weights = filepath.Join(dir, name)
		}
	}

	if files.Definition == "" {
		return ModelFiles{}, &ConfigError{Msg: fmt.Sprintf("no model definition found in %s", dir)}
	}
	if files.Weights == "" {
		return ModelFiles{}, &ConfigError{Msg: fmt.Sprintf("no model weights found in %s", dir)}
	}

	logger.Info("Resolved model files", logging.Fields{
		"definition": files.Definition,
		"weights":    files.Weights,
	})
	return files, nil
}

// FindWavFiles recursively collects the .wav files under folder. Matching
// is case-insensitive on the extension; traversal order is lexical, so the
// result is deterministic.
func FindWavFiles(folder string) ([]string, error) {
	var wavs []string
	err := filepath.WalkDir(folder, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".wav") {
			wavs = append(wavs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan folder %s: %w", folder, err)
	}
	return wavs, nil
}
