package helper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
)

// modelsDir is where local NER models are cached once downloaded.
const modelsDir = "./models"

// PrepareModel returns the local path to modelName, downloading it via
// hugot if it isn't already cached. onnxFilePath selects which ONNX
// artifact inside the model repo to fetch; it is ignored when the model is
// already present on disk.
func PrepareModel(modelName, onnxFilePath string) (string, error) {
	sanitized := strings.ReplaceAll(modelName, "/", "_")
	modelPath := filepath.Join(modelsDir, sanitized)

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelsDir, 0750); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		if onnxFilePath != "" {
			downloadOptions.OnnxFilePath = onnxFilePath
		}
		downloadedPath, err := hugot.DownloadModel(modelName, modelsDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		return downloadedPath, nil
	}

	return modelPath, nil
}
