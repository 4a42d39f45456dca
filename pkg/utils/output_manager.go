package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager handles output file organization and path management
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	if baseOutputDir == "" {
		baseOutputDir = "."
	}
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// EnsureExtension appends ext to name unless name already ends with it
// (compared case-insensitively).
func EnsureExtension(name, ext string) string {
	if ext == "" || strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}

// GetOutputFilePath resolves a report name to a full path with the given
// extension. Absolute names are kept as-is; relative ones land under BaseOutputDir.
func (om *OutputManager) GetOutputFilePath(name, ext string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("output name is empty")
	}
	name = EnsureExtension(name, ext)
	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(om.BaseOutputDir, name), nil
}

// EnsureOutputDir creates the base output directory and its parents.
func (om *OutputManager) EnsureOutputDir() error {
	if err := os.MkdirAll(om.BaseOutputDir, 0755); err != nil {
		return NewSerializationError(om.BaseOutputDir, err)
	}
	return nil
}
