package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"employee-reports/internal/model"
	"employee-reports/pkg/utils"
)

// jsonIndent is the indentation of written documents.
const jsonIndent = "    "

// Serializer persists a report under a destination name and returns the
// path it wrote.
type Serializer interface {
	Serialize(data any, name string) (string, error)
}

// SerializerFor returns the serializer of an output format.
func SerializerFor(format model.OutputFormat, output *utils.OutputManager) (Serializer, error) {
	switch format {
	case model.FormatJSON:
		return &JSONSerializer{Output: output}, nil
	default:
		return nil, utils.NewUnknownFormatError(string(format))
	}
}

// JSONSerializer writes indented UTF-8 JSON documents.
type JSONSerializer struct {
	Output *utils.OutputManager
}

// Serialize encodes data and writes it to name, appending .json if absent.
// The document is fully encoded before the destination is touched, and is
// written through a temporary file so a failure never leaves a partial file.
func (s *JSONSerializer) Serialize(data any, name string) (string, error) {
	output := s.Output
	if output == nil {
		output = utils.NewOutputManager("")
	}

	path, err := output.GetOutputFilePath(name, model.FormatJSON.Extension())
	if err != nil {
		return "", utils.NewSerializationError(name, err)
	}

	body, err := EncodeJSON(data)
	if err != nil {
		return "", utils.NewSerializationError(path, err)
	}

	if err := writeFileAtomic(path, body); err != nil {
		return "", utils.NewSerializationError(path, err)
	}
	return path, nil
}

// EncodeJSON renders data with four-space indentation and without escaping
// HTML or non-ASCII characters.
func EncodeJSON(data any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", jsonIndent)
	if err := encoder.Encode(data); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadReport parses a report document written by JSONSerializer.
func ReadReport(path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewInputAccessError(path, err)
	}
	report := model.NewReport()
	if err := json.Unmarshal(data, report); err != nil {
		return nil, utils.NewParseError(path, 1, "document", err)
	}
	return report, nil
}

func writeFileAtomic(path string, body []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
