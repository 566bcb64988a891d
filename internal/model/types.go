package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Tensor layouts accepted in metadata.
const (
	LayoutNCHW = "nchw"
	LayoutNHWC = "nhwc"
)

// Metadata describes the exported model: tensor names and shapes, the input
// image size and how pixels are packed into the input tensor.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	Layout      string   `json:"layout"`
	// Scale divides 8-bit channel values. 255 feeds [0,1], 1 feeds raw 0-255.
	Scale float32 `json:"scale"`
}

// Prediction is the arg-max of one forward pass.
type Prediction struct {
	Index      int                `json:"index"`
	Label      string             `json:"class"`
	Confidence float32            `json:"confidence"`
	Scores     map[string]float32 `json:"predictions"`
}

// LoadMetadata reads a metadata file and fills in defaults for optional fields.
func LoadMetadata(path string) (Metadata, error) {
	var metadata Metadata

	data, err := os.ReadFile(path)
	if err != nil {
		return metadata, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &metadata); err != nil {
		return metadata, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if metadata.InputName == "" {
		metadata.InputName = "input"
	}
	if metadata.OutputName == "" {
		metadata.OutputName = "output"
	}
	if metadata.Layout == "" {
		metadata.Layout = LayoutNCHW
	}
	if metadata.Scale == 0 {
		metadata.Scale = 255
	}
	return metadata, nil
}

// InputSize is the number of values the input tensor holds.
func (m Metadata) InputSize() int {
	return product(m.InputShape)
}

// Validate checks that the shapes agree with the image size and the class
// sequence the server will report.
func (m Metadata) Validate(classes []string) error {
	if m.ImageSize <= 0 {
		return fmt.Errorf("image_size must be positive, got %d", m.ImageSize)
	}
	if m.Layout != LayoutNCHW && m.Layout != LayoutNHWC {
		return fmt.Errorf("unknown layout %q", m.Layout)
	}
	if m.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", m.Scale)
	}
	if want := 3 * m.ImageSize * m.ImageSize; m.InputSize() != want {
		return fmt.Errorf("input shape %v holds %d values, expected %d for a %dx%d RGB image",
			m.InputShape, m.InputSize(), want, m.ImageSize, m.ImageSize)
	}
	if len(m.OutputShape) == 0 {
		return fmt.Errorf("output shape is empty")
	}
	if n := product(m.OutputShape); n != len(classes) {
		return fmt.Errorf("model outputs %d scores but %d class labels are configured", n, len(classes))
	}
	return nil
}

func product(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, dim := range shape {
		n *= int(dim)
	}
	return n
}
