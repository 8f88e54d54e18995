package survey

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCaptureFile reads a capture from a YAML or JSON file and validates it.
func LoadCaptureFile(path string) (*Capture, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capture file: %w", err)
	}

	return ParseCapture(p)
}

// ParseCapture decodes a YAML or JSON capture document and validates it.
// Networks carrying only raw scanner fields get their security, technologies
// and information elements derived from them.
func ParseCapture(p []byte) (*Capture, error) {
	var c Capture
	if err := yaml.Unmarshal(p, &c); err != nil {
		return nil, fmt.Errorf("decoding capture: %w", err)
	}

	c.complete()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// WriteCaptureFile stores a capture as YAML.
func WriteCaptureFile(path string, c *Capture) error {
	p, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding capture: %w", err)
	}

	if err = os.WriteFile(path, p, 0o644); err != nil {
		return fmt.Errorf("writing capture file: %w", err)
	}
	return nil
}
