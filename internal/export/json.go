package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mgpai22/coursegen/internal/course"
)

type JSONExporter struct{}

func (e *JSONExporter) Export(content *course.Content, path string) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal course: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
