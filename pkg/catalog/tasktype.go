package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TaskType is a closed category of work used to select eligible models.
type TaskType int

const (
	CodeAnalysis TaskType = iota
	CodeGeneration
	TextGeneration
	ImageAnalysis
	GeneralQA
	Documentation
	Debugging
	Optimization
)

var taskTypeNames = map[TaskType]string{
	CodeAnalysis:   "code_analysis",
	CodeGeneration: "code_generation",
	TextGeneration: "text_generation",
	ImageAnalysis:  "image_analysis",
	GeneralQA:      "general_qa",
	Documentation:  "documentation",
	Debugging:      "debugging",
	Optimization:   "optimization",
}

// String returns the canonical name of the task type.
func (t TaskType) String() string {
	if name, ok := taskTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("task_type(%d)", int(t))
}

// ParseTaskType resolves a canonical name back to its TaskType.
func ParseTaskType(name string) (TaskType, error) {
	for t, n := range taskTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown task type %q", name)
}

// MarshalYAML encodes the task type as its canonical name.
func (t TaskType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML decodes a canonical name into a TaskType.
func (t *TaskType) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseTaskType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
