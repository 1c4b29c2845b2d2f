package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrUnknownModel is returned when a model is not present in the catalog.
var ErrUnknownModel = fmt.Errorf("unknown model")

// Descriptor describes one model known to the catalog.
type Descriptor struct {
	Name      string     `yaml:"name" json:"name"`
	TaskTypes []TaskType `yaml:"task_types" json:"task_types"`
	Priority  int        `yaml:"priority" json:"priority"`
	MemoryMB  int        `yaml:"memory_requirement_mb" json:"memory_requirement_mb"`
	Available bool       `yaml:"-" json:"is_available"`
}

// Supports reports whether the model handles the given task type.
func (d Descriptor) Supports(t TaskType) bool {
	for _, tt := range d.TaskTypes {
		if tt == t {
			return true
		}
	}
	return false
}

// Catalog is the registry of known models. Availability is the only
// mutable field and is owned here, refreshed on demand from the local
// inference server's tag listing.
type Catalog struct {
	mu      sync.RWMutex
	models  map[string]*Descriptor
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithBaseURL sets the inference-server endpoint used for availability refresh.
func WithBaseURL(url string) Option {
	return func(c *Catalog) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client used for availability refresh.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Catalog) {
		c.client = client
	}
}

// New creates a catalog from the given descriptors. All models start
// available; callers refresh before relying on the flag.
func New(descriptors []Descriptor, logger *zap.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		models:  make(map[string]*Descriptor, len(descriptors)),
		baseURL: "http://localhost:11434",
		client:  &http.Client{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	for i := range descriptors {
		d := descriptors[i]
		d.Available = true
		c.models[d.Name] = &d
	}
	return c
}

// Load reads catalog descriptors from a YAML file.
func Load(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Models []Descriptor `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("catalog file %s defines no models", path)
	}
	return file.Models, nil
}

// List returns all descriptors sorted by priority.
func (c *Catalog) List() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Descriptor, 0, len(c.models))
	for _, d := range c.models {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Get returns the descriptor for a model name.
func (c *Catalog) Get(name string) (Descriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.models[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return *d, nil
}

// tagsResponse mirrors the inference server's model listing envelope.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// RefreshAvailability queries the inference server's installed-model listing
// and marks each descriptor available by name membership. Any failure is
// logged and leaves prior availability untouched.
func (c *Catalog) RefreshAvailability(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		c.logger.Warn("availability refresh skipped", zap.Error(err))
		return
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("availability refresh failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("availability refresh failed",
			zap.Int("status", resp.StatusCode))
		return
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		c.logger.Warn("availability refresh returned malformed listing", zap.Error(err))
		return
	}

	installed := make(map[string]bool, len(tags.Models))
	for _, m := range tags.Models {
		installed[m.Name] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, d := range c.models {
		d.Available = installed[name]
		if !d.Available {
			c.logger.Debug("model not installed", zap.String("model", name))
		}
	}
}

// DefaultDescriptors returns the compiled-in model catalog.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			Name:      "codellama:7b-instruct",
			TaskTypes: []TaskType{CodeAnalysis, CodeGeneration, Debugging, Optimization, Documentation},
			Priority:  1,
			MemoryMB:  3800,
		},
		{
			Name:      "llama3:8b",
			TaskTypes: []TaskType{TextGeneration, GeneralQA, Documentation},
			Priority:  2,
			MemoryMB:  4700,
		},
		{
			Name:      "mistral:latest",
			TaskTypes: []TaskType{TextGeneration, GeneralQA},
			Priority:  3,
			MemoryMB:  4400,
		},
		{
			Name:      "llava:latest",
			TaskTypes: []TaskType{ImageAnalysis},
			Priority:  4,
			MemoryMB:  4700,
		},
		{
			Name:      "zephyr:7b-beta",
			TaskTypes: []TaskType{TextGeneration, GeneralQA},
			Priority:  5,
			MemoryMB:  4100,
		},
		{
			Name:      "gemma:2b",
			TaskTypes: []TaskType{TextGeneration, GeneralQA},
			Priority:  6,
			MemoryMB:  1700,
		},
	}
}
