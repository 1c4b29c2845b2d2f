package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "codellama:7b-instruct", TaskTypes: []TaskType{CodeAnalysis}, Priority: 1, MemoryMB: 3800},
		{Name: "llama3:8b", TaskTypes: []TaskType{TextGeneration, GeneralQA}, Priority: 2, MemoryMB: 4700},
	}
}

func TestGetUnknownModel(t *testing.T) {
	c := New(testDescriptors(), nil)

	if _, err := c.Get("nope"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
	d, err := c.Get("llama3:8b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.MemoryMB != 4700 {
		t.Errorf("expected memory 4700, got %d", d.MemoryMB)
	}
}

func TestListSortedByPriority(t *testing.T) {
	c := New(testDescriptors(), nil)
	list := c.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 models, got %d", len(list))
	}
	if list[0].Name != "codellama:7b-instruct" {
		t.Errorf("expected codellama first, got %s", list[0].Name)
	}
}

func TestRefreshAvailabilityMarksInstalled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3:8b"}]}`))
	}))
	defer server.Close()

	c := New(testDescriptors(), nil, WithBaseURL(server.URL))
	c.RefreshAvailability(context.Background())

	d, _ := c.Get("llama3:8b")
	if !d.Available {
		t.Error("expected llama3:8b to be available")
	}
	d, _ = c.Get("codellama:7b-instruct")
	if d.Available {
		t.Error("expected codellama to be unavailable")
	}
}

func TestRefreshAvailabilityFailSoft(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "malformed response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := New(testDescriptors(), nil, WithBaseURL(server.URL))
			c.RefreshAvailability(context.Background())

			// Prior availability (initial true) must be unchanged.
			for _, d := range c.List() {
				if !d.Available {
					t.Errorf("model %s lost availability on failed refresh", d.Name)
				}
			}
		})
	}
}

func TestRefreshAvailabilityUnreachable(t *testing.T) {
	c := New(testDescriptors(), nil, WithBaseURL("http://127.0.0.1:1"))
	c.RefreshAvailability(context.Background())

	for _, d := range c.List() {
		if !d.Available {
			t.Errorf("model %s lost availability when provider unreachable", d.Name)
		}
	}
}

func TestParseTaskType(t *testing.T) {
	for _, name := range []string{"code_analysis", "debugging", "general_qa"} {
		tt, err := ParseTaskType(name)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		if tt.String() != name {
			t.Errorf("round trip: %s -> %s", name, tt.String())
		}
	}
	if _, err := ParseTaskType("juggling"); err == nil {
		t.Fatal("expected error for unknown task type")
	}
}
