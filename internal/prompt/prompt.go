// Package prompt resolves named prompt templates into concrete system and
// user prompts. Built-in templates can be overridden by YAML files.
package prompt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPrompt is returned for a namespace with no template.
var ErrUnknownPrompt = errors.New("prompt: unknown namespace")

// Namespaces of the built-in templates.
const (
	NamespaceBenchmarkComparison = "grading/benchmark-comparison"
	NamespaceIssueDeduplication  = "synthesis/issue-deduplication"
	NamespaceExecutiveSummary    = "synthesis/executive-summary"
)

// Prompt is a resolved prompt ready to send to the completion collaborator.
type Prompt struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

// Loader resolves a namespace and variables into a Prompt.
type Loader interface {
	Load(namespace string, vars map[string]any) (Prompt, error)
}

// Template is the stored form of a prompt.
type Template struct {
	Description string  `yaml:"description"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	System      string  `yaml:"system"`
	User        string  `yaml:"user"`
}

// Registry holds templates keyed by namespace.
type Registry struct {
	templates map[string]Template
}

// NewRegistry returns the built-in templates overlaid with any YAML files in
// dir. A file named "synthesis.executive-summary.yaml" overrides namespace
// "synthesis/executive-summary"; fields left empty keep the built-in value.
func NewRegistry(dir string) (*Registry, error) {
	r := &Registry{templates: make(map[string]Template, len(builtins))}
	for ns, t := range builtins {
		r.templates[ns] = t
	}
	if dir == "" {
		return r, nil
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("prompt: scan %s: %w", dir, err)
	}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("prompt: read %s: %w", path, err)
		}
		var t Template
		if err := yaml.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("prompt: parse %s: %w", path, err)
		}
		ns := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(path), ".yaml"), ".", "/")
		r.templates[ns] = overlay(r.templates[ns], t)
	}
	return r, nil
}

func overlay(base, o Template) Template {
	if o.Description != "" {
		base.Description = o.Description
	}
	if o.Model != "" {
		base.Model = o.Model
	}
	if o.Temperature != 0 {
		base.Temperature = o.Temperature
	}
	if o.System != "" {
		base.System = o.System
	}
	if o.User != "" {
		base.User = o.User
	}
	return base
}

// Namespaces lists the registered namespaces in sorted order.
func (r *Registry) Namespaces() []string {
	out := make([]string, 0, len(r.templates))
	for ns := range r.templates {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Load renders the template for namespace with vars. A variable referenced by
// the template but absent from vars is an error.
func (r *Registry) Load(namespace string, vars map[string]any) (Prompt, error) {
	t, ok := r.templates[namespace]
	if !ok {
		return Prompt{}, fmt.Errorf("%w %q", ErrUnknownPrompt, namespace)
	}
	system, err := render(namespace+"#system", t.System, vars)
	if err != nil {
		return Prompt{}, err
	}
	user, err := render(namespace+"#user", t.User, vars)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		Model:        t.Model,
		SystemPrompt: system,
		UserPrompt:   user,
		Temperature:  t.Temperature,
	}, nil
}

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		return string(b), err
	},
}

func render(name, text string, vars map[string]any) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("prompt: parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("prompt: render %s: %w", name, err)
	}
	return buf.String(), nil
}
