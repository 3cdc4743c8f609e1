package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRegistry_Builtins(t *testing.T) {
	r, err := NewRegistry("")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	want := []string{NamespaceBenchmarkComparison, NamespaceExecutiveSummary, NamespaceIssueDeduplication}
	got := r.Namespaces()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Namespaces() = %v, want %v", got, want)
	}
	for _, ns := range got {
		tmpl := r.templates[ns]
		if tmpl.Model == "" || tmpl.System == "" || tmpl.User == "" || tmpl.Description == "" {
			t.Errorf("builtin %q has empty fields: %+v", ns, tmpl)
		}
	}
}

func TestLoad_Renders(t *testing.T) {
	r, _ := NewRegistry("")
	p, err := r.Load(NamespaceBenchmarkComparison, map[string]any{
		"CompanyName": "Acme Dental",
		"Industry":    "healthcare",
		"Payload":     map[string]any{"target": map[string]float64{"seo": 61}},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(p.UserPrompt, "Acme Dental (healthcare)") {
		t.Errorf("user prompt missing company header:\n%s", p.UserPrompt)
	}
	if !strings.Contains(p.UserPrompt, `"seo": 61`) {
		t.Errorf("user prompt missing JSON payload:\n%s", p.UserPrompt)
	}
	if p.Model != defaultModel || p.Temperature != 0.2 {
		t.Errorf("model/temperature = %q/%v", p.Model, p.Temperature)
	}
}

func TestLoad_MissingVariable(t *testing.T) {
	r, _ := NewRegistry("")
	_, err := r.Load(NamespaceBenchmarkComparison, map[string]any{"CompanyName": "Acme"})
	if err == nil {
		t.Fatal("expected error for missing template variable")
	}
}

func TestLoad_UnknownNamespace(t *testing.T) {
	r, _ := NewRegistry("")
	_, err := r.Load("nope/nothing", nil)
	if !errors.Is(err, ErrUnknownPrompt) {
		t.Errorf("error = %v, want ErrUnknownPrompt", err)
	}
}

func TestNewRegistry_Override(t *testing.T) {
	dir := t.TempDir()
	content := "model: gpt-4o-mini\nuser: \"Summarize {{.CompanyName}}\"\n"
	if err := os.WriteFile(filepath.Join(dir, "synthesis.executive-summary.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := NewRegistry(dir)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	p, err := r.Load(NamespaceExecutiveSummary, map[string]any{"CompanyName": "Acme"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want override", p.Model)
	}
	if p.UserPrompt != "Summarize Acme" {
		t.Errorf("user prompt = %q", p.UserPrompt)
	}
	if p.SystemPrompt == "" {
		t.Error("system prompt should keep the builtin value")
	}
	if p.Temperature != 0.4 {
		t.Errorf("temperature = %v, want builtin 0.4", p.Temperature)
	}
}

func TestNewRegistry_BadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRegistry(dir); err == nil {
		t.Error("expected parse error")
	}
}
