package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Template names in catalog.yaml.
const (
	TemplateStory              = "story"
	TemplateConcept            = "concept"
	TemplateAttendanceAnalysis = "attendanceAnalysis"
	TemplateWorksheet          = "worksheet"
	TemplateSuggestions        = "suggestions"
	TemplateBriefing           = "briefing"
	TemplateChalkboard         = "chalkboard"
	TemplateSyllabusPlan       = "syllabusPlan"
)

const MessageNoAttendanceData = "noAttendanceData"

//go:embed catalog.yaml
var defaultCatalog []byte

type ParamSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type ToolSpec struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Params      []ParamSpec `yaml:"params"`
}

type Catalog struct {
	System    string            `yaml:"system"`
	Tools     []ToolSpec        `yaml:"tools"`
	Templates map[string]string `yaml:"templates"`
	Messages  map[string]string `yaml:"messages"`

	parsed   map[string]*template.Template
	messages map[string]*template.Template
}

// Default returns the embedded catalog. It panics if the embedded file is
// malformed, which is a build defect.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("prompts: embedded catalog: %v", err))
	}
	return c
}

// Parse decodes a YAML catalog and pre-compiles its templates.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(c.Tools) == 0 {
		return nil, fmt.Errorf("catalog declares no tools")
	}

	var err error
	if c.parsed, err = parseTemplates(c.Templates); err != nil {
		return nil, err
	}
	if c.messages, err = parseTemplates(c.Messages); err != nil {
		return nil, err
	}
	return &c, nil
}

func parseTemplates(bodies map[string]string) (map[string]*template.Template, error) {
	parsed := make(map[string]*template.Template, len(bodies))
	for name, body := range bodies {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		parsed[name] = tmpl
	}
	return parsed, nil
}

// Render executes the named prompt template with data.
func (c *Catalog) Render(name string, data any) (string, error) {
	return execute(c.parsed, "prompt template", name, data)
}

// Message renders a user-facing message with data.
func (c *Catalog) Message(name string, data any) (string, error) {
	return execute(c.messages, "message", name, data)
}

func execute(templates map[string]*template.Template, kind, name string, data any) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown %s %q", kind, name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// Tool looks up a tool declaration by name.
func (c *Catalog) Tool(name string) (ToolSpec, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolSpec{}, false
}
