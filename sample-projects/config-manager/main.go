package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	forman "github.com/formanlab/forman"
	"github.com/formanlab/forman/manifest"
)

// Manager drives layered configuration: the settings form lives in a
// Forman manifest, the values live in base.yaml plus an optional
// per-environment overlay.
type Manager struct {
	fields []forman.Field
}

func NewManager(fieldsFile string) (*Manager, error) {
	f, err := os.Open(fieldsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load field manifest: %w", err)
	}
	defer f.Close()
	fields, err := manifest.DecodeYAML(f)
	if err != nil {
		return nil, err
	}
	return &Manager{fields: fields}, nil
}

// LoadConfig reads base.yaml, overlays <env>.yaml when present, and
// expands ${VAR} references from the process environment.
func (m *Manager) LoadConfig(env string) (map[string]any, error) {
	doc, err := m.loadDocument("base.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}
	envFile := env + ".yaml"
	if fileExists(envFile) {
		overlay, err := m.loadDocument(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", env, err)
		}
		doc = mergeDocs(doc, overlay)
	}
	return doc, nil
}

func (m *Manager) loadDocument(name string) (map[string]any, error) {
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	raw = []byte(os.Expand(string(raw), os.Getenv))
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// mergeDocs overlays env values onto base. Maps merge per key, anything
// else in the overlay wins.
func mergeDocs(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		bm, okB := out[k].(map[string]any)
		om, okO := v.(map[string]any)
		if okB && okO {
			out[k] = mergeDocs(bm, om)
			continue
		}
		out[k] = v
	}
	return out
}

// ValidateConfig runs the merged document through the form validator.
func (m *Manager) ValidateConfig(env string, strict bool) error {
	doc, err := m.LoadConfig(env)
	if err != nil {
		return err
	}
	res, err := forman.Validate(context.Background(), doc, m.fields, forman.ValidateOpt{Strict: strict})
	if err != nil {
		return err
	}
	if !res.Valid {
		for _, iss := range res.Errors {
			path := iss.Path
			if path == "" {
				path = "(root)"
			}
			fmt.Printf("  ✗ %s: %s\n", path, iss.Message)
		}
		return fmt.Errorf("%d issue(s) in environment '%s'", len(res.Errors), env)
	}
	fmt.Printf("✅ Configuration for environment '%s' is valid!\n", env)
	return nil
}

// ShowConfig prints the merged document, masking values of password and
// hidden fields so the output is safe to share.
func (m *Manager) ShowConfig(env string, maskSecrets bool) error {
	doc, err := m.LoadConfig(env)
	if err != nil {
		return err
	}
	if maskSecrets {
		maskByFields(doc, m.fields)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Printf("📋 Configuration for environment: %s\n", env)
	fmt.Println("=" + strings.Repeat("=", len(env)+25))
	fmt.Print(string(data))
	return nil
}

// maskByFields walks the form definition and blanks the secret-typed
// entries of doc in place.
func maskByFields(doc map[string]any, fields []forman.Field) {
	for _, f := range fields {
		switch f.Type {
		case "password", "hidden":
			if _, ok := doc[f.Name]; ok {
				doc[f.Name] = "********"
			}
		case "collection":
			sub, okDoc := doc[f.Name].(map[string]any)
			entries, err := forman.AsFieldList(f.Spec)
			if !okDoc || err != nil {
				continue
			}
			var children []forman.Field
			for _, e := range entries {
				if e.Field != nil {
					children = append(children, *e.Field)
				}
			}
			maskByFields(sub, children)
		}
	}
}

// GenerateTemplate writes starter files for a new project.
func GenerateTemplate() error {
	templates := map[string]string{
		"fields.yaml": `# Settings form for the application
fields:
  - name: app
    type: collection
    spec:
      - name: name
        type: text
        required: true
      - name: port
        type: port
        default: 8080
      - name: environment
        type: select
        options: [development, staging, production]
  - name: database
    type: collection
    spec:
      - name: host
        type: text
        required: true
      - name: username
        type: text
        required: true
      - name: password
        type: password
  - name: logLevel
    type: select
    options: [debug, info, warn, error]
    default: info
`,
		"base.yaml": `# Base configuration (common settings)
app:
  name: "MyWebApp"
  port: 8080
  environment: development

database:
  host: "localhost"
  username: "postgres"
  password: "${DB_PASSWORD}"

logLevel: info
`,
		"production.yaml": `# Production overrides
app:
  environment: production

database:
  host: "db.internal"
`,
	}
	for name, content := range templates {
		if fileExists(name) {
			fmt.Printf("  skipping %s (already exists)\n", name)
			continue
		}
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		fmt.Printf("  wrote %s\n", name)
	}
	return nil
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "template":
		if err := GenerateTemplate(); err != nil {
			fatalf("%v", err)
		}
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ExitOnError)
		fieldsFile := fs.String("fields", "fields.yaml", "field manifest")
		env := fs.String("env", "development", "environment name")
		strict := fs.Bool("strict", false, "reject unknown keys")
		_ = fs.Parse(os.Args[2:])
		m, err := NewManager(*fieldsFile)
		if err != nil {
			fatalf("%v", err)
		}
		if err := m.ValidateConfig(*env, *strict); err != nil {
			fatalf("%v", err)
		}
	case "show":
		fs := flag.NewFlagSet("show", flag.ExitOnError)
		fieldsFile := fs.String("fields", "fields.yaml", "field manifest")
		env := fs.String("env", "development", "environment name")
		mask := fs.Bool("mask", true, "mask secret values")
		_ = fs.Parse(os.Args[2:])
		m, err := NewManager(*fieldsFile)
		if err != nil {
			fatalf("%v", err)
		}
		if err := m.ShowConfig(*env, *mask); err != nil {
			fatalf("%v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `config-manager sample

Usage:
  config-manager template
  config-manager validate [-fields fields.yaml] [-env production] [-strict]
  config-manager show     [-fields fields.yaml] [-env production] [-mask=false]`)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
