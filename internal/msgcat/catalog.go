package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var defaultFiles embed.FS

const defaultFile = "messages.en.yaml"

// Catalog loads string templates from embedded defaults and an optional override directory.
// Values are rendered with text/template (missing keys cause errors).
type Catalog struct {
	mu    sync.RWMutex
	data  map[string]string             // flattened dot-keys → template text
	cache map[string]*template.Template // parsed on first use
}

// New loads the embedded default messages and then applies overrides from dir if provided.
func New(overrideDir string) (*Catalog, error) {
	base := &Catalog{data: make(map[string]string), cache: make(map[string]*template.Template)}

	if err := base.loadEmbedded(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(overrideDir) != "" {
		if err := base.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return base, nil
}

// Default returns the embedded catalog. It panics only if the embedded file is broken.
func Default() *Catalog {
	c, err := New("")
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) loadEmbedded() error {
	raw, err := fs.ReadFile(defaultFiles, defaultFile)
	if err != nil {
		return fmt.Errorf("read embedded messages: %w", err)
	}
	return c.applyYAML(raw)
}

func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read template dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		ext := strings.ToLower(filepath.Ext(n))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, n)
		}
	}
	sort.Strings(files)
	// 중복 키는 오버라이드 파일 사이에서 허용하지 않음
	seen := make(map[string]string) // key -> filename
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		flat, err := parseYAMLToFlat(b)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		for k := range flat {
			if prev, ok := seen[k]; ok {
				return fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
			}
			seen[k] = name
		}
		c.set(flat)
	}
	return nil
}

func parseYAMLToFlat(b []byte) (map[string]string, error) {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	flat := make(map[string]string)
	if err := flattenStrings(m, "", flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func (c *Catalog) applyYAML(b []byte) error {
	flat, err := parseYAMLToFlat(b)
	if err != nil {
		return err
	}
	c.set(flat)
	return nil
}

func (c *Catalog) set(flat map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range flat {
		c.data[k] = v
		delete(c.cache, k)
	}
}

func flattenStrings(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flattenStrings(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key prefix")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

// Has reports whether key is defined.
func (c *Catalog) Has(key string) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[strings.TrimSpace(key)]
	return ok
}

// Render executes a template by key with the provided data map.
// Missing keys cause errors; caller should provide safe fallback.
func (c *Catalog) Render(key string, data any) (string, error) {
	if c == nil {
		return "", fmt.Errorf("template not found: %s", key)
	}
	key = strings.TrimSpace(key)
	c.mu.RLock()
	tpl, ok := c.data[key]
	t := c.cache[key]
	c.mu.RUnlock()
	if !ok || strings.TrimSpace(tpl) == "" {
		return "", fmt.Errorf("template not found: %s", key)
	}
	if t == nil {
		parsed, err := template.New(key).Option("missingkey=error").Parse(tpl)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.cache[key] = parsed
		c.mu.Unlock()
		t = parsed
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Text renders key, falling back to fallback when the template is missing or fails.
func (c *Catalog) Text(key string, data any, fallback string) string {
	s, err := c.Render(key, data)
	if err != nil {
		return fallback
	}
	return s
}
