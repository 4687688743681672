package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
	SourceFlag    SourceKind = "flag"
)

// Source says where an effective value came from.
type Source struct {
	Kind   SourceKind
	Name   string // flag name
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	switch s.Kind {
	case SourceFile:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	case SourceFlag:
		return "flag --" + s.Name
	default:
		return "default"
	}
}

func fileSource(file string, n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // dotted key -> last writer
	Files   []string          // load order, includes first
}

// MarkFlag records that path was overridden on the command line.
func (r *LoadResult) MarkFlag(path string, flag string) {
	if r.Sources == nil {
		r.Sources = map[string]Source{}
	}
	r.Sources[path] = Source{Kind: SourceFlag, Name: flag}
}

func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "runeditor", "config.yaml"), nil
}

// Load reads the configuration from path, or from the default location when
// path is empty. A missing default file yields the built-in defaults; a
// missing explicit file is an error.
func Load(path string) (*LoadResult, error) {
	if strings.TrimSpace(path) == "" {
		def, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		return LoadFromPath(def)
	}
	ok, err := fileExists(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: failed to read: file does not exist", path)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes on top of the defaults. A
// missing path is not an error.
func LoadFromPath(path string) (*LoadResult, error) {
	ld := &fileLoader{
		visited: map[string]bool{},
		sources: map[string]Source{},
	}

	ok, err := fileExists(path)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := ld.load(path, nil); err != nil {
			return nil, err
		}
	}

	cfg, err := BuildEffectiveConfig(ld.raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, withSource(err, ld.sources)
	}
	return &LoadResult{Config: cfg, Sources: ld.sources, Files: ld.files}, nil
}

// fileLoader folds a config file and everything it includes into one
// RawConfig. Included files are applied before the including file, so the
// includer's keys win.
type fileLoader struct {
	raw     RawConfig
	sources map[string]Source
	files   []string
	visited map[string]bool
}

func (ld *fileLoader) load(path string, chain []string) error {
	file, err := canonicalPath(path)
	if err != nil {
		return err
	}
	for _, parent := range chain {
		if parent == file {
			return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(chain, " -> "), file)
		}
	}
	if ld.visited[file] {
		return nil
	}
	ld.visited[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var own RawConfig
	if err := decodeStrict(data, &own); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	root := documentRoot(&doc)
	for _, inc := range includeNodes(root) {
		targets, err := expandInclude(file, inc.Value)
		if err != nil {
			return fmt.Errorf("%s: include %q: %w", fileSource(file, inc), inc.Value, err)
		}
		for _, target := range targets {
			if err := ld.load(target, append(chain, file)); err != nil {
				return err
			}
		}
	}

	ld.raw = ld.raw.merge(own)
	recordSources(root, file, "", ld.sources)
	ld.files = append(ld.files, file)
	return nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

// recordSources maps every dotted key under n to the position of its value.
// Sequences are recorded as a whole.
func recordSources(n *yaml.Node, file, prefix string, out map[string]Source) {
	if n == nil || n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		if prefix != "" {
			key = prefix + "." + key
		}
		out[key] = fileSource(file, val)
		recordSources(val, file, key, out)
	}
}

// includeNodes returns the scalar entries of the top-level include key,
// which may be a single path or a list.
func includeNodes(root *yaml.Node) []*yaml.Node {
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			return []*yaml.Node{val}
		case yaml.SequenceNode:
			var out []*yaml.Node
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode {
					out = append(out, item)
				}
			}
			return out
		}
		return nil
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// expandInclude resolves include relative to the including file. A
// directory expands to its *.yaml and *.yml files in name order.
func expandInclude(from, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	target, err := expandHome(include)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(from), target)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			if !e.IsDir() {
				out = append(out, filepath.Join(target, e.Name()))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// withSource attaches the position of the offending key, or of its nearest
// enclosing block, to a ValidationError.
func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	for path := verr.Path; ; {
		if src, ok := sources[path]; ok {
			verr.Source = src
			break
		}
		i := strings.LastIndex(path, ".")
		if i < 0 {
			break
		}
		path = path[:i]
	}
	return verr
}
