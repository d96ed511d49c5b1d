// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package manifest loads property manifests: YAML documents that declare a
// set of stored properties, their visibility, and the bindings between them.
package manifest

import (
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/propbind/internal/valueconv"
	"github.com/holomush/propbind/pkg/propbind"
)

// Error codes returned by this package.
const (
	CodeInvalid = "MANIFEST_INVALID"
	CodeVersion = "MANIFEST_VERSION"
	CodeSchema  = "MANIFEST_SCHEMA"
	CodeRead    = "MANIFEST_READ"
)

// SupportedVersions is the semver constraint a manifest version must satisfy.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// Manifest represents a property manifest file.
type Manifest struct {
	Version    string     `yaml:"version" jsonschema:"description=Manifest format version (semver)"`
	Properties []Property `yaml:"properties" jsonschema:"minItems=1"`
	Bindings   []Binding  `yaml:"bindings,omitempty"`
}

// Property declares one stored property.
type Property struct {
	Name  string `yaml:"name" jsonschema:"minLength=1"`
	Type  string `yaml:"type" jsonschema:"enum=int,enum=float,enum=string,enum=bool"`
	Value any    `yaml:"value,omitempty" jsonschema:"description=Initial value; zero value when omitted"`
	Get   string `yaml:"get,omitempty" jsonschema:"enum=public,enum=private"`
	Set   string `yaml:"set,omitempty" jsonschema:"enum=public,enum=private"`
}

// Binding declares a binding between two declared properties.
type Binding struct {
	Source string `yaml:"source" jsonschema:"minLength=1"`
	Target string `yaml:"target" jsonschema:"minLength=1"`
	Mode   string `yaml:"mode,omitempty" jsonschema:"enum=one-way,enum=one-way-to-source,enum=two-way"`
}

// Load reads a manifest file, checks it against the schema, and parses it.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator supplied
	if err != nil {
		return nil, oops.In("manifest").Code(CodeRead).With("path", path).Wrapf(err, "read manifest")
	}
	if err := ValidateSchema(data); err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return m, nil
}

// Parse parses and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, invalid().Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, invalid().Wrapf(err, "invalid YAML")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if err := checkVersion(m.Version); err != nil {
		return err
	}
	if len(m.Properties) == 0 {
		return invalid().Errorf("at least one property is required")
	}

	types := make(map[string]string, len(m.Properties))
	for i, p := range m.Properties {
		if strings.TrimSpace(p.Name) == "" {
			return invalid().With("index", i).Errorf("properties[%d]: name is required", i)
		}
		if _, dup := types[p.Name]; dup {
			return invalid().With("property", p.Name).Errorf("property %q declared twice", p.Name)
		}
		if err := p.validate(); err != nil {
			return err
		}
		types[p.Name] = p.Type
	}

	for i, b := range m.Bindings {
		if _, err := b.mode(); err != nil {
			return invalid().With("index", i).Wrapf(err, "bindings[%d]", i)
		}
		srcType, ok := types[b.Source]
		if !ok {
			return invalid().With("index", i).With("property", b.Source).
				Errorf("bindings[%d]: source %q is not declared", i, b.Source)
		}
		dstType, ok := types[b.Target]
		if !ok {
			return invalid().With("index", i).With("property", b.Target).
				Errorf("bindings[%d]: target %q is not declared", i, b.Target)
		}
		if srcType != dstType {
			return invalid().With("index", i).
				Errorf("bindings[%d]: %s is %s but %s is %s", i, b.Source, srcType, b.Target, dstType)
		}
	}
	return nil
}

func checkVersion(raw string) error {
	if raw == "" {
		return oops.In("manifest").Code(CodeVersion).Errorf("version is required")
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return oops.In("manifest").Code(CodeVersion).With("version", raw).Wrapf(err, "version %q is not semver", raw)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return oops.In("manifest").Code(CodeVersion).Wrapf(err, "parse version constraint")
	}
	if !c.Check(v) {
		return oops.In("manifest").Code(CodeVersion).
			With("version", raw).
			With("supported", SupportedVersions).
			Errorf("manifest version %s is not supported (want %s)", v, SupportedVersions)
	}
	return nil
}

func (p Property) validate() error {
	t, ok := valueconv.TypeByName(p.Type)
	if !ok {
		return invalid().With("property", p.Name).
			Errorf("property %q: type must be one of %s, got %q", p.Name, strings.Join(valueconv.TypeNames(), ", "), p.Type)
	}
	if _, _, err := p.visibility(); err != nil {
		return invalid().With("property", p.Name).Wrapf(err, "property %q", p.Name)
	}
	if p.Value != nil {
		if _, err := valueconv.Coerce(p.Value, t); err != nil {
			return invalid().With("property", p.Name).Wrapf(err, "property %q: bad value", p.Name)
		}
	}
	return nil
}

func (p Property) visibility() (get, set propbind.Visibility, err error) {
	get, err = parseVisibility(p.Get)
	if err != nil {
		return 0, 0, err
	}
	set, err = parseVisibility(p.Set)
	if err != nil {
		return 0, 0, err
	}
	return get, set, nil
}

func parseVisibility(s string) (propbind.Visibility, error) {
	if s == "" {
		return propbind.Public, nil
	}
	return propbind.ParseVisibility(s)
}

func (b Binding) mode() (propbind.BindingMode, error) {
	if b.Mode == "" {
		return propbind.OneWay, nil
	}
	return propbind.ParseBindingMode(b.Mode)
}

func invalid() oops.OopsErrorBuilder {
	return oops.In("manifest").Code(CodeInvalid)
}
