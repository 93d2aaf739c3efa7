package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var problemValidate = validator.New()

// MeshConfig selects a unit reference mesh
type MeshConfig struct {
	Cell string `yaml:"cell" validate:"required,oneof=interval triangle tetrahedron"`
	N    int    `yaml:"n" validate:"required,min=1,max=256"`
}

// DirichletConfig prescribes a constant value on part of the boundary
type DirichletConfig struct {
	Value    float64 `yaml:"value"`
	Boundary string  `yaml:"boundary" validate:"required,oneof=all left"`
}

// Problem describes -div(kappa grad u) = source with u = value on the Dirichlet boundary
// and kappa du/dn = flux on the rest
type Problem struct {
	Mesh      MeshConfig      `yaml:"mesh" validate:"required"`
	Kappa     float64         `yaml:"kappa" validate:"gt=0"`
	Source    float64         `yaml:"source"`
	Flux      float64         `yaml:"flux"`
	Dirichlet DirichletConfig `yaml:"dirichlet" validate:"required"`
	Workers   int             `yaml:"workers" validate:"gte=0"`
	Strategy  string          `yaml:"strategy" validate:"omitempty,oneof=block roundrobin round-robin"`
}

// applyDefaults fills fields left out of the file
func (p *Problem) applyDefaults() {
	if p.Kappa == 0 {
		p.Kappa = 1
	}
	if p.Dirichlet.Boundary == "" {
		p.Dirichlet.Boundary = "all"
	}
}

// Validate checks the struct tags
func (p *Problem) Validate() error {
	if err := problemValidate.Struct(p); err != nil {
		return fmt.Errorf("invalid problem: %w", err)
	}
	return nil
}

// ParseProblem decodes and validates a YAML problem description
func ParseProblem(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing problem: %w", err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProblem reads a problem file
func LoadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem file: %w", err)
	}
	return ParseProblem(data)
}
