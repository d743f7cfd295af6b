package main

import (
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/giantswarm/simenv"
)

// suite is the on-disk description of test classes.
type suite struct {
	Global  simenv.Config `json:"global,omitempty"`
	Classes []suiteClass  `json:"classes"`
}

type suiteClass struct {
	Name    string        `json:"name"`
	Package string        `json:"package,omitempty"`
	Config  simenv.Config `json:"config,omitempty"`
	Methods []suiteMethod `json:"methods"`
}

type suiteMethod struct {
	Name   string        `json:"name"`
	Config simenv.Config `json:"config,omitempty"`
	Ignore bool          `json:"ignore,omitempty"`
}

// loadSuite reads and validates a suite file. Unknown fields are rejected.
func loadSuite(path string) (*suite, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is a CLI argument
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	var s suite
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return &s, nil
}

func (s *suite) validate() error {
	if len(s.Classes) == 0 {
		return errors.New("no classes")
	}
	seen := make(map[string]bool, len(s.Classes))
	for i, c := range s.Classes {
		if c.Name == "" {
			return fmt.Errorf("class %d has no name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("class %s declared twice", c.Name)
		}
		seen[c.Name] = true
		for j, m := range c.Methods {
			if m.Name == "" {
				return fmt.Errorf("method %d of %s has no name", j, c.Name)
			}
		}
	}
	return nil
}

// testClasses converts the suite to runnable classes. Methods have no body:
// running them exercises environment set-up, teardown and reset only.
func (s *suite) testClasses() []simenv.TestClass {
	out := make([]simenv.TestClass, 0, len(s.Classes))
	for _, c := range s.Classes {
		tc := simenv.TestClass{Name: c.Name, Package: c.Package, Config: c.Config}
		for _, m := range c.Methods {
			tc.Methods = append(tc.Methods, simenv.TestMethod{Name: m.Name, Config: m.Config, Ignore: m.Ignore})
		}
		out = append(out, tc)
	}
	return out
}
