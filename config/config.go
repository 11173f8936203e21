// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"v.io/x/lib/lookpath"
)

// Resource describes how to run one external program.
type Resource struct {
	// Cmd is the executable, either a path or a bare name.
	Cmd string `yaml:"cmd"`
	// Dir, if set, is searched for a bare Cmd before $PATH.
	Dir string `yaml:"dir"`
	// Options are extra arguments. The QC steps do not use them, but they are
	// kept so that a full pipeline config round-trips.
	Options []string `yaml:"options,omitempty"`
}

// Algorithm holds the algorithm section of a sample's configuration.
type Algorithm struct {
	NumCores int      `yaml:"num_cores"`
	ToolsOn  []string `yaml:"tools_on"`
}

// Config is the tool configuration attached to a sample.
type Config struct {
	Algorithm Algorithm           `yaml:"algorithm"`
	Resources map[string]Resource `yaml:"resources"`
}

// Program resolves the executable for the named program. An explicit
// resources.<name>.cmd wins; a bare command name is looked up in
// resources.<name>.dir and then $PATH. Program returns an error of kind
// errors.NotExist if nothing can be found. The reserved command Builtin is
// returned without lookup.
func (c *Config) Program(name string) (string, error) {
	cmd := name
	var dir string
	if c != nil {
		if r, ok := c.Resources[name]; ok {
			if r.Cmd != "" {
				cmd = r.Cmd
			}
			dir = r.Dir
		}
	}
	if IsBuiltin(cmd) {
		return cmd, nil
	}
	if filepath.IsAbs(cmd) {
		if _, err := os.Stat(cmd); err != nil {
			return "", errors.E(errors.NotExist, "program", name, cmd, err)
		}
		return cmd, nil
	}
	if dir != "" {
		p := filepath.Join(dir, cmd)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	p, err := lookpath.Look(map[string]string{"PATH": os.Getenv("PATH")}, cmd)
	if err != nil {
		return "", errors.E(errors.NotExist, "program", name, "not found in $PATH", err)
	}
	return p, nil
}

// Builtin is the reserved command name that selects the in-process
// implementation of a program instead of spawning one.
const Builtin = "builtin"

// IsBuiltin reports whether cmd selects the in-process implementation.
func IsBuiltin(cmd string) bool { return cmd == Builtin }

// ToolOn reports whether the named optional tool is enabled.
func (c *Config) ToolOn(tool string) bool {
	if c == nil {
		return false
	}
	for _, t := range c.Algorithm.ToolsOn {
		if t == tool {
			return true
		}
	}
	return false
}
