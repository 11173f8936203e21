// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package run executes the external tools that QC steps depend on. Commands
// are argument lists, never shell strings.
package run

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Command is one invocation of an external program.
type Command struct {
	// Path is the executable.
	Path string
	// Args are the arguments, excluding the program name.
	Args []string
	// Stdout, if nonempty, is the file that receives the program's standard
	// output. The file is created or truncated.
	Stdout string
	// Dir is the working directory; empty means the current directory.
	Dir string
}

// String renders the command for logs, shell-style.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Path)
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	if c.Stdout != "" {
		b.WriteString(" > ")
		b.WriteString(c.Stdout)
	}
	return b.String()
}

// Runner runs commands. Run blocks until the command exits and returns an
// error if it could not be started or exited with a nonzero status. descr is
// a human-readable description used in logs and errors.
type Runner interface {
	Run(ctx context.Context, cmd Command, descr string) error
}

// maxStderr bounds the amount of a failed command's stderr kept in its
// error.
const maxStderr = 4 << 10

// Local runs commands as child processes of this one.
type Local struct{}

// Run implements Runner.
func (Local) Run(ctx context.Context, cmd Command, descr string) (err error) {
	log.Printf("%s", descr)
	log.Debug.Printf("run: %s", cmd)
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	var stderr tailBuffer
	c.Stderr = &stderr
	if cmd.Stdout != "" {
		out, cerr := os.Create(cmd.Stdout)
		if cerr != nil {
			return errors.E(cerr, descr, "create stdout")
		}
		defer func() {
			if cerr := out.Close(); cerr != nil && err == nil {
				err = errors.E(cerr, descr, "close stdout", cmd.Stdout)
			}
		}()
		c.Stdout = out
	}
	start := time.Now()
	err = c.Run()
	log.Debug.Printf("run: %s finished in %v", cmd.Path, time.Since(start))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errors.E(errors.Canceled, descr, ctx.Err())
	}
	if tail := strings.TrimSpace(stderr.String()); tail != "" {
		return errors.E(err, descr, fmt.Sprintf("%s\nstderr:\n%s", cmd, tail))
	}
	return errors.E(err, descr, cmd.String())
}

// tailBuffer keeps the last maxStderr bytes written to it.
type tailBuffer struct {
	buf bytes.Buffer
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) > maxStderr {
		p = p[len(p)-maxStderr:]
	}
	if over := b.buf.Len() + len(p) - maxStderr; over > 0 {
		b.buf.Next(over)
	}
	b.buf.Write(p)
	return n, nil
}

func (b *tailBuffer) String() string { return b.buf.String() }
