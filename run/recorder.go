// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package run

import (
	"context"
	"io/ioutil"
	"sync"

	"github.com/grailbio/base/errors"
)

// Recorder is a Runner that records commands instead of running them. It is
// meant for tests of the steps that drive external tools.
type Recorder struct {
	// Stdout is written to Command.Stdout, if set.
	Stdout string
	// Err, if set, is returned from every Run after Stdout has been written,
	// the way a tool that fails midway leaves partial output behind.
	Err error

	mu   sync.Mutex
	cmds []Command
}

// Run implements Runner.
func (r *Recorder) Run(ctx context.Context, cmd Command, descr string) error {
	r.mu.Lock()
	r.cmds = append(r.cmds, cmd)
	r.mu.Unlock()
	if cmd.Stdout != "" {
		if err := ioutil.WriteFile(cmd.Stdout, []byte(r.Stdout), 0644); err != nil {
			return errors.E(err, descr)
		}
	}
	if r.Err != nil {
		return errors.E(r.Err, descr)
	}
	return nil
}

// Commands returns the commands run so far.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.cmds...)
}
