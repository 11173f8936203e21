// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package transaction makes step outputs appear atomically. A step writes to
// a temporary path next to its final output; the temporary path is renamed
// into place only if the step succeeds and is removed otherwise, so a final
// output path either holds a complete result or does not exist.
package transaction

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// File runs fn with a temporary path in the directory of outPath. If fn
// returns nil, the temporary file is renamed onto outPath. Otherwise, or if fn
// panics, the temporary file is removed and outPath is left untouched.
//
// fn may replace the temporary file (e.g. by redirecting a process's stdout
// to it) but must not rename it.
func File(ctx context.Context, outPath string, fn func(txPath string) error) (err error) {
	tmp, err := ioutil.TempFile(filepath.Dir(outPath), "."+filepath.Base(outPath)+".tx")
	if err != nil {
		return errors.E(err, "transaction: create temp for", outPath)
	}
	txPath := tmp.Name()
	if err = tmp.Close(); err != nil {
		return errors.E(err, "transaction: close", txPath)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := os.Remove(txPath); rerr != nil && !os.IsNotExist(rerr) {
			log.Error.Printf("transaction: remove %s: %v", txPath, rerr)
		}
	}()
	if err = fn(txPath); err != nil {
		log.Debug.Printf("transaction: discarding %s: %v", txPath, err)
		return err
	}
	if err = ctx.Err(); err != nil {
		return errors.E(errors.Canceled, "transaction:", outPath, err)
	}
	// TempFile creates 0600 files; outputs are shared with the rest of the
	// pipeline.
	if err = os.Chmod(txPath, 0644); err != nil {
		return errors.E(err, "transaction: chmod", txPath)
	}
	if err = os.Rename(txPath, outPath); err != nil {
		return errors.E(err, "transaction: commit", outPath)
	}
	committed = true
	return nil
}

// Dir is like File, but for a directory of outputs. The temporary directory
// is created next to outDir and renamed onto it on success. outDir must not
// exist.
func Dir(ctx context.Context, outDir string, fn func(txDir string) error) (err error) {
	parent := filepath.Dir(outDir)
	if err = os.MkdirAll(parent, 0755); err != nil {
		return errors.E(err, "transaction: create", parent)
	}
	txDir, err := ioutil.TempDir(parent, "."+filepath.Base(outDir)+".tx")
	if err != nil {
		return errors.E(err, "transaction: create temp dir for", outDir)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := os.RemoveAll(txDir); rerr != nil {
			log.Error.Printf("transaction: remove %s: %v", txDir, rerr)
		}
	}()
	if err = fn(txDir); err != nil {
		log.Debug.Printf("transaction: discarding %s: %v", txDir, err)
		return err
	}
	if err = ctx.Err(); err != nil {
		return errors.E(errors.Canceled, "transaction:", outDir, err)
	}
	// TempDir creates 0700 directories; outputs are shared with the rest of
	// the pipeline.
	if err = os.Chmod(txDir, 0755); err != nil {
		return errors.E(err, "transaction: chmod", txDir)
	}
	if err = os.Rename(txDir, outDir); err != nil {
		return errors.E(err, "transaction: commit", outDir)
	}
	committed = true
	return nil
}
