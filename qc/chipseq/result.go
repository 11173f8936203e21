// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package chipseq

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// RiP is the metric name of the reads-in-peaks count.
const RiP = "RiP"

// Result is the QC output of a sample. The zero Result means no metric could
// be defined, e.g. because the sample has no peaks.
type Result struct {
	// Base is the raw tool report the metrics were read from.
	Base string `json:"base,omitempty"`
	// Metrics maps metric names to values, as strings, the way they appear in
	// the tool report.
	Metrics map[string]string `json:"metrics,omitempty"`
	// Secondary lists additional report outputs.
	Secondary []string `json:"secondary,omitempty"`
}

// IsEmpty reports whether r carries no output.
func (r Result) IsEmpty() bool {
	return r.Base == "" && len(r.Metrics) == 0 && len(r.Secondary) == 0
}

// merge adds the outputs of o to r. Fields of o replace those of r.
func (r *Result) merge(o Result) {
	if o.Base != "" {
		r.Base = o.Base
	}
	for k, v := range o.Metrics {
		if r.Metrics == nil {
			r.Metrics = map[string]string{}
		}
		r.Metrics[k] = v
	}
	if len(o.Secondary) > 0 {
		r.Secondary = o.Secondary
	}
}

// MetricNotFoundError is returned when a tool report lacks the line a
// metric is read from.
type MetricNotFoundError struct {
	Path   string
	Marker string
}

func (e *MetricNotFoundError) Error() string {
	return fmt.Sprintf("%s: metric not found: no line contains %q", e.Path, e.Marker)
}

// IsMetricNotFound reports whether err was caused by a MetricNotFoundError.
func IsMetricNotFound(err error) bool {
	for err != nil {
		switch e := err.(type) {
		case *MetricNotFoundError:
			return true
		case *errors.Error:
			err = e.Err
		default:
			return false
		}
	}
	return false
}
