// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package samstats reads and writes the summary-numbers (SN) section of
// `samtools stats` reports, and computes a subset of those numbers in process.
package samstats

import (
	"bufio"
	"io"
	"strings"
)

// RawTotalSequences is the SN label of the primary record count.
const RawTotalSequences = "raw total sequences"

// Entry is one SN line.
type Entry struct {
	Label string
	Value string
	// Comment is the trailing annotation samtools adds to some lines, without
	// the leading '#'.
	Comment string
}

// Summary is the SN section of a report, in file order.
type Summary []Entry

// Get returns the value of the entry with the given label.
func (s Summary) Get(label string) (string, bool) {
	for _, e := range s {
		if e.Label == label {
			return e.Value, true
		}
	}
	return "", false
}

// ParseSN reads the SN lines of a samtools stats report. Other sections are
// skipped.
func ParseSN(r io.Reader) (Summary, error) {
	var s Summary
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 16<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "SN\t") {
			continue
		}
		fields := strings.Split(line[len("SN\t"):], "\t")
		e := Entry{Label: strings.TrimSuffix(fields[0], ":")}
		if len(fields) > 1 {
			e.Value = fields[1]
		}
		if len(fields) > 2 {
			e.Comment = strings.TrimSpace(strings.TrimPrefix(strings.Join(fields[2:], "\t"), "#"))
		}
		s = append(s, e)
	}
	return s, scanner.Err()
}

// FindLastToken scans r for the first line that contains marker somewhere
// after its first byte, and returns the last whitespace-delimited token of
// that line. A trailing "# ..." annotation, as newer samtools versions append,
// is not part of the line: the marker is neither matched in it nor is its
// last token taken. The bool result is false if no line matches.
func FindLastToken(r io.Reader, marker string) (string, bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 16<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "\t#"); i >= 0 {
			line = line[:i]
		}
		if strings.Index(line, marker) <= 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		return fields[len(fields)-1], true, nil
	}
	return "", false, scanner.Err()
}
