// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package smtp

import "bufio"

// dotWriter writes the DATA section of a transaction. Lines starting with a "." get
// an additional "." (RFC 5321, 4.5.2), so that no line of the message can end the
// DATA section early. Close writes the terminator line.
type dotWriter struct {
	w *bufio.Writer

	// bol is set when the next byte starts a new line
	bol bool
}

// newDotWriter returns a dotWriter on top of w
func newDotWriter(w *bufio.Writer) *dotWriter {
	return &dotWriter{w: w, bol: true}
}

// Write implements the io.Writer interface for dotWriter
func (d *dotWriter) Write(p []byte) (int, error) {
	for i, b := range p {
		if d.bol && b == '.' {
			if err := d.w.WriteByte('.'); err != nil {
				return i, err
			}
		}
		if err := d.w.WriteByte(b); err != nil {
			return i, err
		}
		d.bol = b == '\n'
	}
	return len(p), nil
}

// Close terminates the last line if needed, writes the "." terminator line and
// flushes the buffer
func (d *dotWriter) Close() error {
	if !d.bol {
		if _, err := d.w.WriteString("\r\n"); err != nil {
			return err
		}
	}
	if _, err := d.w.WriteString(".\r\n"); err != nil {
		return err
	}
	d.bol = true
	return d.w.Flush()
}
