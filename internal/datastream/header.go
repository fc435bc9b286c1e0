package datastream

import (
	"bufio"
	"fmt"
	"io"
)

// WriteDefines writes the stream layout as C preprocessor definitions
// for the firmware build.
func WriteDefines(w io.Writer, s *Stream) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "// Generated by scrollcal. Do not edit.")
	fmt.Fprintln(bw, "#pragma once")
	fmt.Fprintln(bw)
	for _, off := range s.Offsets {
		fmt.Fprintf(bw, "#define SCROLLCAL_DSOFF_%s %d\n", off.Name, off.Index)
	}
	fmt.Fprintf(bw, "#define SCROLLCAL_DSLEN %d\n", len(s.Pixels))
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("datastream: write defines: %w", err)
	}
	return nil
}
