package main

import "os"

// osFileReader backs compiler.FileReader with the real filesystem, the
// reader Load statements resolve against outside of tests.
type osFileReader struct{}

func (osFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
