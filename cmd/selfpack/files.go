package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

var (
	// ErrInputUnreadable is returned if the input file is missing, cannot be
	// read or is not UTF-8 text.
	ErrInputUnreadable = errors.New("failed to read infile")
	// ErrOutputUnwritable is returned if an output file cannot be written.
	ErrOutputUnwritable = errors.New("failed to write to outfile")
)

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputUnreadable, err)
	}
	return data, nil
}

func readText(path string) (string, error) {
	data, err := readInput(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not UTF-8 text", ErrInputUnreadable, path)
	}
	return string(data), nil
}

// writeOutput replaces the file at path with data. The data is written to a
// temporary file in the same directory first, so path either keeps its old
// content or receives all of data.
func writeOutput(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".selfpack-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputUnwritable, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			err = fmt.Errorf("%w: %v", ErrOutputUnwritable, err)
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
