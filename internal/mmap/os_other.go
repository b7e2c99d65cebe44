//go:build !unix

package mmap

import (
	"io"
	"os"
)

func mapFile(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func mapAnon(size int) ([]byte, error) { return make([]byte, size), nil }

func unmap([]byte) error { return nil }

func advise([]byte, Advice) error { return nil }
