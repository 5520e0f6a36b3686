package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-pkgz/fileutils"
	"github.com/hashicorp/go-multierror"
)

const maxLineSize = 1024 * 1024

// Source returns lines one by one, io.EOF when there are no more lines
type Source interface {
	Next() (string, error)
}

// ReaderSource reads lines from io.Reader. Line endings (\n and \r\n) are stripped.
type ReaderSource struct {
	scanner *bufio.Scanner
}

// NewReaderSource makes ReaderSource for the reader
func NewReaderSource(r io.Reader) *ReaderSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &ReaderSource{scanner: scanner}
}

// Next returns the next line
func (s *ReaderSource) Next() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// OpenFiles opens a line source for each wordlist file. The same file can be listed more than once,
// each entry gets its own handle. Returned close function closes all opened files.
func OpenFiles(paths []string) (sources []Source, closeFn func() error, err error) {
	files := make([]*os.File, 0, len(paths))
	closeFn = func() error {
		errs := new(multierror.Error)
		for _, f := range files {
			if e := f.Close(); e != nil {
				errs = multierror.Append(errs, e)
			}
		}
		return errs.ErrorOrNil()
	}

	for _, p := range paths {
		if !fileutils.IsFile(p) {
			_ = closeFn()
			return nil, nil, fmt.Errorf("wordlist %q is not a file", p)
		}
		fh, e := os.Open(p) // nolint
		if e != nil {
			_ = closeFn()
			return nil, nil, fmt.Errorf("can't open wordlist %q: %w", p, e)
		}
		files = append(files, fh)
		sources = append(sources, NewReaderSource(fh))
		log.Printf("[DEBUG] wordlist %s opened", p)
	}
	return sources, closeFn, nil
}
