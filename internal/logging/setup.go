package logging

import (
	"io"
	"log"
	"os"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the standard logger at stdout and, when path is set, a
// rotating log file. The returned closer releases the file.
func Setup(path string, maxSizeBytes int64, maxBackups int) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.LUTC | log.Lshortfile)

	if path == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}, nil
	}

	w, err := NewRotatingFileWriter(path, maxSizeBytes, maxBackups)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, w))
	return w, nil
}
