package ingestion

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/scriptusage/internal/errors"
	"github.com/rohankatakam/scriptusage/internal/models"
)

// ReadErrorPolicy decides what happens when a corpus file cannot be read
type ReadErrorPolicy int

const (
	// SkipUnreadable logs a warning and leaves the file out of the corpus
	SkipUnreadable ReadErrorPolicy = iota
	// FailOnUnreadable aborts the run
	FailOnUnreadable
)

// ParseReadErrorPolicy maps the configuration value to a policy
func ParseReadErrorPolicy(s string) (ReadErrorPolicy, error) {
	switch s {
	case "", "skip":
		return SkipUnreadable, nil
	case "fail":
		return FailOnUnreadable, nil
	default:
		return SkipUnreadable, errors.ValidationErrorf("unknown read error policy %q", s)
	}
}

// CorpusResult holds the loaded files and any skipped-file warnings
type CorpusResult struct {
	Files    []models.SourceFile
	Warnings []string
}

// LoadCorpus reads every file once. Output order follows the input order.
func LoadCorpus(ctx context.Context, paths []string, policy ReadErrorPolicy, workers int, logger logrus.FieldLogger) (*CorpusResult, error) {
	if workers < 1 {
		workers = 1
	}

	loaded := make([]*models.SourceFile, len(paths))
	readErrs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			lines, err := ReadLines(path)
			if err != nil {
				rerr := readError(err, path, policy)
				if !errors.IsRecoverable(rerr) {
					return rerr
				}
				readErrs[i] = rerr
				return nil
			}

			loaded[i] = &models.SourceFile{Path: path, Lines: lines}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &CorpusResult{Files: make([]models.SourceFile, 0, len(paths))}
	for i := range paths {
		if readErrs[i] != nil {
			logger.WithError(readErrs[i]).WithField("path", paths[i]).Warn("Skipping unreadable corpus file")
			result.Warnings = append(result.Warnings, readErrs[i].Error())
			continue
		}
		result.Files = append(result.Files, *loaded[i])
	}

	return result, nil
}

// readError classifies a read failure under policy
func readError(err error, path string, policy ReadErrorPolicy) error {
	if policy == FailOnUnreadable {
		return errors.FileSystemErrorf(err, "failed to read %s", path)
	}
	return errors.RecoverableFileError(err, path)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadLines reads a text file and splits it into lines. A leading UTF-8
// byte order mark is dropped, "\r\n", "\n" and "\r" all end a line, and
// a final line terminator does not produce a trailing empty line.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return SplitLines(data), nil
}

// SplitLines splits file content into lines; see ReadLines
func SplitLines(data []byte) []string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(data) == 0 {
		return []string{}
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")

	return strings.Split(text, "\n")
}
