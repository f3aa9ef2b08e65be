// Package testutil holds helpers shared by package tests
package testutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ayoisaiah/focusguard/internal/osutil"
)

// GoldenTest produces output to compare against a golden file.
type GoldenTest interface {
	Output() ([]byte, string)
}

// Golden is a GoldenTest with fixed output. A nil Output asserts that no
// golden file exists.
type Golden struct {
	Name string
	Data []byte
}

func (g Golden) Output() ([]byte, string) {
	return g.Data, g.Name
}

// CompareGoldenFile verifies that the output of an operation matches
// the expected output in testdata/<name>.golden.
func CompareGoldenFile(t *testing.T, tc GoldenTest) {
	t.Helper()

	if runtime.GOOS == osutil.Windows {
		// TODO: need to sort out line endings
		t.Skip("skipping golden file test in Windows")
	}

	g := goldie.New(
		t,
		goldie.WithFixtureDir("testdata"),
	)

	output, name := tc.Output()

	if output != nil {
		g.Assert(t, name, output)
		return
	}

	f := filepath.Join("testdata", name+".golden")
	if _, err := os.Stat(f); err == nil || errors.Is(err, os.ErrExist) {
		t.Fatalf("expected no output, but golden file exists: %s", f)
	}
}

// CopyFile copies src to dst, creating or truncating dst.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return fmt.Errorf("copying file: %w", err)
	}

	return nil
}
