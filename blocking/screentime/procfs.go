package screentime

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ProcFS reads the process table from a procfs mount.
type ProcFS struct {
	Root string
}

// NewProcFS returns a process table backed by /proc.
func NewProcFS() *ProcFS {
	return &ProcFS{Root: "/proc"}
}

// Processes lists the processes visible under Root. Processes that exit while
// being read are skipped.
func (p *ProcFS) Processes(ctx context.Context) ([]Process, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, err
	}

	procs := make([]Process, 0, len(entries))

	for _, e := range entries {
		if ctx.Err() != nil {
			return procs, ctx.Err()
		}

		pid, err := strconv.Atoi(e.Name())
		if err != nil || !e.IsDir() {
			continue
		}

		dir := filepath.Join(p.Root, e.Name())

		comm, err := os.ReadFile(filepath.Join(dir, "comm"))
		if err != nil {
			continue
		}

		proc := Process{
			PID:  pid,
			Name: strings.TrimSpace(string(comm)),
		}

		cmdline, err := os.ReadFile(filepath.Join(dir, "cmdline"))
		if err == nil {
			argv0, _, _ := bytes.Cut(cmdline, []byte{0})
			proc.Exe = string(argv0)
		}

		procs = append(procs, proc)
	}

	return procs, nil
}

// Terminate sends SIGTERM to pid.
func (p *ProcFS) Terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}

	return proc.Signal(syscall.SIGTERM)
}
