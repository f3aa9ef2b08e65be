package timer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/internal/models"
	"github.com/ayoisaiah/focusguard/internal/timeutil"
)

// Status is what `focusguard status` reports about a running session.
type Status struct {
	EndTime            time.Time       `json:"end_time"`
	TaskTitle          string          `json:"task_title"`
	Phase              models.Phase    `json:"phase"`
	Blocking           blocking.State  `json:"blocking"`
	Armed              []blocking.Kind `json:"armed"`
	SecondsRemaining   int             `json:"seconds_remaining"`
	CompletedIntervals int             `json:"completed_intervals"`
	MaxIntervals       int             `json:"max_intervals"`
	CompletionPercent  float64         `json:"completion_percent"`
	Running            bool            `json:"running"`
	EmergencyOverride  bool            `json:"emergency_override"`
}

func (t *Timer) status(state models.SessionState, task models.Task) Status {
	s := Status{
		TaskTitle:          task.Title,
		Phase:              state.Phase,
		SecondsRemaining:   state.SecondsRemaining,
		CompletedIntervals: state.CompletedIntervals,
		MaxIntervals:       task.MaxIntervals(),
		CompletionPercent:  task.CompletionPercentage(),
		Running:            state.Running,
	}

	if state.Running {
		s.EndTime = t.now().Add(time.Duration(state.SecondsRemaining) * time.Second)
	}

	bs := t.blocker.Status()
	s.Blocking = bs.State

	if bs.Session != nil {
		s.Armed = bs.Session.Armed
		s.EmergencyOverride = bs.Session.EmergencyOverrideUsed
	}

	return s
}

func writeStatusFile(path string, s Status) (err error) {
	statusFile, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		ferr := statusFile.Close()
		if ferr != nil && err == nil {
			err = ferr
		}
	}()

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(statusFile)

	_, err = writer.Write(b)
	if err != nil {
		return err
	}

	return writer.Flush()
}

// FormatStatus renders s as a single line.
func FormatStatus(s Status) string {
	m, sec := timeutil.SecsToMinsAndSecs(float64(s.SecondsRemaining))

	var label string

	switch s.Phase {
	case models.Focus:
		label = fmt.Sprintf("[Focus %d/%d]", s.CompletedIntervals+1, s.MaxIntervals)
	case models.Break:
		label = "[Break]"
	case models.Completed:
		return fmt.Sprintf("[Completed] %s (%.0f%%)", s.TaskTitle, s.CompletionPercent)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s: %02d:%02d", label, m, sec)

	if !s.Running {
		b.WriteString(" (paused)")
	}

	if s.TaskTitle != "" {
		fmt.Fprintf(&b, " %s", s.TaskTitle)
	}

	if s.Phase == models.Focus {
		switch {
		case s.EmergencyOverride:
			b.WriteString(" | blocking lifted")
		case len(s.Armed) > 0:
			fmt.Fprintf(&b, " | blocking: %s", joinKinds(s.Armed))
		case s.Blocking == blocking.StateArming:
			b.WriteString(" | blocking: arming")
		}
	}

	return b.String()
}

// ReadStatus returns the status of the running session, or nil if no session
// is running. A session is running while another process holds the database.
func ReadStatus(dbPath, statusPath string) (*Status, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(dbPath, fileMode, &bolt.Options{
		Timeout: 100 * time.Millisecond,
	})
	// This means focusguard is not running, so no status to report
	if err == nil {
		return nil, db.Close()
	}

	if !errors.Is(err, bolt.ErrDatabaseOpen) &&
		!errors.Is(err, bolt.ErrTimeout) {
		return nil, err
	}

	fileBytes, err := os.ReadFile(statusPath)
	if err != nil {
		// missing file should not return an error
		return nil, nil
	}

	var s Status

	err = json.Unmarshal(fileBytes, &s)
	if err != nil {
		return nil, err
	}

	if s.Running && !s.EndTime.IsZero() {
		s.SecondsRemaining = max(0, int(time.Until(s.EndTime).Round(time.Second).Seconds()))
	}

	return &s, nil
}

// ReportStatus prints the status of the running session to w.
func ReportStatus(w io.Writer, dbPath, statusPath string) error {
	s, err := ReadStatus(dbPath, statusPath)
	if err != nil || s == nil {
		return err
	}

	_, err = fmt.Fprintln(w, FormatStatus(*s))

	return err
}
