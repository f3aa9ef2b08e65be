// Package blocking arms and disarms the distraction-blocking layers for focus
// phases and decides when an emergency override may lift them
package blocking

import (
	"context"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// Kind identifies a blocking layer.
type Kind string

const (
	ScreenTime Kind = "screen_time"
	FocusMode  Kind = "focus_mode"
	Network    Kind = "network"
)

// Kinds lists the layers in the order they are armed.
var Kinds = []Kind{ScreenTime, FocusMode, Network}

// ParseKind converts a layer name as typed on the command line.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))

	if !slices.Contains(Kinds, k) {
		return "", errUnknownLayer.Fmt(s)
	}

	return k, nil
}

// Level is the blocking level chosen by the user. Higher levels arm more
// layers.
type Level int

const (
	Off Level = iota
	Light
	Strict
	Maximum
)

var levelNames = map[Level]string{
	Off:     "off",
	Light:   "light",
	Strict:  "strict",
	Maximum: "maximum",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}

	return "unknown"
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}

	return Off, errUnknownLevel.Fmt(s)
}

// minLevel is the lowest level at which a layer may be armed.
func minLevel(k Kind) Level {
	if k == Network {
		return Strict
	}

	return Light
}

// DefaultEmergencyAccessFraction is the share of a focus phase that must have
// elapsed before an emergency override is allowed.
const DefaultEmergencyAccessFraction = 0.8

// Config is the user's blocking policy as of the start of a focus phase.
type Config struct {
	CategoryApps            map[string][]string
	FocusProfile            string
	Apps                    []string
	Categories              []string
	Domains                 []string
	EmergencyAccessFraction float64
	Level                   Level
	ScreenTimeAuthorized    bool
}

// Targets returns what the layers should block.
func (c *Config) Targets() Targets {
	return Targets{
		Apps:         normalizeList(c.Apps),
		Categories:   normalizeList(c.Categories),
		CategoryApps: c.CategoryApps,
		Domains:      normalizeList(c.Domains),
		Profile:      c.FocusProfile,
	}
}

// Targets is the set of things a layer enforces.
type Targets struct {
	CategoryApps map[string][]string
	Profile      string
	Apps         []string
	Categories   []string
	Domains      []string
}

// BlockedApps returns the blocked applications including those that belong to
// a blocked category, in natural order and without duplicates.
func (t Targets) BlockedApps() []string {
	apps := slices.Clone(t.Apps)

	for _, c := range t.Categories {
		apps = append(apps, t.CategoryApps[c]...)
	}

	return normalizeList(apps)
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))

	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || slices.Contains(out, v) {
			continue
		}

		out = append(out, v)
	}

	slices.SortFunc(out, func(a, b string) int {
		if natural.Less(a, b) {
			return -1
		}

		if natural.Less(b, a) {
			return 1
		}

		return 0
	})

	return out
}

// Layer is one independent enforcement mechanism.
type Layer interface {
	// Kind identifies the layer
	Kind() Kind
	// Authorized reports whether the layer may be enabled at all
	Authorized(ctx context.Context, cfg *Config) bool
	// RequestAuthorization asks the user (or the system) for permission
	RequestAuthorization(ctx context.Context) (bool, error)
	// Enable starts enforcing targets. Enabling an enabled layer replaces its
	// targets
	Enable(ctx context.Context, targets Targets) error
	// Disable stops enforcing. It is safe to call on a disabled layer
	Disable(ctx context.Context) error
}
