package network

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"
)

// DefaultHostsPath is the system hosts file.
const DefaultHostsPath = "/etc/hosts"

const (
	beginMarker = "# BEGIN focusguard"
	endMarker   = "# END focusguard"
)

// Hosts edits a block of entries in a hosts file delimited by markers.
// Lines outside the block are never touched.
type Hosts struct {
	Path string
}

// Writable reports whether the hosts file can be rewritten by this process.
func (h *Hosts) Writable() bool {
	f, err := os.OpenFile(h.Path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}

	_ = f.Close()

	return true
}

// Apply replaces the managed block so that every domain resolves to addr.
// An empty domain list removes the block.
func (h *Hosts) Apply(addr string, domains []string) error {
	content, err := os.ReadFile(h.Path)
	if err != nil {
		return err
	}

	out, err := stripBlock(content)
	if err != nil {
		return err
	}

	if len(domains) > 0 {
		if len(out) > 0 && !bytes.HasSuffix(out, []byte("\n")) {
			out = append(out, '\n')
		}

		out = append(out, renderBlock(addr, domains)...)
	}

	if bytes.Equal(out, content) {
		return nil
	}

	return h.write(out)
}

// Remove deletes the managed block.
func (h *Hosts) Remove() error {
	return h.Apply("", nil)
}

// Managed returns the domains in the managed block.
func (h *Hosts) Managed() ([]string, error) {
	content, err := os.ReadFile(h.Path)
	if err != nil {
		return nil, err
	}

	var (
		domains []string
		inside  bool
	)

	sc := bufio.NewScanner(bytes.NewReader(content))

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == beginMarker:
			inside = true
		case line == endMarker:
			inside = false
		case inside:
			if fields := strings.Fields(line); len(fields) == 2 {
				domains = append(domains, fields[1])
			}
		}
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	all := slices.Clone(domains)

	return slices.DeleteFunc(domains, func(d string) bool {
		return strings.HasPrefix(d, "www.") &&
			slices.Contains(all, strings.TrimPrefix(d, "www."))
	}), nil
}

// write truncates the file in place rather than renaming over it since hosts
// files are often bind mounts.
func (h *Hosts) write(b []byte) error {
	info, err := os.Stat(h.Path)
	if err != nil {
		return err
	}

	return os.WriteFile(h.Path, b, info.Mode().Perm())
}

func renderBlock(addr string, domains []string) []byte {
	var buf bytes.Buffer

	buf.WriteString(beginMarker + "\n")

	for _, d := range domains {
		fmt.Fprintf(&buf, "%s %s\n", addr, d)

		if !strings.HasPrefix(d, "www.") {
			fmt.Fprintf(&buf, "%s www.%s\n", addr, d)
		}
	}

	buf.WriteString(endMarker + "\n")

	return buf.Bytes()
}

func stripBlock(content []byte) ([]byte, error) {
	var (
		out    bytes.Buffer
		inside bool
	)

	sc := bufio.NewScanner(bytes.NewReader(content))

	for sc.Scan() {
		line := sc.Text()

		switch strings.TrimSpace(line) {
		case beginMarker:
			inside = true
			continue
		case endMarker:
			if !inside {
				return nil, errMalformedHosts
			}

			inside = false

			continue
		}

		if inside {
			continue
		}

		out.WriteString(line + "\n")
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	if inside {
		return nil, errMalformedHosts
	}

	if len(content) > 0 && content[len(content)-1] != '\n' && out.Len() > 0 {
		out.Truncate(out.Len() - 1)
	}

	return out.Bytes(), nil
}
