package config

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/ayoisaiah/focusguard/blocking/network"
)

// Blocklist names one of the lists in the blocking section of the config
// file.
type Blocklist string

const (
	BlockedDomains    Blocklist = keyBlockingDomains
	BlockedApps       Blocklist = keyBlockingApps
	BlockedCategories Blocklist = keyBlockingCategories
)

func (b Blocklist) normalize(s string) (string, error) {
	if b == BlockedDomains {
		return network.NormalizeDomain(s)
	}

	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", errEmptyBlocklistEntry
	}

	return s, nil
}

// ReadBlocklist returns the entries of a list.
func ReadBlocklist(configPath string, list Blocklist) ([]string, error) {
	v := newViper(configPath)
	setupViper(v, &Config{})

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errReadConfig.Wrap(err)
	}

	return v.GetStringSlice(string(list)), nil
}

// EditBlocklist adds and removes entries of a list and writes the config
// file. It returns the updated list. A running session picks the change up
// through Watch.
func EditBlocklist(
	configPath string,
	list Blocklist,
	add, remove []string,
) ([]string, error) {
	v := newViper(configPath)
	setupViper(v, &Config{})

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errReadConfig.Wrap(err)
	}

	entries := v.GetStringSlice(string(list))

	for _, s := range remove {
		entry, err := list.normalize(s)
		if err != nil {
			return nil, err
		}

		i := slices.Index(entries, entry)
		if i < 0 {
			return nil, errNotInBlocklist.Fmt(s)
		}

		entries = slices.Delete(entries, i, i+1)
	}

	for _, s := range add {
		entry, err := list.normalize(s)
		if err != nil {
			return nil, err
		}

		if !slices.Contains(entries, entry) {
			entries = append(entries, entry)
		}
	}

	v.Set(string(list), entries)

	if err := v.WriteConfig(); err != nil {
		return nil, errWriteConfig.Wrap(err)
	}

	return entries, nil
}
