// Package pathutil manages application file paths and locations
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// EnvVar selects an alternative set of files, e.g. for development.
const EnvVar = "FOCUSGUARD_ENV"

// Paths holds all application path configurations.
type Paths struct {
	configDir      string
	configFileName string
	dbFileName     string
	statusFileName string
	logFileName    string

	// Computed absolute paths
	configFilePath string
	dbFilePath     string
	statusFilePath string
	logFilePath    string
}

var (
	paths *Paths
	once  sync.Once
)

// Initialize must be called once at program startup.
func Initialize() error {
	var initErr error

	once.Do(func() {
		paths = &Paths{
			configDir:      "focusguard",
			configFileName: "config.yml",
			dbFileName:     "focusguard.db",
			statusFileName: "status.json",
			logFileName:    "focusguard.log",
		}

		paths.applyEnvironmentOverrides(os.Getenv(EnvVar))
		initErr = paths.computePaths()
	})

	return initErr
}

func Dir() string {
	return paths.configDir
}

func ConfigFilePath() string {
	return paths.configFilePath
}

func DBFilePath() string {
	return paths.dbFilePath
}

func StatusFilePath() string {
	return paths.statusFilePath
}

func LogFilePath() string {
	return paths.logFilePath
}

func (p *Paths) applyEnvironmentOverrides(env string) {
	env = strings.TrimSpace(env)
	if env == "" {
		return
	}

	p.configFileName = fmt.Sprintf("config_%s.yml", env)
	p.dbFileName = fmt.Sprintf("focusguard_%s.db", env)
	p.statusFileName = fmt.Sprintf("status_%s.json", env)
	p.logFileName = fmt.Sprintf("focusguard_%s.log", env)
}

func (p *Paths) computePaths() error {
	var err error

	p.configFilePath, err = xdg.ConfigFile(filepath.Join(p.configDir, p.configFileName))
	if err != nil {
		return err
	}

	dataDir, err := xdg.DataFile(p.configDir)
	if err != nil {
		return err
	}

	p.dbFilePath = filepath.Join(dataDir, p.dbFileName)
	p.statusFilePath = filepath.Join(dataDir, p.statusFileName)
	p.logFilePath = filepath.Join(dataDir, "log", p.logFileName)

	return nil
}
