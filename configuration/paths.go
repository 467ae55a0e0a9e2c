// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/bookstored/util"
	"github.com/bitmark-inc/logger"
)

// log rotation defaults shared by the programs
const (
	DefaultLogDirectory = "log"
	DefaultLogCount     = 10          //  number of log files retained
	DefaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// DatabaseType - location of a LevelDB database
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// DefaultLogging - logging setup writing file into the log directory
func DefaultLogging(file string) logger.Configuration {
	return logger.Configuration{
		Directory: DefaultLogDirectory,
		File:      file,
		Size:      DefaultLogSize,
		Count:     DefaultLogCount,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
}

// DataDirectory - absolute data directory for a configuration file
//
// "." selects the directory holding the configuration file, the
// result must be an existing directory
func DataDirectory(configurationFileName string, dataDirectory string) (string, error) {
	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return "", err
	}

	switch dataDirectory {
	case "", "~":
		return "", fmt.Errorf("Path: %q is not a valid directory", dataDirectory)
	case ".":
		dataDirectory, _ = filepath.Split(configurationFileName)
	}
	dataDirectory, err = filepath.Abs(filepath.Clean(dataDirectory))
	if nil != err {
		return "", err
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(dataDirectory); nil != err {
		return "", err
	} else if !fileInfo.IsDir() {
		return "", fmt.Errorf("Path: %q is not a directory", dataDirectory)
	}
	return dataDirectory, nil
}

// Resolve - make the database path absolute and create its directory
//
// the name must be a plain file name
func (d *DatabaseType) Resolve(dataDirectory string) error {
	if !isPlainName(d.Name) {
		return fmt.Errorf("Files: %q is not plain name", d.Name)
	}
	d.Directory = util.EnsureAbsolute(dataDirectory, d.Directory)
	if err := os.MkdirAll(d.Directory, 0700); nil != err {
		return err
	}
	d.Name = filepath.Join(d.Directory, d.Name)
	return nil
}

// ResolveLogging - make the log directory absolute and create it
func ResolveLogging(dataDirectory string, logging *logger.Configuration) error {
	if !isPlainName(logging.File) {
		return fmt.Errorf("Files: %q is not plain name", logging.File)
	}
	logging.Directory = util.EnsureAbsolute(dataDirectory, logging.Directory)
	return os.MkdirAll(logging.Directory, 0700)
}

func isPlainName(name string) bool {
	if "" == name {
		return false
	}
	switch filepath.Dir(name) {
	case "", ".":
		return true
	default:
		return false
	}
}
