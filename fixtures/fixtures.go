// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"fmt"
	"os"

	"github.com/bitmark-inc/logger"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// account addresses used across tests
const (
	OwnerAddress  = "a8e2b55d0b6e24c2c6f7b0a3d5cf08b4d3a8e2b5"
	Owner2Address = "4c2b1f0a9e8d7c6b5a49382716050f4e3d2c1b0a"
	BuyerAddress  = "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c"
	Buyer2Address = "9a8b7c6d5e4f30211203f4e5d6c7b8a99a8b7c6d"
)

// SetupTestLogger - start a logger writing into a throwaway directory
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove its files
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}
