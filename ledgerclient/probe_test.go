// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgerclient_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/bookstored/background"
	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/fixtures"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/ledgerclient"
	"github.com/bitmark-inc/bookstored/ledgerclient/mocks"
	"github.com/bitmark-inc/logger"
)

func TestProbe(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	answered := make(chan struct{})
	failed := make(chan struct{})

	client := mocks.NewMockClient(ctl)
	gomock.InOrder(
		client.EXPECT().Query(gomock.Any(), ledger.Name{}).DoAndReturn(
			func(interface{}, interface{}) (ledger.Result, error) {
				close(answered)
				return ledger.Result{String: ledger.TokenName}, nil
			}),
		client.EXPECT().Query(gomock.Any(), ledger.Name{}).DoAndReturn(
			func(interface{}, interface{}) (ledger.Result, error) {
				close(failed)
				return ledger.Result{}, fault.ErrLedgerUnavailable
			}),
		client.EXPECT().Query(gomock.Any(), ledger.Name{}).Return(ledger.Result{}, fault.ErrLedgerUnavailable).AnyTimes(),
	)

	registry := prometheus.NewRegistry()
	probe, err := ledgerclient.NewProbe(logger.New(fixtures.LogCategory), client, 10*time.Millisecond, registry)
	assert.Nil(t, err, "probe error")

	p := background.Start(background.Processes{probe}, nil)

	select {
	case <-answered:
	case <-time.After(time.Second):
		t.Fatal("first probe not run")
	}
	select {
	case <-failed:
	case <-time.After(time.Second):
		t.Fatal("second probe not run")
	}
	p.Stop()

	families, err := registry.Gather()
	assert.Nil(t, err, "gather error")

	found := false
	for _, mf := range families {
		if "bookstore_ledger_up" == mf.GetName() {
			found = true
			assert.Equal(t, 0.0, mf.GetMetric()[0].GetGauge().GetValue(), "ledger reported up")
		}
	}
	assert.True(t, found, "gauge not registered")
}

func TestProbeDuplicateRegistration(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	registry := prometheus.NewRegistry()
	log := logger.New(fixtures.LogCategory)

	_, err := ledgerclient.NewProbe(log, nil, 0, registry)
	assert.Nil(t, err, "first probe")

	_, err = ledgerclient.NewProbe(log, nil, 0, registry)
	assert.NotNil(t, err, "second probe registered")
}
