package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathstutor/mathstutor-go/core"
	dummymail "github.com/mathstutor/mathstutor-go/services/email/dummy"
	logsvc "github.com/mathstutor/mathstutor-go/services/logger"
	"github.com/mathstutor/mathstutor-go/storage/kv/inmem"
)

func TestNewLoggerSelectsProvider(t *testing.T) {
	conf := core.NewTestConfig()
	assert.IsType(t, &logsvc.ConsoleLogger{}, newLogger(conf))

	conf.RollbarToken = "deadbeef"
	assert.IsType(t, &logsvc.RollbarLogger{}, newLogger(conf))
}

func TestNewMailerSelectsProvider(t *testing.T) {
	conf := core.NewTestConfig()
	assert.IsType(t, &dummymail.Service{}, newMailer(conf, core.NopLogger{}))
}

func TestStorageProvidersDefaultToInMemory(t *testing.T) {
	conf := core.NewTestConfig()

	kv, bc, cleanup, err := storageProviders(conf, core.NopLogger{})
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &inmem.Store{}, kv)
	assert.IsType(t, &inmem.Broadcaster{}, bc)
}

func TestStorageProvidersRejectBadBrokerURL(t *testing.T) {
	conf := core.NewTestConfig()
	conf.AMQPUrl = "not-a-broker-url"

	_, _, _, err := storageProviders(conf, core.NopLogger{})
	require.Error(t, err)
}
