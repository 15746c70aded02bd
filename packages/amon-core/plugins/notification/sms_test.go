package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSMSNotifyRejectsEmptyRecipient(t *testing.T) {
	plugin, err := NewSMSPlugin(nil, zap.NewNop())
	require.NoError(t, err)

	err = plugin.Notify(t.Context(), Event{}, "", "msg")
	assert.Error(t, err)
}

func TestSMSNotifySucceedsWithRecipient(t *testing.T) {
	plugin, err := NewSMSPlugin(nil, zap.NewNop())
	require.NoError(t, err)

	err = plugin.Notify(t.Context(), Event{}, "+15551234567", "msg")
	assert.NoError(t, err)
}

func TestEmailNotifyRejectsEmptyRecipient(t *testing.T) {
	plugin, err := NewEmailPlugin(map[string]any{"from": "amon@example.com"}, zap.NewNop())
	require.NoError(t, err)

	err = plugin.Notify(t.Context(), Event{}, "", "msg")
	assert.Error(t, err)
}

func TestEmailNotifyDefaultsFromAddress(t *testing.T) {
	plugin, err := NewEmailPlugin(map[string]any{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "amon@localhost", plugin.(*EmailPlugin).from)
}

func TestRegistryBuildRejectsUnknownMedium(t *testing.T) {
	_, err := Build(map[string]PluginConfig{"weird": {Path: "carrier-pigeon"}}, zap.NewNop())
	assert.Error(t, err)
}

func TestRegistryLookupMissesUnknownKey(t *testing.T) {
	reg, err := Build(map[string]PluginConfig{"sms": {Path: "sms"}}, zap.NewNop())
	require.NoError(t, err)

	_, ok := reg.Lookup("webhook")
	assert.False(t, ok)

	_, ok = reg.Lookup("sms")
	assert.True(t, ok)
}
