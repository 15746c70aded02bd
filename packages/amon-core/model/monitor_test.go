package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

func TestNewMonitorFromPublicRejectsInvalidContactName(t *testing.T) {
	_, err := NewMonitorFromPublic(MonitorInput{Name: "system", User: testUUID, Contacts: []string{"bad name"}})
	require.Error(t, err)
	assert.Equal(t, amonerr.InvalidArgument, amonerr.KindOf(err))
}

func TestNewMonitorFromPublicAllowsEmptyContacts(t *testing.T) {
	m, err := NewMonitorFromPublic(MonitorInput{Name: "system", User: testUUID})
	require.NoError(t, err)
	assert.Empty(t, m.Contacts)
}

func TestMonitorFromPublicCopiesContactsSlice(t *testing.T) {
	contacts := []string{"ops"}
	m, err := NewMonitorFromPublic(MonitorInput{Name: "system", User: testUUID, Contacts: contacts})
	require.NoError(t, err)

	contacts[0] = "mutated"
	assert.Equal(t, "ops", m.Contacts[0], "Monitor must not alias the caller's Contacts slice")
}

func TestMonitorDNRoundTripsThroughParseMonitorDN(t *testing.T) {
	m, err := NewMonitorFromPublic(MonitorInput{Name: "system", User: testUUID})
	require.NoError(t, err)

	user, name, err := ParseMonitorDN(m.DN())
	require.NoError(t, err)
	assert.Equal(t, m.User, user)
	assert.Equal(t, m.Name, name)
}

func TestMonitorSerializeNeverNilContacts(t *testing.T) {
	m, err := NewMonitorFromPublic(MonitorInput{Name: "system", User: testUUID})
	require.NoError(t, err)

	out := m.Serialize(false)
	assert.Equal(t, []string{}, out["contacts"])
}
