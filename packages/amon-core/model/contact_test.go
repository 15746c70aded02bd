package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

func validContactInput() ContactInput {
	return ContactInput{Name: "ops", Medium: "email", Data: "ops@example.com", User: testUUID}
}

func TestNewContactFromPublicRejectsMissingMedium(t *testing.T) {
	in := validContactInput()
	in.Medium = ""
	_, err := NewContactFromPublic(in)
	require.Error(t, err)
	assert.Equal(t, amonerr.MissingParameter, amonerr.KindOf(err))
}

func TestNewContactFromPublicRejectsInvalidName(t *testing.T) {
	in := validContactInput()
	in.Name = "1-leads-with-digit"
	_, err := NewContactFromPublic(in)
	require.Error(t, err)
	assert.Equal(t, amonerr.InvalidArgument, amonerr.KindOf(err))
}

func TestNewContactFromPublicRejectsInvalidUser(t *testing.T) {
	in := validContactInput()
	in.User = "not-a-uuid"
	_, err := NewContactFromPublic(in)
	require.Error(t, err)
	assert.Equal(t, amonerr.InvalidArgument, amonerr.KindOf(err))
}

func TestContactDNRoundTripsThroughParseContactDN(t *testing.T) {
	c, err := NewContactFromPublic(validContactInput())
	require.NoError(t, err)

	user, name, err := ParseContactDN(c.DN())
	require.NoError(t, err)
	assert.Equal(t, c.User, user)
	assert.Equal(t, c.Name, name)
}

func TestContactFromDirectoryEntryReconstructs(t *testing.T) {
	c, err := NewContactFromPublic(validContactInput())
	require.NoError(t, err)

	entry := DirEntry{DN: c.DN(), Attributes: c.DirectoryAttrs()}
	got, err := NewContactFromDirectoryEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, c.Medium, got.Medium)
	assert.Equal(t, c.Data, got.Data)
}
