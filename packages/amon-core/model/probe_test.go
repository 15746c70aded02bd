package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

type fakePlugin struct {
	global      bool
	validateErr error
}

func (p fakePlugin) ValidateConfig(map[string]any) error { return p.validateErr }
func (p fakePlugin) RunInGlobal() bool                    { return p.global }

type fakeRegistry map[string]ProbeTypePlugin

func (r fakeRegistry) Lookup(t string) (ProbeTypePlugin, bool) {
	p, ok := r[t]
	return p, ok
}

const testUUID = "550e8400-e29b-41d4-a716-446655440000"

func validInput() ProbeInput {
	return ProbeInput{
		Name: "cpu-check", User: testUUID, Monitor: "system", Type: "machineup",
		Machine: testUUID, Config: map[string]any{},
	}
}

func TestNewProbeFromPublicRejectsMachineAndServerTogether(t *testing.T) {
	reg := fakeRegistry{"machineup": fakePlugin{}}
	in := validInput()
	in.Server = testUUID

	_, err := NewProbeFromPublic(in, reg)
	require.Error(t, err)
	assert.Equal(t, amonerr.InvalidArgument, amonerr.KindOf(err))
}

func TestNewProbeFromPublicRequiresOneTarget(t *testing.T) {
	reg := fakeRegistry{"machineup": fakePlugin{}}
	in := validInput()
	in.Machine = ""

	_, err := NewProbeFromPublic(in, reg)
	require.Error(t, err)
	assert.Equal(t, amonerr.MissingParameter, amonerr.KindOf(err))
}

func TestNewProbeFromPublicRejectsUnknownType(t *testing.T) {
	reg := fakeRegistry{}
	_, err := NewProbeFromPublic(validInput(), reg)
	require.Error(t, err)
	assert.Equal(t, amonerr.InvalidArgument, amonerr.KindOf(err))
}

func TestNewProbeFromPublicDerivesGlobalFromPluginNeverFromInput(t *testing.T) {
	reg := fakeRegistry{"machineup": fakePlugin{global: true}}
	p, err := NewProbeFromPublic(validInput(), reg)
	require.NoError(t, err)
	assert.True(t, p.Global)

	reg2 := fakeRegistry{"machineup": fakePlugin{global: false}}
	p2, err := NewProbeFromPublic(validInput(), reg2)
	require.NoError(t, err)
	assert.False(t, p2.Global)
}

func TestNewProbeFromPublicRejectsInvalidConfig(t *testing.T) {
	reg := fakeRegistry{"machineup": fakePlugin{validateErr: assert.AnError}}
	_, err := NewProbeFromPublic(validInput(), reg)
	require.Error(t, err)
	assert.Equal(t, amonerr.InvalidArgument, amonerr.KindOf(err))
}

func TestSerializeHidesGlobalUnlessInternal(t *testing.T) {
	reg := fakeRegistry{"machineup": fakePlugin{global: true}}
	p, err := NewProbeFromPublic(validInput(), reg)
	require.NoError(t, err)

	pub := p.Serialize(false)
	_, present := pub["global"]
	assert.False(t, present)

	internal := p.Serialize(true)
	assert.Equal(t, true, internal["global"])
}

func TestTargetReturnsWhicheverIsSet(t *testing.T) {
	reg := fakeRegistry{"machineup": fakePlugin{}}
	p, err := NewProbeFromPublic(validInput(), reg)
	require.NoError(t, err)

	targetType, uuid := p.Target()
	assert.Equal(t, "machine", targetType)
	assert.Equal(t, testUUID, uuid)
}

func TestDNRoundTripsThroughParseProbeDN(t *testing.T) {
	reg := fakeRegistry{"machineup": fakePlugin{}}
	p, err := NewProbeFromPublic(validInput(), reg)
	require.NoError(t, err)

	user, monitor, name, err := ParseProbeDN(p.DN())
	require.NoError(t, err)
	assert.Equal(t, p.User, user)
	assert.Equal(t, p.Monitor, monitor)
	assert.Equal(t, p.Name, name)
}
