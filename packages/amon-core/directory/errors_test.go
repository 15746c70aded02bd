package directory

import (
	"errors"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

func TestTranslateErrNilIsNil(t *testing.T) {
	assert.NoError(t, translateErr("search", "dn", nil))
}

func TestTranslateErrNonLDAPIsUnavailable(t *testing.T) {
	err := translateErr("search", "dn", errors.New("connection refused"))
	assert.Equal(t, amonerr.Unavailable, amonerr.KindOf(err))
}

func TestTranslateErrResultCodes(t *testing.T) {
	cases := []struct {
		name string
		code uint16
		want amonerr.Kind
	}{
		{"no such object", ldap.LDAPResultNoSuchObject, amonerr.ResourceNotFound},
		{"already exists", ldap.LDAPResultEntryAlreadyExists, amonerr.InvalidArgument},
		{"constraint violation", ldap.LDAPResultConstraintViolation, amonerr.InvalidArgument},
		{"not allowed on non-leaf", ldap.LDAPResultNotAllowedOnNonLeaf, amonerr.InvalidArgument},
		{"busy", ldap.LDAPResultBusy, amonerr.Unavailable},
		{"unavailable", ldap.LDAPResultUnavailable, amonerr.Unavailable},
		{"time limit exceeded", ldap.LDAPResultTimeLimitExceeded, amonerr.Unavailable},
		{"unrecognized code", 9999, amonerr.InternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lerr := ldap.NewError(tc.code, errors.New("boom"))
			got := translateErr("search", "dn", lerr)
			assert.Equal(t, tc.want, amonerr.KindOf(got))
		})
	}
}
