package directory

import (
	"errors"

	"github.com/go-ldap/ldap/v3"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

// translateErr maps an *ldap.Error's result code onto the domain's error
// vocabulary (spec.md §4.A: "errors map to NotFound/AlreadyExists/
// Unavailable(propagated uncached)/Constraint/Other").
func translateErr(op, dn string, err error) error {
	if err == nil {
		return nil
	}

	var lerr *ldap.Error
	if !errors.As(err, &lerr) {
		return amonerr.Wrap(amonerr.Unavailable, op+" "+dn+": directory unreachable", err)
	}

	switch lerr.ResultCode {
	case ldap.LDAPResultNoSuchObject:
		return amonerr.Wrap(amonerr.ResourceNotFound, op+" "+dn+": not found", err)
	case ldap.LDAPResultEntryAlreadyExists:
		return amonerr.Wrap(amonerr.InvalidArgument, op+" "+dn+": already exists", err)
	case ldap.LDAPResultConstraintViolation, ldap.LDAPResultNotAllowedOnNonLeaf:
		return amonerr.Wrap(amonerr.InvalidArgument, op+" "+dn+": constraint violation", err)
	case ldap.LDAPResultBusy, ldap.LDAPResultUnavailable, ldap.LDAPResultTimeLimitExceeded:
		return amonerr.Wrap(amonerr.Unavailable, op+" "+dn+": directory unavailable", err)
	default:
		return amonerr.Wrap(amonerr.InternalError, op+" "+dn+": unexpected directory error", err)
	}
}
