// Package model implements Amon's authoritative object model — Contact,
// Monitor and Probe — per spec.md §3-4.B. Each type is constructed either
// from public REST input or from a directory-native entry, validated once
// at construction time (never deferred), and serialized back out for
// either the public API or the relay/agent manifest ("internal" view).
package model

import (
	"fmt"
	"regexp"
	"strings"
)

// NameRegex is the naming rule shared by Contact, Monitor and Probe names
// (spec.md §3).
var NameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.\-]{0,31}$`)

// UUIDRegex validates account/machine/server identifiers (spec.md §4.B).
var UUIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

const orgSuffix = "o=smartdc"

// DirEntry is the directory-native form of an entity: a DN plus its
// attribute set, exactly what directory.Adapter.Search returns. Kept here
// (rather than in the directory package) so model constructors can accept
// it without an import cycle.
type DirEntry struct {
	DN         string
	Attributes map[string][]string
}

// Attr returns the first value of attr, or "".
func (e DirEntry) Attr(attr string) string {
	vs := e.Attributes[attr]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// AttrList returns all values of attr.
func (e DirEntry) AttrList(attr string) []string {
	return e.Attributes[attr]
}

// contactDN builds `name=<name>, uuid=<user>, o=smartdc`.
func contactDN(user, name string) string {
	return fmt.Sprintf("name=%s, uuid=%s, %s", name, user, orgSuffix)
}

func contactParentDN(user string) string {
	return fmt.Sprintf("uuid=%s, %s", user, orgSuffix)
}

// monitorDN builds `monitor=<name>, uuid=<user>, o=smartdc`. Monitors and
// contacts live side by side under the same account entry; the RDN
// attribute (`monitor=` here, `name=` for a Contact) tells them apart.
func monitorDN(user, name string) string {
	return fmt.Sprintf("monitor=%s, uuid=%s, %s", name, user, orgSuffix)
}

func monitorParentDN(user string) string {
	return fmt.Sprintf("uuid=%s, %s", user, orgSuffix)
}

// probeDN builds `probe=<name>, monitor=<monitor>, uuid=<user>, o=smartdc`.
func probeDN(user, monitor, name string) string {
	return fmt.Sprintf("probe=%s, monitor=%s, uuid=%s, %s", name, monitor, user, orgSuffix)
}

func probeParentDN(user, monitor string) string {
	return fmt.Sprintf("monitor=%s, uuid=%s, %s", monitor, user, orgSuffix)
}

// parseRDN splits one "attr=value" component, tolerating surrounding
// whitespace the way the directory's DN renderer emits it ("attr=value, parent").
func parseRDN(component string) (attr, value string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(component), "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func splitDN(dn string) []string {
	return strings.Split(dn, ",")
}
