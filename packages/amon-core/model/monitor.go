package model

import (
	"fmt"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

// MonitorObjectClass is the directory objectclass for a Monitor entry.
const MonitorObjectClass = "amonmonitor"

// Monitor is a named bundle of contact names an account wants notified
// (spec.md §3). Contacts are resolved by name at dispatch time — invariant
// 3 is enforced by the service layer (component D), not here, since it
// requires a directory lookup this package has no access to.
type Monitor struct {
	Name     string
	Contacts []string
	User     string
}

type MonitorInput struct {
	Name     string
	Contacts []string
	User     string
}

func NewMonitorFromPublic(in MonitorInput) (*Monitor, error) {
	m := &Monitor{Name: in.Name, Contacts: append([]string(nil), in.Contacts...), User: in.User}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func NewMonitorFromDirectoryEntry(e DirEntry) (*Monitor, error) {
	attr, name, ok := parseRDN(splitDN(e.DN)[0])
	if !ok || attr != "monitor" {
		return nil, amonerr.New(amonerr.InternalError, "malformed monitor DN: "+e.DN)
	}
	m := &Monitor{
		Name:     name,
		Contacts: e.AttrList("contact"),
		User:     e.Attr("user"),
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Monitor) validate() error {
	if m.Name == "" {
		return amonerr.New(amonerr.MissingParameter, "monitor requires a name")
	}
	if !NameRegex.MatchString(m.Name) {
		return amonerr.New(amonerr.InvalidArgument, fmt.Sprintf("monitor name %q is invalid", m.Name))
	}
	if !UUIDRegex.MatchString(m.User) {
		return amonerr.New(amonerr.InvalidArgument, "monitor requires a valid owning account uuid")
	}
	for _, c := range m.Contacts {
		if !NameRegex.MatchString(c) {
			return amonerr.New(amonerr.InvalidArgument, fmt.Sprintf("contact name %q is invalid", c))
		}
	}
	return nil
}

func (m *Monitor) DN() string { return monitorDN(m.User, m.Name) }

func MonitorParentDN(user string) string { return monitorParentDN(user) }

func ParseMonitorDN(dn string) (user, name string, err error) {
	parts := splitDN(dn)
	if len(parts) < 2 {
		return "", "", amonerr.New(amonerr.InternalError, "malformed monitor DN: "+dn)
	}
	if a, v, ok := parseRDN(parts[0]); ok && a == "monitor" {
		name = v
	} else {
		return "", "", amonerr.New(amonerr.InternalError, "malformed monitor DN: "+dn)
	}
	if a, v, ok := parseRDN(parts[1]); ok && a == "uuid" {
		user = v
	} else {
		return "", "", amonerr.New(amonerr.InternalError, "malformed monitor DN: "+dn)
	}
	return user, name, nil
}

func (m *Monitor) Serialize(internal bool) map[string]any {
	contacts := m.Contacts
	if contacts == nil {
		contacts = []string{}
	}
	return map[string]any{
		"name":     m.Name,
		"contacts": contacts,
		"user":     m.User,
	}
}

func (m *Monitor) DirectoryAttrs() map[string][]string {
	return map[string][]string{
		"objectclass": {MonitorObjectClass},
		"monitor":     {m.Name},
		"contact":     m.Contacts,
		"user":        {m.User},
	}
}
