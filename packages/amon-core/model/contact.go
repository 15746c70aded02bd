package model

import (
	"fmt"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

// ContactObjectClass is the directory objectclass for a Contact entry.
const ContactObjectClass = "amoncontact"

// Contact is a notification endpoint for a Monitor (spec.md §3).
type Contact struct {
	Name   string
	Medium string
	Data   string
	User   string
}

// ContactInput is the public-form payload accepted by PUT
// /pub/:login/contacts/:contact.
type ContactInput struct {
	Name   string
	Medium string
	Data   string
	User   string
}

// NewContactFromPublic validates a public-form payload and constructs a
// Contact. Route parameters win over body fields for identity (Name, User)
// per spec.md §4.D — callers are expected to have already merged the two
// before calling this.
func NewContactFromPublic(in ContactInput) (*Contact, error) {
	c := &Contact{Name: in.Name, Medium: in.Medium, Data: in.Data, User: in.User}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewContactFromDirectoryEntry reconstructs a Contact from a directory
// search result.
func NewContactFromDirectoryEntry(e DirEntry) (*Contact, error) {
	attr, name, ok := parseRDN(splitDN(e.DN)[0])
	if !ok || attr != "name" {
		return nil, amonerr.New(amonerr.InternalError, "malformed contact DN: "+e.DN)
	}
	c := &Contact{
		Name:   name,
		Medium: e.Attr("medium"),
		Data:   e.Attr("data"),
		User:   e.Attr("user"),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Contact) validate() error {
	if c.Name == "" {
		return amonerr.New(amonerr.MissingParameter, "contact requires a name")
	}
	if !NameRegex.MatchString(c.Name) {
		return amonerr.New(amonerr.InvalidArgument, fmt.Sprintf("contact name %q is invalid", c.Name))
	}
	if c.Medium == "" {
		return amonerr.New(amonerr.MissingParameter, "contact requires a medium")
	}
	if c.Data == "" {
		return amonerr.New(amonerr.MissingParameter, "contact requires data")
	}
	if !UUIDRegex.MatchString(c.User) {
		return amonerr.New(amonerr.InvalidArgument, "contact requires a valid owning account uuid")
	}
	return nil
}

// DN returns this Contact's distinguished name (invariant 1, spec.md §3).
func (c *Contact) DN() string { return contactDN(c.User, c.Name) }

// ContactParentDN returns the DN under which all of an account's contacts
// live, used for LIST and for cache invalidation of the list scope.
func ContactParentDN(user string) string { return contactParentDN(user) }

// ParseContactDN extracts (user, name) from a Contact DN.
func ParseContactDN(dn string) (user, name string, err error) {
	parts := splitDN(dn)
	if len(parts) < 2 {
		return "", "", amonerr.New(amonerr.InternalError, "malformed contact DN: "+dn)
	}
	if a, v, ok := parseRDN(parts[0]); ok && a == "name" {
		name = v
	} else {
		return "", "", amonerr.New(amonerr.InternalError, "malformed contact DN: "+dn)
	}
	if a, v, ok := parseRDN(parts[1]); ok && a == "uuid" {
		user = v
	} else {
		return "", "", amonerr.New(amonerr.InternalError, "malformed contact DN: "+dn)
	}
	return user, name, nil
}

// Serialize renders the public view. Contact has no internal-only fields,
// so internal is accepted for interface symmetry with Monitor/Probe but
// does not change the output.
func (c *Contact) Serialize(internal bool) map[string]any {
	return map[string]any{
		"name":   c.Name,
		"medium": c.Medium,
		"data":   c.Data,
		"user":   c.User,
	}
}

// DirectoryAttrs renders the attribute set persisted at c.DN().
func (c *Contact) DirectoryAttrs() map[string][]string {
	return map[string][]string{
		"objectclass": {ContactObjectClass},
		"name":        {c.Name},
		"medium":      {c.Medium},
		"data":        {c.Data},
		"user":        {c.User},
	}
}
