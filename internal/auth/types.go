package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleStudent        Role = "ETUDIANT"
	RoleCompany        Role = "ENTREPRISE"
	RoleAdministration Role = "ADMINISTRATION"
	RoleTutor          Role = "TUTEUR"
)

// Roles lists every role the platform knows, in display order.
var Roles = []Role{RoleStudent, RoleCompany, RoleAdministration, RoleTutor}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// UserSummary is the identity snapshot taken at login. It is not refreshed
// from the server until the next login.
type UserSummary struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Role      Role   `json:"role"`
}

// validate holds the rules a stored user entry must meet; Login applies the
// same rules before anything is persisted.
func (u UserSummary) validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("user summary has no email")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("user summary has unknown role %q", u.Role)
	}
	return nil
}

func (u UserSummary) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Session is replaced wholesale on login and never edited in place.
type Session struct {
	Token string
	User  UserSummary
}

// Record is the persisted form of a session: the bearer token and the
// serialized UserSummary, kept as two separate entries.
type Record struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

func (r Record) Empty() bool {
	return r.Token == "" && r.User == ""
}

func encodeRecord(s Session) (Record, error) {
	b, err := json.Marshal(s.User)
	if err != nil {
		return Record{}, fmt.Errorf("encode user summary: %w", err)
	}
	return Record{Token: s.Token, User: string(b)}, nil
}

func decodeRecord(r Record) (Session, error) {
	if r.Token == "" || r.User == "" {
		return Session{}, ErrCorruptRecord
	}
	var u UserSummary
	if err := json.Unmarshal([]byte(r.User), &u); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if err := u.validate(); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return Session{Token: r.Token, User: u}, nil
}
