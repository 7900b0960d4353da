// Package userfile reads the YAML user directory seed.
//
// The file lists the people allowed to use the vault:
//
//	users:
//	  - name: Alice Smith
//	    email: alice@example.com
//	    role: admin
//	  - name: Bob Jones
//	    email: bob@example.com
//	    active: false
//
// role defaults to "user" and active defaults to true.
package userfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

type document struct {
	Users []entry `yaml:"users"`
}

type entry struct {
	Name   string `yaml:"name"`
	Email  string `yaml:"email"`
	Role   string `yaml:"role"`
	Active *bool  `yaml:"active"`
}

// Load reads and parses the seed file at path.
func Load(path string) ([]model.User, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open user file: %w", err)
	}
	defer f.Close()

	users, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return users, nil
}

// Parse decodes a seed document. Unknown keys are rejected so a typo such as
// "rol: admin" does not silently produce a regular user.
func Parse(r io.Reader) ([]model.User, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: parse user file: %v", model.ErrValidation, err)
	}

	users := make([]model.User, 0, len(doc.Users))
	for _, e := range doc.Users {
		active := true
		if e.Active != nil {
			active = *e.Active
		}
		users = append(users, model.User{
			Name:   e.Name,
			Email:  e.Email,
			Role:   model.Role(e.Role),
			Active: active,
		})
	}
	return users, nil
}
