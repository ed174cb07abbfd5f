// Package credential resolves the API token used to talk to the completion
// service. Resolution is injectable so callers never have to read ambient
// process state directly.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvVar is the environment variable holding the OpenAI API key.
const DefaultEnvVar = "OPENAI_API_KEY"

// ErrMissing is matched by every error reporting an absent credential.
var ErrMissing = errors.New("credential not set")

// Credential is a resolved secret token.
type Credential string

// String never exposes the token.
func (c Credential) String() string {
	return c.Masked()
}

// Masked returns the token with everything but its edges hidden.
func (c Credential) Masked() string {
	s := string(c)
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// MissingError reports that the named variable is absent or empty.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s environment variable not set.", e.Name)
}

func (e *MissingError) Is(target error) bool {
	return target == ErrMissing
}

// Provider resolves a credential on demand.
type Provider interface {
	Resolve() (Credential, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func() (Credential, error)

// Resolve calls f.
func (f ProviderFunc) Resolve() (Credential, error) {
	return f()
}

// Env reads the credential from an environment variable.
type Env struct {
	Name string
	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// FromEnv returns an Env provider for the given variable name, falling back
// to DefaultEnvVar when name is empty.
func FromEnv(name string) Env {
	if strings.TrimSpace(name) == "" {
		name = DefaultEnvVar
	}
	return Env{Name: name}
}

// Resolve looks the variable up. Blank values count as missing.
func (e Env) Resolve() (Credential, error) {
	name := e.Name
	if name == "" {
		name = DefaultEnvVar
	}
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", &MissingError{Name: name}
	}
	return Credential(strings.TrimSpace(v)), nil
}

// Static always resolves to the same token.
type Static Credential

// Resolve returns the static token, or a MissingError when it is empty.
func (s Static) Resolve() (Credential, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", &MissingError{Name: "static credential"}
	}
	return Credential(s), nil
}
