package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/compozy/foodtour/pkg/logger"
)

// DefaultEnvVar is the environment variable holding the service access token.
const DefaultEnvVar = "JULEP_API_KEY"

const visiblePrefix = 8

// ErrMissingCredential is returned when the credential variable is unset or empty.
var ErrMissingCredential = errors.New("missing credential")

// LookupFunc mirrors os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Credential is an access token that never prints itself in full.
type Credential string

// Value returns the raw token for use in request headers.
func (c Credential) Value() string {
	return string(c)
}

// Redacted returns the first characters of the token followed by an ellipsis.
func (c Credential) Redacted() string {
	if len(c) <= visiblePrefix {
		return strings.Repeat("*", len(c)) + "..."
	}
	return string(c[:visiblePrefix]) + "..."
}

func (c Credential) String() string {
	return c.Redacted()
}

func (c Credential) GoString() string {
	return fmt.Sprintf("credential.Credential(%q)", c.Redacted())
}

func (c Credential) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", c.Redacted())), nil
}

// MissingError names the variable that was expected.
type MissingError struct {
	EnvVar string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s not found in environment (export %s='your_api_key_here')", e.EnvVar, e.EnvVar)
}

func (e *MissingError) Is(target error) bool {
	return target == ErrMissingCredential
}

// Resolver reads the credential from the process environment.
type Resolver struct {
	envVar string
	lookup LookupFunc
}

// NewResolver creates a resolver for envVar. A nil lookup uses os.LookupEnv.
func NewResolver(envVar string, lookup LookupFunc) *Resolver {
	if strings.TrimSpace(envVar) == "" {
		envVar = DefaultEnvVar
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Resolver{envVar: envVar, lookup: lookup}
}

// EnvVar returns the variable name the resolver reads.
func (r *Resolver) EnvVar() string {
	return r.envVar
}

// Resolve returns the credential or an error matching ErrMissingCredential.
// Absence is not transient, so there is no retry.
func (r *Resolver) Resolve(ctx context.Context) (Credential, error) {
	log := logger.FromContext(ctx)
	value, ok := r.lookup(r.envVar)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		log.Error("credential not found", "env", r.envVar)
		return "", &MissingError{EnvVar: r.envVar}
	}
	cred := Credential(value)
	log.Info("API key found", "env", r.envVar, "key", cred.Redacted())
	return cred, nil
}
