package variant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/giantswarm/simenv/internal/sentinel"
)

// ErrInvalidIdentity is returned when parsing a malformed identity.
const ErrInvalidIdentity = sentinel.Error("invalid variant identity")

// Identity names one variant: test class, method, platform level and concrete
// resource mode. Its text form is "Class#Method@Level/mode".
type Identity struct {
	Class  string
	Method string
	Level  int
	Mode   ResourceMode
}

func (id Identity) String() string {
	return fmt.Sprintf("%s#%s@%d/%s", id.Class, id.Method, id.Level, id.Mode)
}

// Test returns "Class.Method".
func (id Identity) Test() string {
	return id.Class + "." + id.Method
}

// ParseIdentity parses the text form produced by Identity.String.
func ParseIdentity(s string) (Identity, error) {
	hash := strings.Index(s, "#")
	at := strings.LastIndex(s, "@")
	slash := strings.LastIndex(s, "/")
	if hash <= 0 || at <= hash+1 || slash <= at+1 || slash == len(s)-1 {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
	}
	level, err := strconv.Atoi(s[at+1 : slash])
	if err != nil {
		return Identity{}, fmt.Errorf("%w: level in %q: %w", ErrInvalidIdentity, s, err)
	}
	mode, err := ParseResourceMode(s[slash+1:])
	if err != nil || !mode.Concrete() {
		return Identity{}, fmt.Errorf("%w: mode in %q", ErrInvalidIdentity, s)
	}
	return Identity{Class: s[:hash], Method: s[hash+1 : at], Level: level, Mode: mode}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
