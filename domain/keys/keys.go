// Package keys builds and parses the composite key strings of the single
// table. Every item type shares the same "<TYPE>#<id>" scheme for its
// partition key, sort key and index keys.
package keys

import (
	"errors"
	"fmt"
	"strings"
)

// Key prefixes, one per entity kind stored in the table
const (
	ProjectPrefix = "PROJECT#"
	EventPrefix   = "EVENT#"
	TaskPrefix    = "TASK#"
	MemberPrefix  = "MEMBER#"
	UserPrefix    = "USER#"
)

// ErrMalformedKey is returned when a key does not carry the expected prefix
var ErrMalformedKey = errors.New("malformed key")

// Project encodes a project id into its key form
func Project(id string) string { return ProjectPrefix + id }

// Event encodes an event id into its key form
func Event(id string) string { return EventPrefix + id }

// Task encodes a task id into its key form
func Task(id string) string { return TaskPrefix + id }

// Member encodes a member user id into its key form
func Member(userID string) string { return MemberPrefix + userID }

// User encodes a user id into its key form
func User(id string) string { return UserPrefix + id }

// Decode strips prefix from key, recovering the raw id. Items read back from
// the table do not always carry a denormalized id attribute, so callers
// recover ids from SK values this way.
func Decode(key, prefix string) (string, error) {
	if !strings.HasPrefix(key, prefix) {
		return "", fmt.Errorf("%w: %q does not start with %q", ErrMalformedKey, key, prefix)
	}
	return key[len(prefix):], nil
}

// ProjectID decodes a PROJECT# key
func ProjectID(key string) (string, error) { return Decode(key, ProjectPrefix) }

// EventID decodes an EVENT# key
func EventID(key string) (string, error) { return Decode(key, EventPrefix) }

// TaskID decodes a TASK# key
func TaskID(key string) (string, error) { return Decode(key, TaskPrefix) }

// MemberID decodes a MEMBER# key
func MemberID(key string) (string, error) { return Decode(key, MemberPrefix) }

// UserID decodes a USER# key
func UserID(key string) (string, error) { return Decode(key, UserPrefix) }
