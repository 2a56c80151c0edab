// Package identifier generates collision-resistant identifiers for sync
// runs, in the "prefix_base62" shape used by the synchronization engine for
// journal and result run IDs.
package identifier

import (
	"errors"
	"regexp"
	"strings"

	"github.com/rjfmedia/lempicka-sync/pkg/encoding"
	"github.com/rjfmedia/lempicka-sync/pkg/random"
)

const (
	// PrefixRun is the prefix used for sync run identifiers.
	PrefixRun = "sync"

	// requiredPrefixLength is the required length for identifier prefixes.
	requiredPrefixLength = 4
	// collisionResistantLength is the number of random bytes needed to ensure
	// collision-resistance in an identifier.
	collisionResistantLength = random.CollisionResistantLength
	// targetBase62Length is the target length for the Base62-encoded portion
	// of the identifier. This is the maximum possible length that a byte
	// array of collisionResistantLength bytes will take to encode in Base62.
	// It can be computed for n bytes as ceil(n*8*ln(2)/ln(62)).
	targetBase62Length = 43
)

// matcher is a regular expression that matches generated identifiers.
var matcher = regexp.MustCompile("^[a-z]{4}_[0-9a-zA-Z]{43}$")

// New generates a new collision-resistant identifier with the specified
// prefix. The prefix must have a length of requiredPrefixLength.
func New(prefix string) (string, error) {
	if len(prefix) != requiredPrefixLength {
		return "", errors.New("incorrect prefix length")
	}
	for _, r := range prefix {
		if !('a' <= r && r <= 'z') {
			return "", errors.New("invalid prefix character")
		}
	}

	data, err := random.New(collisionResistantLength)
	if err != nil {
		return "", err
	}

	encoded := encoding.EncodeBase62(data)
	if len(encoded) > targetBase62Length {
		panic("encoded random data length longer than expected")
	}

	builder := &strings.Builder{}
	builder.WriteString(prefix)
	builder.WriteRune('_')
	for i := targetBase62Length - len(encoded); i > 0; i-- {
		builder.WriteByte(encoding.Base62Alphabet[0])
	}
	builder.WriteString(encoded)

	return builder.String(), nil
}

// IsValid determines whether or not a string is a valid identifier.
func IsValid(value string) bool {
	return matcher.MatchString(value)
}
