package model

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates the escaped provider name from the escaped id in a
// serialized ModelID.
const Delimiter = "::"

// ErrInvalidToken is returned when a serialized ModelID cannot be decoded.
var ErrInvalidToken = errors.New("model: invalid model id token")

var (
	idEscaper   = strings.NewReplacer("%", "%25", ":", "%3A")
	idUnescaper = strings.NewReplacer("%3A", ":", "%3a", ":", "%25", "%")
)

// ModelID identifies a record across providers. It is a value type; the zero
// value is the "nothing selected" id.
type ModelID struct {
	ProviderName string
	ID           string
}

// NewModelID builds a ModelID.
func NewModelID(providerName, id string) ModelID {
	return ModelID{ProviderName: providerName, ID: id}
}

// Pack serializes a (provider, id) pair into a single URL-safe token.
func Pack(providerName, id string) string {
	return ModelID{ProviderName: providerName, ID: id}.Serialize()
}

// Unpack decodes a token produced by Pack.
func Unpack(token string) (ModelID, error) {
	return ParseModelID(token)
}

// ParseModelID decodes a serialized ModelID. An empty token yields the zero
// ModelID without error; anything else that is not a well formed token
// returns ErrInvalidToken.
func ParseModelID(token string) (ModelID, error) {
	if token == "" {
		return ModelID{}, nil
	}

	provider, id, ok := strings.Cut(token, Delimiter)
	if !ok {
		return ModelID{}, fmt.Errorf("%w: %q has no delimiter", ErrInvalidToken, token)
	}
	if strings.Contains(id, ":") {
		return ModelID{}, fmt.Errorf("%w: %q contains an unescaped delimiter", ErrInvalidToken, token)
	}

	providerName, err := unescapeIDPart(provider)
	if err != nil {
		return ModelID{}, fmt.Errorf("%w: %q: %v", ErrInvalidToken, token, err)
	}
	recordID, err := unescapeIDPart(id)
	if err != nil {
		return ModelID{}, fmt.Errorf("%w: %q: %v", ErrInvalidToken, token, err)
	}

	return ModelID{ProviderName: providerName, ID: recordID}, nil
}

// Serialize returns the token form of the id.
func (m ModelID) Serialize() string {
	return idEscaper.Replace(m.ProviderName) + Delimiter + idEscaper.Replace(m.ID)
}

// String implements fmt.Stringer.
func (m ModelID) String() string {
	return m.Serialize()
}

// IsValid reports whether both the provider name and the id are set.
func (m ModelID) IsValid() bool {
	return m.ProviderName != "" && m.ID != ""
}

// Equal reports whether both ids reference the same record.
func (m ModelID) Equal(other ModelID) bool {
	return m.ProviderName == other.ProviderName && m.ID == other.ID
}

func unescapeIDPart(part string) (string, error) {
	for i := 0; i < len(part); i++ {
		if part[i] != '%' {
			continue
		}
		if i+2 >= len(part) {
			return "", fmt.Errorf("truncated escape at %d", i)
		}
		switch strings.ToUpper(part[i+1 : i+3]) {
		case "25", "3A":
		default:
			return "", fmt.Errorf("unknown escape %q", part[i:i+3])
		}
		i += 2
	}
	return idUnescaper.Replace(part), nil
}

// ResolveID accepts either a serialized ModelID or a bare record id and
// returns the record id.
func ResolveID(raw string) (string, error) {
	if !strings.Contains(raw, Delimiter) {
		return raw, nil
	}
	id, err := ParseModelID(raw)
	if err != nil {
		return "", err
	}
	return id.ID, nil
}
