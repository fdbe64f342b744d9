// Package catalog implements the requirement "sum type": a closed-per-build,
// open-ended-in-general tagged union over every registered requirement
// kind. It plays the role the requirements! macro plays in the system this
// engine's design is taken from, using a runtime registry instead of a
// compile-time enum since Go has no such macro facility.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/foundry/pkg/requirement"
)

// Factory constructs a zero-value requirement of one kind so it can be
// json.Unmarshal'd into.
type Factory func() requirement.Requirement

// Registry maps kind tags to factories. A build registers every kind it
// uses once, up front, the way a concrete requirements! invocation lists
// its variants once, at compile time.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// ErrUnsupportedKind is returned by Supports-gated constructors (notably
// builder.Context.AddNode) when asked to accept a kind tag the registry
// was never told about.
type ErrUnsupportedKind struct{ Kind string }

func (e *ErrUnsupportedKind) Error() string {
	return fmt.Sprintf("catalog: kind %q is not supported by this registry", e.Kind)
}

// ErrUnknownKind is returned by Decode when the tagged map carries a kind
// this registry has no factory for.
type ErrUnknownKind struct{ Kind string }

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("catalog: unknown kind %q in encoded requirement", e.Kind)
}

// Register adds kind to the registry. Registering the same kind twice
// panics: it is a programming error in the build, not a runtime condition.
func (r *Registry) Register(kind string, factory Factory) {
	if _, exists := r.factories[kind]; exists {
		panic(fmt.Sprintf("catalog: kind %q registered twice", kind))
	}
	r.factories[kind] = factory
}

// Supports is the runtime-checked form of the Supports<K> capability trait:
// it reports whether kind was registered, and is the check builder.Context
// performs before accepting a node of that kind.
func (r *Registry) Supports(kind string) bool {
	_, ok := r.factories[kind]
	return ok
}

// Encode renders req as the tagged map {"<kind>": <payload>} used
// throughout the on-disk graph format.
func (r *Registry) Encode(req requirement.Requirement) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s requirement: %w", req.Kind(), err)
	}
	wrapped := map[string]json.RawMessage{req.Kind(): payload}
	out, err := json.Marshal(wrapped)
	if err != nil {
		return nil, fmt.Errorf("encode %s requirement envelope: %w", req.Kind(), err)
	}
	return out, nil
}

// Decode parses a tagged map and constructs the matching kind's zero value,
// then unmarshals the payload into it. Decode tolerates the map carrying
// exactly one key, any field order within the payload object, and rejects
// kinds this registry was not given a factory for.
func (r *Registry) Decode(data []byte) (requirement.Requirement, error) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode requirement envelope: %w", err)
	}
	if len(wrapped) != 1 {
		return nil, fmt.Errorf("decode requirement envelope: expected exactly one kind key, got %d", len(wrapped))
	}
	for kind, payload := range wrapped {
		factory, ok := r.factories[kind]
		if !ok {
			return nil, &ErrUnknownKind{Kind: kind}
		}
		req := factory()
		if err := json.Unmarshal(payload, req); err != nil {
			return nil, fmt.Errorf("decode %s requirement payload: %w", kind, err)
		}
		return req, nil
	}
	panic("unreachable")
}
