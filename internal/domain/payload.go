package domain

// Payload is the opaque result of a successful probe. Its shape belongs to the probe
// that produced it. A nil Payload means absence: the category did not match.
type Payload map[string]any

// Found reports whether the payload represents a match.
func (p Payload) Found() bool { return p != nil }

// Clone returns a shallow copy so callers can publish payloads without sharing the map.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
