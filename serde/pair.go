package serde

// Pair encodes First then Second with no framing.
type Pair[A, B any] struct {
	First  A
	Second B
}

func MakePair[A, B any](a A, b B) Pair[A, B] { return Pair[A, B]{First: a, Second: b} }

func (p Pair[A, B]) SerializeTo(s Sink) { Serialize(s, p.First, p.Second) }

func (p *Pair[A, B]) DeserializeFrom(src Source) error {
	return Deserialize(src, &p.First, &p.Second)
}
