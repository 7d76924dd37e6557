package proto

import "github.com/waylib/wlcore/wire"

// Value is a tagged union holding one decoded request or event argument,
// produced by DecodeArgs for callers that walk a descriptor generically
// (the dispatcher, introspection, logging) rather than knowing an
// interface's argument shape at compile time.
type Value struct {
	Kind   wire.ArgKind
	Int    int32
	Uint   uint32
	Fixed  wire.Fixed
	Str    string
	Object uint32
	Array  []byte
	FD     int
}

// DecodeArgs walks desc in order, decoding each argument from dec (ArgFD
// entries take the next fd from dec's fd queue) into a Value. It stops at
// the first error, in
// which case the returned slice holds only the arguments decoded so far.
func DecodeArgs(desc []ArgSpec, dec *wire.Decoder) ([]Value, error) {
	out := make([]Value, 0, len(desc))
	for _, spec := range desc {
		v := Value{Kind: spec.Kind}
		var err error
		switch spec.Kind {
		case wire.ArgInt:
			v.Int, err = dec.Int32()
		case wire.ArgUint:
			v.Uint, err = dec.Uint32()
		case wire.ArgFixed:
			v.Fixed, err = dec.Fixed()
		case wire.ArgString:
			v.Str, err = dec.String()
		case wire.ArgObject, wire.ArgNewID:
			v.Object, err = dec.Object()
		case wire.ArgNewIDDynamic:
			if v.Str, err = dec.String(); err == nil {
				if v.Uint, err = dec.Uint32(); err == nil {
					v.Object, err = dec.NewID()
				}
			}
		case wire.ArgArray:
			v.Array, err = dec.Array()
		case wire.ArgFD:
			v.FD, err = dec.FD()
		default:
			err = &wire.MalformedError{Reason: "unknown arg kind in descriptor"}
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
