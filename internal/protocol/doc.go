// Package protocol is the packet codec: it turns records into framed packets
// and back.
//
// Ownership boundary:
// - Serialize / Deserialize (record <-> packet body, scheme driven)
// - SerializeStruct / DeserializeStruct (flat struct <-> packet body)
// - codec options and error classification
//
// Wire primitives live in the subpackages: frame (12 byte header, raw
// framing), field (per-type rules), scheme (type tags, schemes, inference)
// and record (ordered key/value values).
package protocol
