package inscription

// Tag identifies an envelope field.
type Tag int

// Tags are declared in encoding order.
const (
	TagContentType Tag = iota
	TagContentEncoding
	TagMetaprotocol
	TagParent
	TagDelegate
	TagPointer
	TagMetadata
	TagUnbound
	TagNop
)

type tagSpec struct {
	name    string
	wire    byte
	chunked bool
}

// tagTable maps each tag to its wire byte and chunking policy.
var tagTable = [...]tagSpec{
	TagContentType:     {"content_type", 1, false},
	TagContentEncoding: {"content_encoding", 9, false},
	TagMetaprotocol:    {"metaprotocol", 7, false},
	TagParent:          {"parent", 3, false},
	TagDelegate:        {"delegate", 11, false},
	TagPointer:         {"pointer", 2, false},
	TagMetadata:        {"metadata", 5, true},
	TagUnbound:         {"unbound", 66, false},
	TagNop:             {"nop", 255, false},
}

// encodeOrder lists the tags the encoder emits, in order.
var encodeOrder = []Tag{
	TagContentType,
	TagContentEncoding,
	TagMetaprotocol,
	TagParent,
	TagDelegate,
	TagPointer,
	TagMetadata,
}

// bodyTag is the empty push separating fields from body chunks.
var bodyTag = []byte{}

func (t Tag) String() string {
	return tagTable[t].name
}

// Byte returns the wire value of the tag.
func (t Tag) Byte() byte {
	return tagTable[t].wire
}

// Bytes returns the tag as pushed in the envelope.
func (t Tag) Bytes() []byte {
	return []byte{t.Byte()}
}

// IsChunked reports whether the field may span several pushes.
func (t Tag) IsChunked() bool {
	return tagTable[t].chunked
}

// TagFromBytes resolves a pushed tag. ok is false for anything outside the
// table, including multi-byte tags.
func TagFromBytes(bs []byte) (Tag, bool) {
	if len(bs) != 1 {
		return 0, false
	}
	for t, spec := range tagTable {
		if spec.wire == bs[0] {
			return Tag(t), true
		}
	}
	return 0, false
}
