package inscription

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/brotli"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/custody/constants"
	"github.com/inscription-c/custody/internal/util"
	"github.com/ugorji/go/codec"
)

// Inscription is the payload carried by a reveal script. A nil field is
// absent and produces no push. The three flags are only set by the decoder.
type Inscription struct {
	Body            []byte
	ContentType     []byte
	ContentEncoding []byte
	Metaprotocol    []byte
	Parent          []byte
	Delegate        []byte
	Pointer         []byte
	Metadata        []byte

	DuplicateField        bool
	IncompleteField       bool
	UnrecognizedEvenField bool
}

// New returns an inscription of the given content type and body.
func New(contentType constants.ContentType, body []byte) *Inscription {
	ins := &Inscription{Body: body}
	if contentType != "" {
		ins.ContentType = contentType.Bytes()
	}
	return ins
}

// Field returns the value stored under a tag.
func (i *Inscription) Field(t Tag) []byte {
	switch t {
	case TagContentType:
		return i.ContentType
	case TagContentEncoding:
		return i.ContentEncoding
	case TagMetaprotocol:
		return i.Metaprotocol
	case TagParent:
		return i.Parent
	case TagDelegate:
		return i.Delegate
	case TagPointer:
		return i.Pointer
	case TagMetadata:
		return i.Metadata
	}
	return nil
}

func (i *Inscription) setField(t Tag, value []byte) {
	switch t {
	case TagContentType:
		i.ContentType = value
	case TagContentEncoding:
		i.ContentEncoding = value
	case TagMetaprotocol:
		i.Metaprotocol = value
	case TagParent:
		i.Parent = value
	case TagDelegate:
		i.Delegate = value
	case TagPointer:
		i.Pointer = value
	case TagMetadata:
		i.Metadata = value
	}
}

// SetPointer stores the sat offset the inscription is bound to, little
// endian with trailing zero bytes trimmed.
func (i *Inscription) SetPointer(pointer uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], pointer)
	i.Pointer = bytes.TrimRight(b[:], "\x00")
}

// InscriptionIdValue encodes the inscription id <txid>i<index> the way
// parent and delegate fields carry it: txid bytes followed by the little
// endian index with trailing zero bytes trimmed.
func InscriptionIdValue(txid chainhash.Hash, index uint32) []byte {
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], index)
	return append(txid.CloneBytes(), bytes.TrimRight(idx[:], "\x00")...)
}

// ParseInscriptionId parses <txid>i<index>.
func ParseInscriptionId(id string) ([]byte, error) {
	for p := len(id) - 1; p >= 0; p-- {
		if id[p] != 'i' {
			continue
		}
		outpoint, err := wire.NewOutPointFromString(id[:p] + ":" + id[p+1:])
		if err != nil {
			return nil, err
		}
		return InscriptionIdValue(outpoint.Hash, outpoint.Index), nil
	}
	return nil, fmt.Errorf("invalid inscription id %q", id)
}

// FileOptions tunes FromPath.
type FileOptions struct {
	Compress     bool
	CborMetadata string
	JsonMetadata string
	Metaprotocol string
	// Parent and Delegate are inscription ids, <txid>i<index>.
	Parent   string
	Delegate string
	Pointer  *uint64
}

// FromPath reads an inscription from a file, taking the content type from
// the file extension.
func FromPath(path string, opts FileOptions) (*Inscription, error) {
	metadata, err := ParseMetadata(opts.CborMetadata, opts.JsonMetadata)
	if err != nil {
		return nil, err
	}
	contentType, err := util.ContentTypeForPath(path)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ins := New(contentType, body)
	ins.Metadata = metadata
	if opts.Metaprotocol != "" {
		ins.Metaprotocol = []byte(opts.Metaprotocol)
	}
	if opts.Parent != "" {
		if ins.Parent, err = ParseInscriptionId(opts.Parent); err != nil {
			return nil, err
		}
	}
	if opts.Delegate != "" {
		if ins.Delegate, err = ParseInscriptionId(opts.Delegate); err != nil {
			return nil, err
		}
	}
	if opts.Pointer != nil {
		ins.SetPointer(*opts.Pointer)
	}

	if opts.Compress {
		compressed, err := compress(body)
		if err != nil {
			return nil, err
		}
		if len(compressed) < len(body) {
			ins.Body = compressed
			ins.ContentEncoding = []byte("br")
		}
	}
	return ins, nil
}

// compress brotli compresses body and checks the round trip.
func compress(body []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	bw := brotli.NewWriterOptions(buf, brotli.WriterOptions{Quality: 11, LGWin: 24})
	if _, err := bw.Write(body); err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	compressed := buf.Bytes()

	decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(body, decompressed) {
		return nil, errors.New("decompression round trip failed")
	}
	return compressed, nil
}

// ParseMetadata loads CBOR metadata from a file, or JSON converted to CBOR.
func ParseMetadata(cborMetadata, jsonMetadata string) ([]byte, error) {
	handle := &codec.CborHandle{}
	if cborMetadata != "" {
		data, err := os.ReadFile(cborMetadata)
		if err != nil {
			return nil, err
		}
		var v interface{}
		if err := codec.NewDecoderBytes(data, handle).Decode(&v); err != nil {
			return nil, err
		}
		return data, nil
	}
	if jsonMetadata != "" {
		data, err := os.ReadFile(jsonMetadata)
		if err != nil {
			return nil, err
		}
		var jsonObj interface{}
		if err := json.Unmarshal(data, &jsonObj); err != nil {
			return nil, err
		}
		var cborData []byte
		if err := codec.NewEncoderBytes(&cborData, handle).Encode(jsonObj); err != nil {
			return nil, err
		}
		return cborData, nil
	}
	return nil, nil
}
