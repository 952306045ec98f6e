package inscription

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/inscription-c/custody/constants"
	"github.com/inscription-c/custody/errs"
)

// Envelope serializes the inscription as
//
//	OP_FALSE OP_IF "ord" [<tag> <value>]... [OP_0 <body chunk>...] OP_ENDIF
//
// Fields follow encodeOrder. Metadata and body are split into pushes of at
// most constants.MaxPushSize bytes, every metadata chunk preceded by its own
// tag push.
func (i *Inscription) Envelope() ([]byte, error) {
	w := &scriptWriter{}
	if err := i.appendEnvelope(w); err != nil {
		return nil, err
	}
	return w.script(), nil
}

func (i *Inscription) appendEnvelope(w *scriptWriter) error {
	w.op(txscript.OP_FALSE).
		op(txscript.OP_IF).
		push([]byte(constants.ProtocolId))

	for _, tag := range encodeOrder {
		value := i.Field(tag)
		if value == nil {
			continue
		}
		if tag.IsChunked() {
			w.pushChunks(value, constants.MaxPushSize, func() { w.push(tag.Bytes()) })
			continue
		}
		if len(value) > constants.MaxPushSize {
			return errs.Malformed("%s is %d bytes, max %d", tag, len(value), constants.MaxPushSize)
		}
		w.push(tag.Bytes()).push(value)
	}

	if i.Body != nil {
		w.push(bodyTag)
		w.pushChunks(i.Body, constants.MaxPushSize, nil)
	}

	w.op(txscript.OP_ENDIF)
	return nil
}

// RevealScript returns the tapscript leaf committing to the inscription:
// the envelope followed by <xOnlyPubKey> OP_CHECKSIG.
func (i *Inscription) RevealScript(xOnlyPubKey []byte) ([]byte, error) {
	if len(xOnlyPubKey) != 32 {
		return nil, errs.Malformed("x-only public key must be 32 bytes, got %d", len(xOnlyPubKey))
	}
	w := &scriptWriter{}
	if err := i.appendEnvelope(w); err != nil {
		return nil, err
	}
	w.push(xOnlyPubKey).op(txscript.OP_CHECKSIG)
	return w.script(), nil
}
