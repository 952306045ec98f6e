package inscription

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/txscript"
)

// scriptWriter emits pushes with the smallest push opcode for the data
// length and never rewrites data into small integer opcodes, so a one byte
// tag always goes out as OP_DATA_1. txscript.ScriptBuilder minimizes such
// pushes and caps scripts at txscript.MaxScriptSize.
type scriptWriter struct {
	buf bytes.Buffer
}

func (w *scriptWriter) op(opcode byte) *scriptWriter {
	w.buf.WriteByte(opcode)
	return w
}

func (w *scriptWriter) push(data []byte) *scriptWriter {
	n := len(data)
	switch {
	case n == 0:
		w.buf.WriteByte(txscript.OP_0)
	case n < txscript.OP_PUSHDATA1:
		w.buf.WriteByte(byte(txscript.OP_DATA_1 - 1 + n))
	case n <= 0xff:
		w.buf.WriteByte(txscript.OP_PUSHDATA1)
		w.buf.WriteByte(byte(n))
	case n <= 0xffff:
		w.buf.WriteByte(txscript.OP_PUSHDATA2)
		var l [2]byte
		binary.LittleEndian.PutUint16(l[:], uint16(n))
		w.buf.Write(l[:])
	default:
		w.buf.WriteByte(txscript.OP_PUSHDATA4)
		var l [4]byte
		binary.LittleEndian.PutUint32(l[:], uint32(n))
		w.buf.Write(l[:])
	}
	w.buf.Write(data)
	return w
}

// pushChunks pushes data in pieces of at most size bytes.
func (w *scriptWriter) pushChunks(data []byte, size int, before func()) {
	for len(data) > 0 {
		n := size
		if len(data) < n {
			n = len(data)
		}
		if before != nil {
			before()
		}
		w.push(data[:n])
		data = data[n:]
	}
}

func (w *scriptWriter) script() []byte {
	return append([]byte(nil), w.buf.Bytes()...)
}
