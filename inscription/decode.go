package inscription

import (
	"bytes"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/custody/constants"
)

// Envelope is an inscription found in a tapscript.
type Envelope struct {
	// Input is the transaction input whose witness carried the envelope.
	Input uint32
	// Offset counts the envelopes preceding this one in the transaction.
	Offset uint32
	// PushNum is set when the last payload element was a number opcode.
	PushNum bool
	Payload *Inscription
}

type Envelopes []*Envelope

// witnessTapscript returns the leaf script of a script-path spend witness, or nil.
func witnessTapscript(witness wire.TxWitness) []byte {
	l := len(witness)
	if l < 2 {
		return nil
	}
	posFromLast := 2
	last := witness[l-1]
	if len(last) > 0 && last[0] == txscript.TaprootAnnexTag {
		posFromLast = 3
	}
	if l < posFromLast {
		return nil
	}
	return witness[l-posFromLast]
}

// ParseTransaction returns the envelopes of every script-path spend input
// of tx.
func ParseTransaction(tx *wire.MsgTx) Envelopes {
	envelopes := make(Envelopes, 0)
	for index, input := range tx.TxIn {
		script := witnessTapscript(input.Witness)
		if script == nil {
			continue
		}
		for _, raw := range rawEnvelopes(script) {
			envelopes = append(envelopes, &Envelope{
				Input:   uint32(index),
				Offset:  uint32(len(envelopes)),
				PushNum: raw.pushNum,
				Payload: raw.inscription(),
			})
		}
	}
	return envelopes
}

// ParseScript returns the inscriptions contained in a single script.
func ParseScript(script []byte) []*Inscription {
	raws := rawEnvelopes(script)
	res := make([]*Inscription, 0, len(raws))
	for _, raw := range raws {
		res = append(res, raw.inscription())
	}
	return res
}

type rawEnvelope struct {
	payload [][]byte
	pushNum bool
}

// rawEnvelopes collects the pushes of every OP_FALSE OP_IF "ord" ... OP_ENDIF
// block of script. Parsing stops at the first malformed opcode.
func rawEnvelopes(script []byte) []*rawEnvelope {
	envelopes := make([]*rawEnvelope, 0)
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	prevFalse := false
	for tokenizer.Next() {
		if prevFalse && tokenizer.Opcode() == txscript.OP_IF {
			if env := fromInstructions(&tokenizer); env != nil {
				envelopes = append(envelopes, env)
			}
			prevFalse = false
			continue
		}
		prevFalse = tokenizer.Opcode() == txscript.OP_FALSE
	}
	return envelopes
}

// fromInstructions reads an envelope body. The tokenizer sits on OP_IF.
func fromInstructions(tokenizer *txscript.ScriptTokenizer) *rawEnvelope {
	if !tokenizer.Next() || !isPushBytes(tokenizer.Opcode()) ||
		!bytes.Equal(tokenizer.Data(), []byte(constants.ProtocolId)) {
		return nil
	}

	env := &rawEnvelope{payload: make([][]byte, 0)}
	for tokenizer.Next() {
		opcode := tokenizer.Opcode()
		switch {
		case opcode == txscript.OP_ENDIF:
			return env
		case opcode == txscript.OP_0:
			env.pushNum = false
			env.payload = append(env.payload, []byte{})
		case opcode == txscript.OP_1NEGATE:
			env.pushNum = true
			env.payload = append(env.payload, []byte{0x81})
		case opcode >= txscript.OP_1 && opcode <= txscript.OP_16:
			env.pushNum = true
			env.payload = append(env.payload, []byte{opcode - txscript.OP_1 + 1})
		case isPushBytes(opcode):
			env.pushNum = false
			env.payload = append(env.payload, tokenizer.Data())
		default:
			return nil
		}
	}
	return nil
}

// inscription turns the raw pushes into fields. Pushes before the first
// empty push at an even position are tag/value pairs, everything after it
// is body.
func (r *rawEnvelope) inscription() *Inscription {
	bodyIdx := -1
	for i := 0; i < len(r.payload); i += 2 {
		if len(r.payload[i]) == 0 {
			bodyIdx = i
			break
		}
	}

	ins := &Inscription{}
	headEnd := len(r.payload)
	if bodyIdx != -1 {
		headEnd = bodyIdx
		ins.Body = make([]byte, 0)
		for _, chunk := range r.payload[bodyIdx+1:] {
			ins.Body = append(ins.Body, chunk...)
		}
	}

	type field struct {
		tag    []byte
		values [][]byte
	}
	fields := make([]*field, 0)
	index := make(map[string]*field)
	for i := 0; i < headEnd; i += 2 {
		if i+1 >= headEnd {
			ins.IncompleteField = true
			break
		}
		key := string(r.payload[i])
		f, ok := index[key]
		if !ok {
			f = &field{tag: r.payload[i]}
			index[key] = f
			fields = append(fields, f)
		}
		f.values = append(f.values, r.payload[i+1])
	}

	for _, f := range fields {
		tag, known := TagFromBytes(f.tag)
		switch {
		case known && tag.IsChunked():
			value := make([]byte, 0)
			for _, v := range f.values {
				value = append(value, v...)
			}
			ins.setField(tag, value)
		case known && tag != TagUnbound && tag != TagNop:
			ins.setField(tag, f.values[0])
			if len(f.values) > 1 {
				ins.DuplicateField = true
			}
		default:
			if len(f.values) > 1 {
				ins.DuplicateField = true
			}
			if len(f.tag) > 0 && f.tag[0]%2 == 0 {
				ins.UnrecognizedEvenField = true
			}
		}
	}
	return ins
}

func isPushBytes(opcode byte) bool {
	return (opcode >= txscript.OP_DATA_1 && opcode <= txscript.OP_DATA_75) ||
		opcode == txscript.OP_PUSHDATA1 || opcode == txscript.OP_PUSHDATA2 ||
		opcode == txscript.OP_PUSHDATA4
}
