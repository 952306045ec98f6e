package util

import (
	"github.com/inscription-c/custody/errs"
)

const (
	asn1Sequence = 0x30
	asn1Integer  = 0x02
)

// Sec1ToDER re-encodes a 64-byte compact r||s signature as a DER
// SEQUENCE { INTEGER r, INTEGER s }. Redundant leading zero bytes are
// dropped and a zero byte is prepended to a value whose high bit is set.
func Sec1ToDER(sig []byte) ([]byte, error) {
	if len(sig) != 64 {
		return nil, errs.Malformed("compact signature must be 64 bytes, got %d", len(sig))
	}
	r := derInteger(sig[:32])
	s := derInteger(sig[32:])

	der := make([]byte, 0, 6+len(r)+len(s))
	der = append(der, asn1Sequence, byte(4+len(r)+len(s)))
	der = append(der, asn1Integer, byte(len(r)))
	der = append(der, r...)
	der = append(der, asn1Integer, byte(len(s)))
	der = append(der, s...)
	return der, nil
}

// derInteger returns the minimal non-negative two's complement encoding of
// the big-endian unsigned integer b.
func derInteger(b []byte) []byte {
	for len(b) > 1 && b[0] == 0 && b[1]&0x80 == 0 {
		b = b[1:]
	}
	if b[0]&0x80 != 0 {
		return append([]byte{0x00}, b...)
	}
	return append([]byte(nil), b...)
}
