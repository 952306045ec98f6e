package util

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/inscription-c/custody/errs"
)

// AddressScript decodes an address of the given network and returns its
// output script.
func AddressScript(address string, params *chaincfg.Params) ([]byte, error) {
	decoded, err := DecodeAddress(address, params)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(decoded)
}

// DecodeAddress decodes an address and checks it belongs to the network.
func DecodeAddress(address string, params *chaincfg.Params) (btcutil.Address, error) {
	decoded, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, errs.Malformed("address %s: %v", address, err)
	}
	if !decoded.IsForNet(params) {
		return nil, errs.Malformed("address %s is not for %s", address, params.Name)
	}
	return decoded, nil
}

// P2PKHScript returns the output script of a legacy address, or
// ErrUnsupportedAddressType for any other address kind.
func P2PKHScript(address string, params *chaincfg.Params) ([]byte, error) {
	decoded, err := DecodeAddress(address, params)
	if err != nil {
		return nil, err
	}
	if _, ok := decoded.(*btcutil.AddressPubKeyHash); !ok {
		return nil, errs.ErrUnsupportedAddressType
	}
	return txscript.PayToAddrScript(decoded)
}
