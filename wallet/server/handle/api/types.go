package api

// Byte fields travel hex encoded.

type InitKeyReq struct {
	KeyName string `json:"key_name" binding:"required"`
}

type PublicKeyReq struct {
	KeyName string `json:"key_name" binding:"required"`
	// Tenant defaults to the authenticated caller.
	Tenant string   `json:"tenant"`
	Path   []string `json:"path"`
}

type PublicKeyResp struct {
	PublicKey string `json:"public_key"`
	ChainCode string `json:"chain_code"`
}

type SignReq struct {
	KeyName string   `json:"key_name" binding:"required"`
	Path    []string `json:"path"`
	Digest  string   `json:"digest" binding:"required,hexadecimal"`
}

type SignResp struct {
	Signature string `json:"signature"`
}
