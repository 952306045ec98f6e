package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inscription-c/custody/wallet/server/handle/api"
)

// KeyOracle signs through the key server as one tenant. The tenant is the
// basic auth user.
type KeyOracle struct {
	Url      string `validate:"required,url"`
	User     string `validate:"required"`
	Password string
	KeyName  string `validate:"required"`
	Timeout  time.Duration

	httpClient *http.Client
}

type KeyOracleOption func(*KeyOracle)

func WithOracleUrl(url string) KeyOracleOption {
	return func(k *KeyOracle) {
		k.Url = strings.TrimRight(url, "/")
	}
}

func WithOracleUser(user string) KeyOracleOption {
	return func(k *KeyOracle) {
		k.User = user
	}
}

func WithOraclePassword(password string) KeyOracleOption {
	return func(k *KeyOracle) {
		k.Password = password
	}
}

func WithKeyName(name string) KeyOracleOption {
	return func(k *KeyOracle) {
		k.KeyName = name
	}
}

func NewKeyOracle(opts ...KeyOracleOption) (*KeyOracle, error) {
	k := &KeyOracle{
		Timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(k)
	}
	if err := validate.Struct(k); err != nil {
		return nil, err
	}
	k.httpClient = &http.Client{Timeout: k.Timeout}
	return k, nil
}

// InitKey asks the key server to create its master seed.
func (k *KeyOracle) InitKey(ctx context.Context) error {
	return k.post(ctx, "/init_key", &api.InitKeyReq{KeyName: k.KeyName}, nil)
}

func (k *KeyOracle) PublicKey(ctx context.Context, path [][]byte) ([]byte, error) {
	resp := &api.PublicKeyResp{}
	req := &api.PublicKeyReq{KeyName: k.KeyName, Path: hexPath(path)}
	if err := k.post(ctx, "/public_key", req, resp); err != nil {
		return nil, err
	}
	return hex.DecodeString(resp.PublicKey)
}

func (k *KeyOracle) SignECDSA(ctx context.Context, path [][]byte, digest []byte) ([]byte, error) {
	return k.sign(ctx, "/sign_with_ecdsa", path, digest)
}

func (k *KeyOracle) SignSchnorr(ctx context.Context, path [][]byte, digest []byte) ([]byte, error) {
	return k.sign(ctx, "/sign_with_schnorr", path, digest)
}

func (k *KeyOracle) sign(ctx context.Context, uri string, path [][]byte, digest []byte) ([]byte, error) {
	resp := &api.SignResp{}
	req := &api.SignReq{
		KeyName: k.KeyName,
		Path:    hexPath(path),
		Digest:  hex.EncodeToString(digest),
	}
	if err := k.post(ctx, uri, req, resp); err != nil {
		return nil, err
	}
	return hex.DecodeString(resp.Signature)
}

func (k *KeyOracle) post(ctx context.Context, uri string, req, data interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, k.Url+uri, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.SetBasicAuth(k.User, k.Password)

	httpResponse, err := k.httpClient.Do(httpRequest)
	if err != nil {
		return err
	}
	respBytes, err := io.ReadAll(httpResponse.Body)
	_ = httpResponse.Body.Close()
	if err != nil {
		return fmt.Errorf("error reading key server reply: %v", err)
	}
	if httpResponse.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("key server: %s", http.StatusText(httpResponse.StatusCode))
	}

	resp := &api.Resp{Data: data}
	if err := json.Unmarshal(respBytes, resp); err != nil {
		return fmt.Errorf("key server %s: %d %s", uri, httpResponse.StatusCode, respBytes)
	}
	return resp.Err()
}

func hexPath(path [][]byte) []string {
	res := make([]string, 0, len(path))
	for _, p := range path {
		res = append(res, hex.EncodeToString(p))
	}
	return res
}
