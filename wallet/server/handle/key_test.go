package handle

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gin-gonic/gin"
	"github.com/inscription-c/custody/wallet"
	"github.com/inscription-c/custody/wallet/server/handle/api"
	"github.com/stretchr/testify/require"
)

const testKeyName = "dfx_test_key"

func newTestHandler(t *testing.T) *Handler {
	gin.SetMode(gin.TestMode)
	service, err := wallet.NewService(wallet.WithParams(&chaincfg.RegressionNetParams))
	require.NoError(t, err)
	h, err := New(
		WithService(service),
		WithKeyName(testKeyName),
		WithAccounts(map[string]string{"alice": "a-secret", "bob": "b-secret"}),
		WithEnableMetrics(true),
	)
	require.NoError(t, err)
	return h
}

func post(t *testing.T, h *Handler, user, uri string, req, data interface{}) (int, api.Resp) {
	body, err := json.Marshal(req)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, uri, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if user != "" {
		r.SetBasicAuth(user, user[:1]+"-secret")
	}
	w := httptest.NewRecorder()
	h.Engine().ServeHTTP(w, r)

	resp := api.Resp{Data: data}
	if w.Code != http.StatusUnauthorized {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func TestNewValidates(t *testing.T) {
	service, err := wallet.NewService()
	require.NoError(t, err)
	_, err = New(WithKeyName(testKeyName), WithAccounts(map[string]string{"a": "b"}))
	require.Error(t, err)
	_, err = New(WithService(service), WithAccounts(map[string]string{"a": "b"}))
	require.Error(t, err)
	_, err = New(WithService(service), WithKeyName(testKeyName))
	require.Error(t, err)
}

func TestInitKey(t *testing.T) {
	h := newTestHandler(t)

	code, resp := post(t, h, "alice", "/public_key", &api.PublicKeyReq{KeyName: testKeyName}, nil)
	require.Equal(t, http.StatusPreconditionFailed, code)
	require.Equal(t, api.CodeNotInitialized, resp.ErrNo)

	code, resp = post(t, h, "alice", "/init_key", &api.InitKeyReq{KeyName: testKeyName}, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, api.CodeSuccess, resp.ErrNo)
	require.True(t, h.Service().Initialized())

	code, resp = post(t, h, "bob", "/init_key", &api.InitKeyReq{KeyName: testKeyName}, nil)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, api.CodeAlreadyInitialized, resp.ErrNo)
}

func TestAuthAndKeyName(t *testing.T) {
	h := newTestHandler(t)

	code, _ := post(t, h, "", "/init_key", &api.InitKeyReq{KeyName: testKeyName}, nil)
	require.Equal(t, http.StatusUnauthorized, code)

	code, resp := post(t, h, "alice", "/init_key", &api.InitKeyReq{KeyName: "key_1"}, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, api.CodeKeyNameInvalid, resp.ErrNo)

	code, resp = post(t, h, "alice", "/init_key", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, api.CodeParamsInvalid, resp.ErrNo)
	require.False(t, h.Service().Initialized())
}

func TestPublicKey(t *testing.T) {
	h := newTestHandler(t)
	code, _ := post(t, h, "alice", "/init_key", &api.InitKeyReq{KeyName: testKeyName}, nil)
	require.Equal(t, http.StatusOK, code)

	path := [][]byte{{0x01, 0x02}}
	own := &api.PublicKeyResp{}
	code, _ = post(t, h, "alice", "/public_key", &api.PublicKeyReq{KeyName: testKeyName, Path: []string{"0102"}}, own)
	require.Equal(t, http.StatusOK, code)
	want, chainCode, err := h.Service().PublicKey([]byte("alice"), path)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(want), own.PublicKey)
	require.Equal(t, hex.EncodeToString(chainCode), own.ChainCode)

	// any caller may read another tenant's public key
	bobs := &api.PublicKeyResp{}
	code, _ = post(t, h, "alice", "/public_key", &api.PublicKeyReq{KeyName: testKeyName, Tenant: "bob"}, bobs)
	require.Equal(t, http.StatusOK, code)
	want, _, err = h.Service().PublicKey([]byte("bob"), nil)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(want), bobs.PublicKey)

	code, resp := post(t, h, "alice", "/public_key", &api.PublicKeyReq{KeyName: testKeyName, Path: []string{"zz"}}, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, api.CodeMalformedInput, resp.ErrNo)
}

func TestSignWithSchnorr(t *testing.T) {
	h := newTestHandler(t)
	code, _ := post(t, h, "alice", "/init_key", &api.InitKeyReq{KeyName: testKeyName}, nil)
	require.Equal(t, http.StatusOK, code)

	digest := chainhash.HashB([]byte("reveal"))
	sig := &api.SignResp{}
	code, _ = post(t, h, "bob", "/sign_with_schnorr", &api.SignReq{
		KeyName: testKeyName,
		Digest:  hex.EncodeToString(digest),
	}, sig)
	require.Equal(t, http.StatusOK, code)

	// the caller signs with its own key
	pubBytes, _, err := h.Service().PublicKey([]byte("bob"), nil)
	require.NoError(t, err)
	pub, err := btcec.ParsePubKey(pubBytes)
	require.NoError(t, err)
	raw, err := hex.DecodeString(sig.Signature)
	require.NoError(t, err)
	parsed, err := schnorr.ParseSignature(raw)
	require.NoError(t, err)
	require.True(t, parsed.Verify(digest, pub))

	code, resp := post(t, h, "bob", "/sign_with_schnorr", &api.SignReq{
		KeyName: testKeyName,
		Digest:  hex.EncodeToString(digest[:31]),
	}, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, api.CodeMalformedInput, resp.ErrNo)
}

func TestSignWithECDSA(t *testing.T) {
	h := newTestHandler(t)
	code, _ := post(t, h, "alice", "/init_key", &api.InitKeyReq{KeyName: testKeyName}, nil)
	require.Equal(t, http.StatusOK, code)

	digest := chainhash.HashB([]byte("commit"))
	sig := &api.SignResp{}
	code, _ = post(t, h, "alice", "/sign_with_ecdsa", &api.SignReq{
		KeyName: testKeyName,
		Path:    []string{"00"},
		Digest:  hex.EncodeToString(digest),
	}, sig)
	require.Equal(t, http.StatusOK, code)

	want, err := h.Service().SignECDSA([]byte("alice"), [][]byte{{0x00}}, digest)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(want), sig.Signature)

	code, resp := post(t, h, "alice", "/sign_with_ecdsa", &api.SignReq{
		KeyName: testKeyName,
		Digest:  "not hex",
	}, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, api.CodeParamsInvalid, resp.ErrNo)
}

func TestMetricsRoute(t *testing.T) {
	h := newTestHandler(t)
	post(t, h, "alice", "/init_key", &api.InitKeyReq{KeyName: testKeyName}, nil)

	w := httptest.NewRecorder()
	h.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "inscription_custody_http_duration")
	require.Contains(t, w.Body.String(), "inscription_custody_seed_initializations_total")
}
