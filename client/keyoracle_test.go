package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gin-gonic/gin"
	"github.com/inscription-c/custody/errs"
	"github.com/inscription-c/custody/signer"
	"github.com/inscription-c/custody/wallet"
	"github.com/inscription-c/custody/wallet/server/handle"
	"github.com/stretchr/testify/require"
)

const oracleKeyName = "dfx_test_key"

var _ signer.Signer = (*KeyOracle)(nil)

func keyServer(t *testing.T) (*httptest.Server, *wallet.Service) {
	gin.SetMode(gin.TestMode)
	service, err := wallet.NewService(wallet.WithParams(&chaincfg.RegressionNetParams))
	require.NoError(t, err)
	h, err := handle.New(
		handle.WithService(service),
		handle.WithKeyName(oracleKeyName),
		handle.WithAccounts(map[string]string{"alice": "secret"}),
	)
	require.NoError(t, err)
	return httptest.NewServer(h.Engine()), service
}

func newTestOracle(t *testing.T, url, password string) *KeyOracle {
	k, err := NewKeyOracle(
		WithOracleUrl(url+"/"),
		WithOracleUser("alice"),
		WithOraclePassword(password),
		WithKeyName(oracleKeyName),
	)
	require.NoError(t, err)
	return k
}

func TestKeyOracle(t *testing.T) {
	srv, service := keyServer(t)
	defer srv.Close()
	ctx := context.Background()
	k := newTestOracle(t, srv.URL, "secret")

	_, err := k.PublicKey(ctx, nil)
	require.ErrorIs(t, err, errs.ErrNotInitialized)

	require.NoError(t, k.InitKey(ctx))
	require.ErrorIs(t, k.InitKey(ctx), errs.ErrAlreadyInitialized)

	path := [][]byte{{0x01}, []byte("sub")}
	pubBytes, err := k.PublicKey(ctx, path)
	require.NoError(t, err)
	want, _, err := service.PublicKey([]byte("alice"), path)
	require.NoError(t, err)
	require.Equal(t, want, pubBytes)
	pub, err := btcec.ParsePubKey(pubBytes)
	require.NoError(t, err)

	digest := chainhash.HashB([]byte("oracle"))
	sig, err := k.SignSchnorr(ctx, path, digest)
	require.NoError(t, err)
	parsed, err := schnorr.ParseSignature(sig)
	require.NoError(t, err)
	require.True(t, parsed.Verify(digest, pub))

	compact, err := k.SignECDSA(ctx, path, digest)
	require.NoError(t, err)
	direct, err := service.SignECDSA([]byte("alice"), path, digest)
	require.NoError(t, err)
	require.Equal(t, direct, compact)

	_, err = k.SignSchnorr(ctx, path, digest[:20])
	require.ErrorIs(t, err, errs.ErrMalformedInput)
}

func TestKeyOracleUnauthorized(t *testing.T) {
	srv, _ := keyServer(t)
	defer srv.Close()

	k := newTestOracle(t, srv.URL, "wrong")
	err := k.InitKey(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrAlreadyInitialized)
}

func TestNewKeyOracleValidates(t *testing.T) {
	_, err := NewKeyOracle(WithOracleUrl("http://localhost:8336"), WithKeyName(oracleKeyName))
	require.Error(t, err)
	_, err = NewKeyOracle(WithOracleUser("alice"), WithKeyName(oracleKeyName))
	require.Error(t, err)
}
