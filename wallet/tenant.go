package wallet

import (
	"context"

	"github.com/inscription-c/custody/signer"
)

// TenantSigner is the in-process signer.Signer of one tenant.
type TenantSigner struct {
	service *Service
	tenant  []byte
}

var _ signer.Signer = (*TenantSigner)(nil)

// Signer binds the service to a tenant.
func (s *Service) Signer(tenant []byte) *TenantSigner {
	return &TenantSigner{service: s, tenant: tenant}
}

func (t *TenantSigner) PublicKey(_ context.Context, path [][]byte) ([]byte, error) {
	pub, _, err := t.service.PublicKey(t.tenant, path)
	return pub, err
}

func (t *TenantSigner) SignECDSA(_ context.Context, path [][]byte, digest []byte) ([]byte, error) {
	return t.service.SignECDSA(t.tenant, path, digest)
}

func (t *TenantSigner) SignSchnorr(_ context.Context, path [][]byte, digest []byte) ([]byte, error) {
	return t.service.SignSchnorr(t.tenant, path, digest)
}
