package handle

import (
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inscription-c/custody/errs"
	"github.com/inscription-c/custody/wallet/server/handle/api"
)

// InitKey creates the master seed.
func (h *Handler) InitKey(ctx *gin.Context) {
	req := &api.InitKeyReq{}
	if !h.bind(ctx, req, &req.KeyName) {
		return
	}
	if err := h.Service().Initialize(ctx.Request.Context()); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.RespOK(nil))
}

// PublicKey returns the key of a tenant, the caller unless the request
// names one.
func (h *Handler) PublicKey(ctx *gin.Context) {
	req := &api.PublicKeyReq{}
	if !h.bind(ctx, req, &req.KeyName) {
		return
	}
	path, err := decodePath(req.Path)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	tenant := caller(ctx)
	if req.Tenant != "" {
		tenant = []byte(req.Tenant)
	}
	pub, chainCode, err := h.Service().PublicKey(tenant, path)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.RespOK(&api.PublicKeyResp{
		PublicKey: hex.EncodeToString(pub),
		ChainCode: hex.EncodeToString(chainCode),
	}))
}

// SignSchnorr signs for the caller only.
func (h *Handler) SignSchnorr(ctx *gin.Context) {
	h.sign(ctx, h.Service().SignSchnorr)
}

// SignECDSA signs for the caller only.
func (h *Handler) SignECDSA(ctx *gin.Context) {
	h.sign(ctx, h.Service().SignECDSA)
}

func (h *Handler) sign(ctx *gin.Context, sign func(tenant []byte, path [][]byte, digest []byte) ([]byte, error)) {
	req := &api.SignReq{}
	if !h.bind(ctx, req, &req.KeyName) {
		return
	}
	path, err := decodePath(req.Path)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	digest, err := hex.DecodeString(req.Digest)
	if err != nil {
		h.fail(ctx, errs.Malformed("digest: %v", err))
		return
	}
	sig, err := sign(caller(ctx), path, digest)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.RespOK(&api.SignResp{
		Signature: hex.EncodeToString(sig),
	}))
}

// bind decodes the json body and checks the requested key name.
func (h *Handler) bind(ctx *gin.Context, req interface{}, keyName *string) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, api.RespErr(api.CodeParamsInvalid, err.Error()))
		return false
	}
	if *keyName != h.options.keyName {
		ctx.JSON(http.StatusBadRequest, api.RespErr(api.CodeKeyNameInvalid, "unknown key name "+*keyName))
		return false
	}
	return true
}

func (h *Handler) fail(ctx *gin.Context, err error) {
	code := api.CodeOf(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrMalformedInput):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrAlreadyInitialized), errors.Is(err, errs.ErrAlreadyInitializing):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrNotInitialized):
		status = http.StatusPreconditionFailed
	}
	if status == http.StatusInternalServerError {
		h.options.logger.Errorf("%s: %v", ctx.Request.URL.Path, err)
	}
	_ = ctx.Error(err)
	ctx.JSON(status, api.RespErr(code, err.Error()))
}

func caller(ctx *gin.Context) []byte {
	return []byte(ctx.GetString(gin.AuthUserKey))
}

func decodePath(path []string) ([][]byte, error) {
	res := make([][]byte, 0, len(path))
	for _, p := range path {
		b, err := hex.DecodeString(p)
		if err != nil {
			return nil, errs.Malformed("path element %q: %v", p, err)
		}
		res = append(res, b)
	}
	return res, nil
}
