package api

import (
	"fmt"
)

type Resp struct {
	ErrNo  Code        `json:"err_no"`
	ErrMsg string      `json:"err_msg"`
	Data   interface{} `json:"data"`
}

func RespOK(data interface{}) Resp {
	return Resp{
		Data: data,
	}
}

func RespErr(errNo Code, errMsg string) Resp {
	return Resp{
		ErrNo:  errNo,
		ErrMsg: errMsg,
	}
}

// Err turns a failed response back into an error matching the sentinel
// of its code.
func (a *Resp) Err() error {
	if a.ErrNo == CodeSuccess {
		return nil
	}
	if target := ErrorOf(a.ErrNo); target != nil {
		return fmt.Errorf("%w: %s", target, a.ErrMsg)
	}
	return fmt.Errorf("key server error %d: %s", a.ErrNo, a.ErrMsg)
}
