package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Client is a bitcoind json-rpc client over http post.
type Client struct {
	Url           string `validate:"required,url"`
	User          string
	Password      string
	TLSSkipVerify bool
	Cert          string
	Timeout       time.Duration

	id         atomic.Uint64
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithUrl(url string) ClientOption {
	return func(c *Client) {
		c.Url = url
	}
}

func WithUser(user string) ClientOption {
	return func(c *Client) {
		c.User = user
	}
}

func WithPassword(password string) ClientOption {
	return func(c *Client) {
		c.Password = password
	}
}

func WithRPCCert(cert string) ClientOption {
	return func(c *Client) {
		c.Cert = cert
	}
}

func WithTLSSkipVerify(skip bool) ClientOption {
	return func(c *Client) {
		c.TLSSkipVerify = skip
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.Timeout = timeout
	}
}

func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		Timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := validate.Struct(c); err != nil {
		return nil, err
	}
	httpClient, err := newHTTPClient(c.Cert, c.TLSSkipVerify, c.Timeout)
	if err != nil {
		return nil, err
	}
	c.httpClient = httpClient
	return c, nil
}

// SendRequest calls a registered btcjson method and decodes its result
// into result.
func (c *Client) SendRequest(ctx context.Context, method string, result interface{}, params ...interface{}) error {
	cmd, err := btcjson.NewCmd(method, params...)
	if err != nil {
		var jerr btcjson.Error
		if errors.As(err, &jerr) {
			return fmt.Errorf("%s command: %v (code: %s)", method, err, jerr.ErrorCode)
		}
		return fmt.Errorf("%s command: %v", method, err)
	}

	marshalledJSON, err := btcjson.MarshalCmd(btcjson.RpcVersion1, c.id.Add(1), cmd)
	if err != nil {
		return err
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Url, bytes.NewReader(marshalledJSON))
	if err != nil {
		return err
	}
	httpRequest.Close = true
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.SetBasicAuth(c.User, c.Password)

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return err
	}
	respBytes, err := io.ReadAll(httpResponse.Body)
	_ = httpResponse.Body.Close()
	if err != nil {
		return fmt.Errorf("error reading json reply: %v", err)
	}

	resp := &Response{Result: result}
	if err := json.Unmarshal(respBytes, resp); err != nil {
		if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
			if len(respBytes) == 0 {
				return fmt.Errorf("%d %s", httpResponse.StatusCode, http.StatusText(httpResponse.StatusCode))
			}
			return fmt.Errorf("%s", respBytes)
		}
		return err
	}
	// bitcoind answers rpc errors with status 500 and a json body.
	if resp.Error != nil {
		return resp.Error
	}
	return nil
}

// newHTTPClient returns an http client trusting cert, when given.
func newHTTPClient(cert string, skipVerify bool, timeout time.Duration) (*http.Client, error) {
	var tlsConfig *tls.Config
	if cert != "" {
		pem, err := os.ReadFile(cert)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(pem)
		tlsConfig = &tls.Config{
			RootCAs:            pool,
			InsecureSkipVerify: skipVerify,
		}
	} else if skipVerify {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := &http.Client{Timeout: timeout}
	if tlsConfig != nil {
		client.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
	}
	return client, nil
}
