// Package sms delivers verification codes through an external SMS provider.
// Provider-specific failures (sensitive word, daily limit, throttle, bad
// credentials) are logged server-side with their raw payload and collapsed
// into ErrDispatch so raw provider codes never reach a client.
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrDispatch is the only error a Dispatcher surfaces to callers.
var ErrDispatch = errors.New("sms dispatch failed")

// Dispatcher sends a verification code to a phone number.
type Dispatcher interface {
	Send(ctx context.Context, phone, code string) error
}

// HTTPDispatcher talks to the SMS provider's form-encoded HTTP API.
type HTTPDispatcher struct {
	baseURL  string
	account  string
	password string
	sender   string
	client   *http.Client
}

func NewHTTPDispatcher(baseURL, account, password, sender string) *HTTPDispatcher {
	return &HTTPDispatcher{
		baseURL:  baseURL,
		account:  account,
		password: password,
		sender:   sender,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// providerStatus mirrors the provider's JSON response envelope.
type providerStatus struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func (d *HTTPDispatcher) Send(ctx context.Context, phone, code string) error {
	form := url.Values{}
	form.Set("userid", d.account)
	form.Set("password", d.password)
	form.Set("senderid", d.sender)
	form.Set("msgType", "text")
	form.Set("msg", fmt.Sprintf("Your verification code is %s. It expires shortly.", code))
	form.Set("mobile", phone)
	form.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("sms: build request failed: %v", err)
		return ErrDispatch
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("sms: provider request failed: %v", err)
		return ErrDispatch
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode != http.StatusOK {
		log.Printf("sms: provider returned HTTP %d: %s", resp.StatusCode, string(body))
		return ErrDispatch
	}

	var st providerStatus
	if err := json.Unmarshal(body, &st); err != nil {
		log.Printf("sms: unparseable provider response: %s", string(body))
		return ErrDispatch
	}
	if strings.EqualFold(st.Status, "success") {
		return nil
	}
	// Classify for the server log only; clients always see ErrDispatch.
	switch st.Code {
	case "SENSITIVE_WORD":
		log.Printf("sms: provider rejected content (sensitive word) phone=%s", phone)
	case "DAILY_LIMIT":
		log.Printf("sms: provider daily limit reached phone=%s", phone)
	case "THROTTLED":
		log.Printf("sms: provider throttled phone=%s", phone)
	case "AUTH_FAILED":
		log.Printf("sms: provider rejected credentials")
	default:
		log.Printf("sms: provider error code=%s reason=%s", st.Code, st.Reason)
	}
	return ErrDispatch
}

// LogDispatcher writes the code to the server log instead of sending it.
// Used in development and in tests; never wire it in prod.
type LogDispatcher struct{}

func (LogDispatcher) Send(_ context.Context, phone, code string) error {
	log.Printf("sms: [dev] code for %s is %s", phone, code)
	return nil
}
