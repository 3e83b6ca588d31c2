package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webhook-outbox/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newDeliveryClient(t *testing.T, ctrl *gomock.Controller, timeout time.Duration) (*HTTPDeliveryClient, *mocks.MockTargetValidator) {
	t.Helper()
	validator := mocks.NewMockTargetValidator(ctrl)
	client := NewHTTPDeliveryClient(&http.Client{}, validator, NewHMACSignatureService(), timeout, newTestLogger())
	return client, validator
}

func TestHTTPDeliveryClient_WireFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var gotHeaders http.Header
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, validator := newDeliveryClient(t, ctrl, 2*time.Second)
	validator.EXPECT().Validate(gomock.Any(), srv.URL).Return(nil)

	payload := json.RawMessage(`{"session_id":"s-1","minutes":25}`)
	res := client.Send(context.Background(), srv.URL, "session.created", payload, "whsec_42")

	require.True(t, res.OK)
	require.NotNil(t, res.StatusCode)
	assert.Equal(t, http.StatusOK, *res.StatusCode)
	assert.Empty(t, res.Err)

	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "session.created", gotHeaders.Get(HeaderEvent))

	ts := gotHeaders.Get(HeaderTimestamp)
	require.NotEmpty(t, ts)

	var body struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
		TS      int64           `json:"ts"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, "session.created", body.Event)
	assert.JSONEq(t, string(payload), string(body.Payload))
	assert.Equal(t, ts, jsonInt(body.TS))

	// Signature covers "{ts}.{body}" with the exact bytes on the wire.
	sigSvc := NewHMACSignatureService()
	expected := sigSvc.Sign("whsec_42", SignedPayload(body.TS, gotBody))
	assert.Equal(t, expected, gotHeaders.Get(HeaderSignature))
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestHTTPDeliveryClient_NoSecretNoSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(HeaderSignature)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, validator := newDeliveryClient(t, ctrl, 2*time.Second)
	validator.EXPECT().Validate(gomock.Any(), srv.URL).Return(nil)

	res := client.Send(context.Background(), srv.URL, "test", json.RawMessage(`{}`), "")
	require.True(t, res.OK)
	assert.Equal(t, http.StatusNoContent, *res.StatusCode)
	assert.Empty(t, gotSig)
}

func TestHTTPDeliveryClient_Non2xx(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, validator := newDeliveryClient(t, ctrl, 2*time.Second)
	validator.EXPECT().Validate(gomock.Any(), srv.URL).Return(nil)

	res := client.Send(context.Background(), srv.URL, "test", json.RawMessage(`{}`), "")
	assert.False(t, res.OK)
	require.NotNil(t, res.StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, *res.StatusCode)
	assert.NotEmpty(t, res.Err)
}

func TestHTTPDeliveryClient_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	client, validator := newDeliveryClient(t, ctrl, 50*time.Millisecond)
	validator.EXPECT().Validate(gomock.Any(), srv.URL).Return(nil)

	res := client.Send(context.Background(), srv.URL, "test", json.RawMessage(`{}`), "")
	assert.False(t, res.OK)
	assert.Nil(t, res.StatusCode, "timeouts carry no status code")
	assert.NotEmpty(t, res.Err)
}

func TestHTTPDeliveryClient_ValidatorRejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client, validator := newDeliveryClient(t, ctrl, 2*time.Second)
	validator.EXPECT().Validate(gomock.Any(), srv.URL).Return(assertableErr("loopback"))

	res := client.Send(context.Background(), srv.URL, "test", json.RawMessage(`{}`), "")
	assert.False(t, res.OK)
	assert.Nil(t, res.StatusCode)
	assert.Contains(t, res.Err, "target rejected")
	assert.False(t, called, "no request may leave when the target fails validation")
}

func TestHTTPDeliveryClient_ConnectionRefused(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens anymore

	client, validator := newDeliveryClient(t, ctrl, time.Second)
	validator.EXPECT().Validate(gomock.Any(), url).Return(nil)

	res := client.Send(context.Background(), url, "test", json.RawMessage(`{}`), "")
	assert.False(t, res.OK)
	assert.Nil(t, res.StatusCode)
	assert.NotEmpty(t, res.Err)
}
