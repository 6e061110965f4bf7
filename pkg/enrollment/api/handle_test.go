package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capsulehq/portal-auth/pkg/albauth"
	"github.com/capsulehq/portal-auth/pkg/enrollment"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	svc := enrollment.NewService(enrollment.NewInMemEnrollmentRepository())
	return Routes(NewHandle(svc))
}

func oidcData(t *testing.T, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, albauth.Claims{Email: email})
	raw, err := token.SignedString([]byte("alb-signing-key"))
	require.NoError(t, err)
	return raw
}

func doRequest(t *testing.T, handler http.Handler, method, path, email string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if email != "" {
		req.Header.Set(albauth.OIDCDataHeader, oidcData(t, email))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSetupFlow(t *testing.T) {
	handler := newTestHandler(t)

	// Init returns provisioning data.
	rec := doRequest(t, handler, http.MethodGet, "/init", "a@b.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var initResp InitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &initResp))
	assert.True(t, initResp.Success)
	require.NotEmpty(t, initResp.Secret)
	assert.Contains(t, initResp.QRCode, "data:image/png;base64,")

	// Status is disabled before confirmation.
	rec = doRequest(t, handler, http.MethodGet, "/status", "a@b.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var statusResp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statusResp))
	assert.False(t, statusResp.MFAEnabled)

	// Confirm with a real code from the returned secret.
	code, err := totp.GenerateCodeCustom(initResp.Secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	rec = doRequest(t, handler, http.MethodPost, "/verify", "a@b.com", VerifyRequest{Code: code})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/status", "a@b.com", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statusResp))
	assert.True(t, statusResp.MFAEnabled)
	assert.Equal(t, "a@b.com", statusResp.Email)
}

func TestVerifyRejectsShortCode(t *testing.T) {
	handler := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/verify", "a@b.com", VerifyRequest{Code: "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyWithoutInit(t *testing.T) {
	handler := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/verify", "a@b.com", VerifyRequest{Code: "123456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestVerifyWrongCode(t *testing.T) {
	handler := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/init", "a@b.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodPost, "/verify", "a@b.com", VerifyRequest{Code: "000000"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutesRequireAuthentication(t *testing.T) {
	handler := newTestHandler(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/init"},
		{http.MethodPost, "/verify"},
		{http.MethodGet, "/status"},
		{http.MethodPost, "/disable"},
	} {
		rec := doRequest(t, handler, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestDisable(t *testing.T) {
	handler := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/init", "a@b.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodPost, "/disable", "a@b.com", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/status", "a@b.com", nil)
	var statusResp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statusResp))
	assert.False(t, statusResp.MFAEnabled)
}
