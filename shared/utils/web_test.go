package utils

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBody struct {
	Field1 string `json:"field1" form:"field1" validate:"required"`
	Field2 string `json:"field2" form:"field2"`
	Number int    `json:"number" form:"number"`
}

func TestDecodeValidate(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		expected    testBody
		expectedErr *internal_errors.ErrorWithStatusCode
	}{
		{
			name:        "valid json",
			method:      http.MethodPost,
			target:      "/",
			contentType: "application/json",
			body:        `{"field1": "value", "field2": "other", "number": 3}`,
			expected:    testBody{Field1: "value", Field2: "other", Number: 3},
		},
		{
			name:        "json with charset",
			method:      http.MethodPost,
			target:      "/",
			contentType: "application/json; charset=utf-8",
			body:        `{"field1": "value"}`,
			expected:    testBody{Field1: "value"},
		},
		{
			name:        "invalid json",
			method:      http.MethodPost,
			target:      "/",
			contentType: "application/json",
			body:        `{"field1": "value"`,
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400},
		},
		{
			name:        "missing required field",
			method:      http.MethodPost,
			target:      "/",
			contentType: "application/json",
			body:        `{"field2": "x"}`,
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400},
		},
		{
			name:        "empty json body",
			method:      http.MethodPost,
			target:      "/",
			contentType: "application/json",
			body:        "",
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400},
		},
		{
			name:        "urlencoded body on DELETE",
			method:      http.MethodDelete,
			target:      "/",
			contentType: "application/x-www-form-urlencoded",
			body:        "field1=a+b&field2=%5Bx%5D",
			expected:    testBody{Field1: "a b", Field2: "[x]"},
		},
		{
			name:     "query string only",
			method:   http.MethodGet,
			target:   "/?field1=fromquery",
			expected: testBody{Field1: "fromquery"},
		},
		{
			name:        "body wins over query",
			method:      http.MethodPut,
			target:      "/?field1=fromquery&field2=q",
			contentType: "application/x-www-form-urlencoded",
			body:        "field1=frombody",
			expected:    testBody{Field1: "frombody", Field2: "q"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			var got testBody
			err := DecodeValidate(req, &got)

			if tt.expectedErr != nil {
				var e *internal_errors.ErrorWithStatusCode
				require.True(t, errors.As(err, &e), "expected ErrorWithStatusCode, got %v", err)
				assert.Equal(t, tt.expectedErr, e)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeRequestMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("field1", "multi"))
	require.NoError(t, mw.WriteField("field2", "part"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodDelete, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var got testBody
	require.NoError(t, DecodeRequest(req, &got))
	assert.Equal(t, testBody{Field1: "multi", Field2: "part"}, got)
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"status error", &internal_errors.ErrorWithStatusCode{Message: "nope", StatusCode: 418}, 418, "nope\n"},
		{"validation error", &internal_errors.ValidationError{Message: "board is required"}, 400, "board is required\n"},
		{"plain error", errors.New("db down"), 500, "Internal server error\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteErrorAndStatusCode(rr, tt.err)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, rr.Body.String())
		})
	}
}
