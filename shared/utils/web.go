package utils

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/boardstore/shared/errors"
	"github.com/itchan-dev/boardstore/shared/logger"
)

const maxBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *errors.ErrorWithStatusCode
	if stderrors.As(err, &e) {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	var ve *errors.ValidationError
	if stderrors.As(err, &ve) {
		http.Error(w, ve.Message, http.StatusBadRequest)
		return
	}
	// default error is 500
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// DecodeRequest fills body from a JSON, url-encoded or multipart request
// body. Form bodies are mapped onto body's string fields through their
// `form` tags; the query string is used for fields the body does not set.
// An empty body leaves body untouched.
func DecodeRequest(r *http.Request, body any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		return Decode(http.MaxBytesReader(nil, r.Body, maxBodySize), body)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodySize); err != nil {
			logger.Log.Debug("invalid multipart body", "error", err)
			return &errors.ErrorWithStatusCode{Message: "Body is invalid form", StatusCode: http.StatusBadRequest}
		}
		return decodeForm(r.MultipartForm.Value, r.URL.Query(), body)
	case "application/x-www-form-urlencoded":
		// http.Request.ParseForm ignores the body of DELETE requests
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			return &errors.ErrorWithStatusCode{Message: "Can't read body", StatusCode: http.StatusBadRequest}
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			logger.Log.Debug("invalid urlencoded body", "error", err)
			return &errors.ErrorWithStatusCode{Message: "Body is invalid form", StatusCode: http.StatusBadRequest}
		}
		return decodeForm(values, r.URL.Query(), body)
	default:
		return decodeForm(nil, r.URL.Query(), body)
	}
}

func DecodeValidate(r *http.Request, body any) error {
	if err := DecodeRequest(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		logger.Log.Debug("invalid json body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func decodeForm(values, fallback url.Values, body any) error {
	v := reflect.ValueOf(body)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return &errors.ErrorWithStatusCode{Message: "Internal error", StatusCode: http.StatusInternalServerError}
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := field.Tag.Get("form")
		if key == "" || field.Type.Kind() != reflect.String {
			continue
		}
		if vals, ok := values[key]; ok && len(vals) > 0 {
			v.Field(i).SetString(vals[0])
		} else if vals, ok := fallback[key]; ok && len(vals) > 0 {
			v.Field(i).SetString(vals[0])
		}
	}
	return nil
}
