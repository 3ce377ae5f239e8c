// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeMemoryEmbeddingUnavailable Code = "memory.embedding.unavailable"
	CodeMemoryIndexWriteFailure    Code = "memory.index.write.failure"
	CodeMemoryIndexReadFailure     Code = "memory.index.read.failure"
	CodeMemoryIndexOpenFailure     Code = "memory.index.open.failure"
	CodeMemoryInvalidInput         Code = "memory.store.invalid_input"

	CodeGraphAuthFailure         Code = "graph.auth.failure"
	CodeGraphBackendWriteFailure Code = "graph.backend.write.failure"
	CodeGraphBackendReadFailure  Code = "graph.backend.read.failure"
	CodeGraphInvalidInput        Code = "graph.query.invalid_input"

	CodeEmbedProviderUnsupported   Code = "embed.provider.unsupported"
	CodeEmbedProviderConfigInvalid Code = "embed.provider.invalid_value"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeSecretInvalidInput   Code = "secret.invalid_input"
	CodeSecretNotFound       Code = "secret.not_found"
	CodeSecretStoreFailure   Code = "secret.store.failure"
	CodeSecretDeleteFailure  Code = "secret.delete.failure"
	CodeSecretListFailure    Code = "secret.list.failure"
	CodeSecretResolveFailure Code = "secret.resolve.failure"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerStartFailure    Code = "server.start.failure"
	CodeServerShutdownFailure Code = "server.shutdown.failure"

	CodeCLISetupFailure Code = "cli.setup.failure"
	CodeCLIInputInvalid Code = "cli.input.invalid"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldRecordID(value string) Attr {
	return Field("record_id", value)
}

func FieldSubject(value string) Attr {
	return Field("subject", value)
}

func FieldProvider(value string) Attr {
	return Field("provider", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value"
}

// IsUnavailable reports whether an external collaborator (embedding model,
// vector index, relation backend) could not serve the request at all.
func IsUnavailable(err error) bool {
	return reason(CodeOf(err)) == "unavailable"
}

// IsAuthFailure reports whether the error stems from the relation backend
// credential exchange. Auth failures are fatal and must not be retried with
// the same credentials.
func IsAuthFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), ".auth.") && reason(code) == "failure"
}

// IsWriteFailure reports whether a storage write failed. Write failures are
// candidates for caller-level retry with backoff; the core never retries.
func IsWriteFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), ".write.") && reason(code) == "failure"
}

func IsReadFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), ".read.") && reason(code) == "failure"
}

func HTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsAuthFailure(err):
		return http.StatusBadGateway
	case IsUnavailable(err):
		return http.StatusServiceUnavailable
	case IsWriteFailure(err) || IsReadFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
