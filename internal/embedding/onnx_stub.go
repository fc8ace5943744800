//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"

	"github.com/hyperjump/imi/internal/apperr"
)

// ONNXEncoder stub type when built without CGO (see onnx.go for real implementation).
type ONNXEncoder struct{}

// NewONNXEncoder returns an error when built without CGO (ONNX not available).
func NewONNXEncoder(opts ONNXOptions) (*ONNXEncoder, error) {
	return nil, apperr.New(apperr.CodeArtifactInvalid,
		"ONNX encoder requires CGO; build with CGO_ENABLED=1 and onnxruntime", "path", opts.ModelPath)
}

// Encode always fails without CGO.
func (e *ONNXEncoder) Encode(context.Context, *Encoding) (*HiddenStates, error) {
	return nil, errors.New("ONNX encoder not available")
}

// Close is a no-op without CGO.
func (e *ONNXEncoder) Close() error {
	return nil
}
