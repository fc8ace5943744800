//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/hyperjump/imi/internal/apperr"
	ort "github.com/yalue/onnxruntime_go"
)

var initRuntime sync.Once
var initRuntimeErr error

// ONNXEncoder runs a sentence-transformer ONNX export through ONNX Runtime.
// It requires CGO and the onnxruntime shared library.
type ONNXEncoder struct {
	session    *ort.DynamicAdvancedSession
	inputNames []string
	hidden     int
	// Runs share the session; Close takes it exclusively.
	mu sync.RWMutex
}

// NewONNXEncoder loads the model at opts.ModelPath. The runtime environment is initialized once per process.
func NewONNXEncoder(opts ONNXOptions) (*ONNXEncoder, error) {
	if _, err := os.Stat(opts.ModelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Wrap(err, apperr.CodeArtifactMissing, "model not found", "path", opts.ModelPath)
		}
		return nil, apperr.Wrap(err, apperr.CodeArtifactInvalid, "model not readable", "path", opts.ModelPath)
	}

	initRuntime.Do(func() {
		if opts.RuntimeLibrary != "" {
			ort.SetSharedLibraryPath(opts.RuntimeLibrary)
		}
		if !ort.IsInitialized() {
			initRuntimeErr = ort.InitializeEnvironment()
		}
	})
	if initRuntimeErr != nil {
		return nil, apperr.Wrap(initRuntimeErr, apperr.CodeArtifactInvalid, "failed to initialize ONNX runtime", "library", opts.RuntimeLibrary)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeArtifactInvalid, "failed to create session options")
	}
	defer options.Destroy()
	if opts.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeArtifactInvalid, "failed to set intra-op threads")
		}
	}

	inputNames := []string{"input_ids", "attention_mask"}
	if opts.UseTokenTypeIDs {
		inputNames = append(inputNames, "token_type_ids")
	}
	session, err := ort.NewDynamicAdvancedSession(opts.ModelPath, inputNames, []string{opts.OutputName}, options)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeArtifactInvalid, "failed to create ONNX session", "path", opts.ModelPath)
	}

	return &ONNXEncoder{
		session:    session,
		inputNames: inputNames,
		hidden:     opts.Hidden,
	}, nil
}

// Encode runs the model on one sequence (batch size 1) and returns its last hidden state.
func (e *ONNXEncoder) Encode(ctx context.Context, enc *Encoding) (*HiddenStates, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.session == nil {
		return nil, errors.New("encoder is closed")
	}

	n := enc.Len()
	shape := ort.NewShape(1, int64(n))
	data := map[string][]int64{
		"input_ids":      enc.IDs,
		"attention_mask": enc.AttentionMask,
		"token_type_ids": enc.TypeIDs,
	}
	inputs := make([]ort.ArbitraryTensor, 0, len(e.inputNames))
	defer func() {
		for _, t := range inputs {
			_ = t.Destroy()
		}
	}()
	for _, name := range e.inputNames {
		t, err := ort.NewTensor(shape, data[name])
		if err != nil {
			return nil, fmt.Errorf("create %s tensor: %w", name, err)
		}
		inputs = append(inputs, t)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(n), int64(e.hidden)))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := e.session.Run(inputs, []ort.ArbitraryTensor{output}); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	out := &HiddenStates{Data: make([]float32, n*e.hidden), SeqLen: n, Hidden: e.hidden}
	copy(out.Data, output.GetData())
	return out, nil
}

// Close destroys the session.
func (e *ONNXEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}
