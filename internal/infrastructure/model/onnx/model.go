// Package onnx serves per-language entity scoring models with ONNX Runtime.
package onnx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type Config struct {
	// LibraryPath points at the onnxruntime shared library. Empty uses the
	// platform default search path.
	LibraryPath string
	// ModelDir holds one <language>.onnx file per supported language.
	ModelDir   string
	InputName  string
	OutputName string
}

// Model loads sessions lazily. A language counts as available as soon as its
// model file exists; runtime failures surface from Predict so callers can
// fall back per request.
type Model struct {
	cfg    Config
	logger *slog.Logger

	initOnce sync.Once
	initErr  error

	mu       sync.Mutex
	sessions map[string]*ort.DynamicAdvancedSession
}

func New(cfg Config, logger *slog.Logger) *Model {
	if cfg.InputName == "" {
		cfg.InputName = "features"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "score"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{cfg: cfg, logger: logger, sessions: map[string]*ort.DynamicAdvancedSession{}}
}

func (m *Model) modelPath(language string) string {
	return filepath.Join(m.cfg.ModelDir, strings.ToLower(language)+".onnx")
}

func (m *Model) Available(language string) bool {
	if m.cfg.ModelDir == "" || language == "" {
		return false
	}
	st, err := os.Stat(m.modelPath(language))
	return err == nil && !st.IsDir()
}

func (m *Model) Predict(ctx context.Context, language string, features []float32) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !m.Available(language) {
		return 0, domain.WrapError(domain.ErrCapabilityUnavailable, "onnx predict", fmt.Errorf("no model for %q", language))
	}
	if len(features) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "onnx predict", errors.New("empty feature vector"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.session(language)
	if err != nil {
		return 0, domain.WrapError(domain.ErrCapabilityUnavailable, "onnx session", err)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(features))), features)
	if err != nil {
		return 0, fmt.Errorf("onnx input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		return 0, fmt.Errorf("onnx output tensor: %w", err)
	}
	defer output.Destroy()

	if err := session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return 0, domain.WrapError(domain.ErrCapabilityUnavailable, "onnx run", err)
	}
	data := output.GetData()
	if len(data) == 0 {
		return 0, domain.WrapError(domain.ErrCapabilityUnavailable, "onnx run", errors.New("empty output"))
	}
	return float64(data[0]), nil
}

// session must be called with mu held.
func (m *Model) session(language string) (*ort.DynamicAdvancedSession, error) {
	m.initOnce.Do(func() {
		if m.cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(m.cfg.LibraryPath)
		}
		if !ort.IsInitialized() {
			m.initErr = ort.InitializeEnvironment()
		}
	})
	if m.initErr != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", m.initErr)
	}

	if s, ok := m.sessions[language]; ok {
		return s, nil
	}
	s, err := ort.NewDynamicAdvancedSession(m.modelPath(language),
		[]string{m.cfg.InputName}, []string{m.cfg.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", m.modelPath(language), err)
	}
	m.logger.Info("scoring model loaded", "language", language, "path", m.modelPath(language))
	m.sessions[language] = s
	return s, nil
}

func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for lang, s := range m.sessions {
		if err := s.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("destroy %s session: %w", lang, err))
		}
		delete(m.sessions, lang)
	}
	if m.initErr == nil && ort.IsInitialized() {
		if err := ort.DestroyEnvironment(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
