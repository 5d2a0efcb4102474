package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/compozy/foodtour/engine/remote"
	"github.com/compozy/foodtour/pkg/logger"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

const (
	DefaultPrefix     = "foodie_tour_results"
	DefaultGuideField = "complete_foodie_guide"
	fileExt           = ".json"
	maxNameSuffix     = 1000
)

// Kind classifies what the materializer found in the output.
type Kind string

const (
	KindNoOutput Kind = "no_output"
	KindGuide    Kind = "guide"
	KindPartial  Kind = "partial"
)

// Materialized is the rendered view of an execution result.
type Materialized struct {
	Kind   Kind                   `json:"kind"`
	Status remote.ExecutionStatus `json:"status,omitempty"`
	// Guide is the rendered guide field for KindGuide, or the raw output for
	// KindPartial.
	Guide        string          `json:"guide,omitempty"`
	Raw          json.RawMessage `json:"-"`
	ArtifactPath string          `json:"artifact_path,omitempty"`
	PersistErr   error           `json:"-"`
}

// Persisted reports whether an artifact file was written.
func (m *Materialized) Persisted() bool {
	return m != nil && m.ArtifactPath != ""
}

type Options struct {
	Fs         afero.Fs
	Dir        string
	Prefix     string
	GuideField string
	Now        func() time.Time
}

// Materializer extracts the guide from an execution output and persists the
// full output as a timestamped artifact.
type Materializer struct {
	fs         afero.Fs
	dir        string
	prefix     string
	guideField string
	now        func() time.Time
}

func New(opts Options) *Materializer {
	m := &Materializer{
		fs:         opts.Fs,
		dir:        opts.Dir,
		prefix:     opts.Prefix,
		guideField: opts.GuideField,
		now:        opts.Now,
	}
	if m.fs == nil {
		m.fs = afero.NewOsFs()
	}
	if m.dir == "" {
		m.dir = "."
	}
	if m.prefix == "" {
		m.prefix = DefaultPrefix
	}
	if m.guideField == "" {
		m.guideField = DefaultGuideField
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Materialize never fails: persistence problems are reported through
// PersistErr while the rendered guide is still returned.
func (m *Materializer) Materialize(ctx context.Context, result *remote.ExecutionResult) *Materialized {
	log := logger.FromContext(ctx)
	if result == nil || isEmptyOutput(result.Output) {
		out := &Materialized{Kind: KindNoOutput}
		if result != nil {
			out.Status = result.Status
		}
		log.Warn("no output received", "status", out.Status)
		return out
	}
	raw := result.Output
	field := gjson.GetBytes(raw, gjson.Escape(m.guideField))
	if !gjson.ParseBytes(raw).IsObject() || !field.Exists() {
		log.Warn("partial results received", "status", result.Status)
		return &Materialized{
			Kind:   KindPartial,
			Status: result.Status,
			Guide:  string(raw),
			Raw:    raw,
		}
	}
	out := &Materialized{
		Kind:   KindGuide,
		Status: result.Status,
		Guide:  renderField(field),
		Raw:    raw,
	}
	path, err := m.persist(raw)
	if err != nil {
		out.PersistErr = err
		log.Warn("failed to save results", "error", err)
		return out
	}
	out.ArtifactPath = path
	log.Info("results saved", "path", path)
	return out
}

func isEmptyOutput(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	v := gjson.ParseBytes(trimmed)
	switch v.Type {
	case gjson.Null, gjson.False:
		return true
	case gjson.Number:
		return v.Float() == 0
	case gjson.String:
		return v.Str == ""
	case gjson.JSON:
		if v.IsObject() {
			return len(v.Map()) == 0
		}
		return v.IsArray() && len(v.Array()) == 0
	}
	return false
}

func renderField(field gjson.Result) string {
	if field.Type == gjson.String {
		return field.Str
	}
	return string(bytes.TrimSpace(pretty.Pretty([]byte(field.Raw))))
}

func (m *Materializer) persist(raw json.RawMessage) (string, error) {
	if !json.Valid(raw) {
		return "", fmt.Errorf("output is not valid JSON")
	}
	if err := m.fs.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	base := fmt.Sprintf("%s_%d", m.prefix, m.now().Unix())
	for i := 0; i < maxNameSuffix; i++ {
		name := base + fileExt
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, fileExt)
		}
		path := filepath.Join(m.dir, name)
		err := m.writeExclusive(path, pretty.Pretty(raw))
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no free artifact name for %s", base)
}

func (m *Materializer) writeExclusive(path string, data []byte) (err error) {
	f, err := m.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return err
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
