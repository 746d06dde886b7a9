package convert

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docmark/internal/domain"
)

// Registry holds the ordered converter set and implements dispatch.
//
// Registration inserts at the head of the list. Dispatch stable-sorts a copy
// by ascending priority, so converters sharing a priority resolve
// most-recently-registered-first. That tie-break is an explicit, tested part
// of the contract, not an accident of representation.
//
// The list is read concurrently by in-flight dispatches but is expected to
// be mutated only during setup; mutation while a dispatch is in progress is
// unsupported.
type Registry struct {
	mu         sync.RWMutex
	converters []domain.Converter // head = most recently registered
	logger     *slog.Logger
}

// NewRegistry creates an empty registry. Most callers want NewStandardRegistry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register inserts a converter at the head of the list. Within a priority
// class this makes the newest registration win future dispatches; ordering
// across priority classes is unaffected.
func (r *Registry) Register(c domain.Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters = append([]domain.Converter{c}, r.converters...)
}

// Without returns a dispatcher over the same converters minus the named one.
// The archive expander uses this for self-exclusion so nested containers of
// its own format are left unconverted instead of recursing.
func (r *Registry) Without(name string) domain.Dispatcher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub := &Registry{logger: r.logger}
	for _, c := range r.converters {
		if c.Name() != name {
			sub.converters = append(sub.converters, c)
		}
	}
	return sub
}

// sorted returns a stable priority-ascending copy of the converter list.
func (r *Registry) sorted() []domain.Converter {
	r.mu.RLock()
	out := make([]domain.Converter, len(r.converters))
	copy(out, r.converters)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out
}

// Dispatch resolves path to a conversion result.
//
// For each candidate extension in caller order, every converter is tried in
// ascending priority order. A converter returning (nil, nil) declined the
// input; a converter returning an error is logged and recorded, and dispatch
// continues — one handler's internal failure never aborts the whole
// dispatch. Only when every extension × converter pair is exhausted does
// Dispatch fail, with *domain.UnsupportedFormatError.
func (r *Registry) Dispatch(ctx context.Context, path string, exts []string, opts *domain.Options) (*domain.ConversionResult, error) {
	if err := validateDispatch(path, exts); err != nil {
		return nil, err
	}

	if len(exts) == 0 {
		exts = []string{strings.ToLower(filepath.Ext(path))}
	} else {
		normalized := make([]string, len(exts))
		for i, ext := range exts {
			normalized[i] = normalizeExt(ext)
		}
		exts = normalized
	}

	// Converters re-entering dispatch (archives) go through the options
	// bag, never through package state.
	if opts == nil || opts.Dispatcher == nil {
		opts = opts.WithDispatcher(r)
	}

	candidates := r.sorted()
	var attempts []domain.ConverterAttempt

	for _, ext := range exts {
		for _, c := range candidates {
			if !c.CanHandle(ext) {
				continue
			}
			req := domain.ConversionRequest{
				Path:      path,
				Extension: ext,
				Options:   opts,
			}
			if opts.SourceURL != "" {
				req.SourceURL = opts.SourceURL
			}
			res, err := c.Convert(ctx, req)
			if err != nil {
				r.logger.Warn("converter failed, trying next",
					"converter", c.Name(),
					"path", path,
					"ext", ext,
					"error", err,
				)
				attempts = append(attempts, domain.ConverterAttempt{
					Converter: c.Name(),
					Extension: ext,
					Err:       &domain.ConverterError{Converter: c.Name(), Err: err},
				})
				continue
			}
			if res == nil {
				// not applicable, keep going
				continue
			}
			r.logger.Debug("converted",
				"converter", c.Name(),
				"path", path,
				"ext", ext,
			)
			return res, nil
		}
	}

	return nil, &domain.UnsupportedFormatError{
		Path:       path,
		Extensions: exts,
		Attempts:   attempts,
	}
}

func validateDispatch(path string, exts []string) error {
	if err := validation.Validate(path, validation.Required); err != nil {
		return &domain.ConverterError{Converter: "dispatch", Err: err}
	}
	for _, ext := range exts {
		if err := validation.Validate(ext, validation.Required); err != nil {
			return &domain.ConverterError{Converter: "dispatch", Err: err}
		}
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
