package filtertree

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hugr-lab/filtertree/fields"
	"github.com/hugr-lab/filtertree/tree"
)

// EditorConfig contains configuration for an editing session.
type EditorConfig struct {
	// Fields answers type and enum questions about leaf fields.
	// OPTIONAL: If nil, leaves are checked against their operator only and
	// any field name is accepted.
	Fields fields.Lookup

	// OnChange receives every root published by the editor, in order.
	// OPTIONAL: If nil, changes are only observable through Root().
	// It is called with the editor locked, so it may call Root() but must
	// not edit. A panic in OnChange is logged; the edit stays published.
	OnChange func(root *tree.Group)

	// Initial is the starting tree.
	// OPTIONAL: If nil, the session starts with an empty AND root.
	// It is pruned and validated like any edit.
	Initial *tree.Group

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// Valid values: slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level

	// Registerer receives the editor's Prometheus collectors.
	// OPTIONAL: If nil, no metrics are collected.
	// Editors sharing a Registerer share the collectors.
	Registerer prometheus.Registerer
}

// Standard errors returned by the filtertree package.
var (
	// ErrInvalidConfig indicates EditorConfig validation failed.
	ErrInvalidConfig = errors.New("invalid editor config")

	// ErrAlreadyBuilt indicates a TreeBuilder was used after Build.
	ErrAlreadyBuilt = errors.New("tree already built")
)
