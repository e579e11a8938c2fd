package pbir

import (
	"errors"
	"fmt"
	"os"

	"github.com/reportsmith/reportsmith/pkg/tmdl"
)

// Sentinel errors used for simple equality-style checks.
var (
	ErrInvalid    = os.ErrInvalid    // invalid argument
	ErrExist      = os.ErrExist      // entity already exists
	ErrNotExist   = os.ErrNotExist   // entity or backing file does not exist
	ErrPermission = os.ErrPermission // permission denied
	ErrParse      = tmdl.ErrParse    // content does not decode into the expected shape
)

// NotFoundError reports a referenced entity or backing file that is absent.
// It unwraps to ErrNotExist.
type NotFoundError struct {
	Kind string // "report", "page", "visual", "pages metadata", "baseline"
	Name string // logical name when known
	Path string // backing path when known
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Name != "" && e.Path != "":
		return fmt.Sprintf("%s %q not found: %s", e.Kind, e.Name, e.Path)
	case e.Name != "":
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	case e.Path != "":
		return fmt.Sprintf("%s not found: %s", e.Kind, e.Path)
	default:
		return e.Kind + " not found"
	}
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotExist }

func (e *NotFoundError) Unwrap() error { return ErrNotExist }

// NewNotFound constructs a typed NotFoundError.
func NewNotFound(kind, name, path string) error {
	return &NotFoundError{Kind: kind, Name: name, Path: path}
}

// ExistsError reports a duplicate logical name on create. It unwraps to
// ErrExist.
type ExistsError struct {
	Kind string
	Name string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

func (e *ExistsError) Is(target error) bool { return target == ErrExist }

func (e *ExistsError) Unwrap() error { return ErrExist }

// NewExists constructs a typed ExistsError.
func NewExists(kind, name string) error {
	return &ExistsError{Kind: kind, Name: name}
}

// FormatError reports a file whose content does not decode into the expected
// shape (undecodable JSON, out-of-range field values). It chains to ErrParse
// while preserving the decoder's cause.
type FormatError struct {
	Path  string
	Cause error
}

func (e *FormatError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("decode %s: invalid content", e.Path)
	}
	return fmt.Sprintf("decode %s: %v", e.Path, e.Cause)
}

func (e *FormatError) Is(target error) bool { return target == ErrParse }

func (e *FormatError) Unwrap() error { return e.Cause }

// NewFormatError constructs a typed FormatError.
func NewFormatError(path string, cause error) error {
	return &FormatError{Path: path, Cause: cause}
}

// WriteError reports a failed write or delete at the OS level. The in-memory
// mutation that triggered the write is not reverted; the error tells the
// caller that disk no longer mirrors memory for that entity.
type WriteError struct {
	Op    string // "write", "remove", "rename", "copy"
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

// NewWriteError constructs a typed WriteError.
func NewWriteError(op, path string, cause error) error {
	return &WriteError{Op: op, Path: path, Cause: cause}
}

// Convenience predicates

// IsNotExist reports whether err is (or wraps) a missing-entity condition.
func IsNotExist(err error) bool { return errors.Is(err, ErrNotExist) }

// IsExist reports whether err is (or wraps) a duplicate-name condition.
func IsExist(err error) bool { return errors.Is(err, ErrExist) }

// IsParse reports whether err is (or wraps) a content-format condition.
func IsParse(err error) bool { return errors.Is(err, ErrParse) }
