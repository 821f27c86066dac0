package core

import "fmt"

// InvalidFieldError reports a field name outside an entity's schema.
type InvalidFieldError struct {
	Entity string
	Field  string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s field %q", e.Entity, e.Field)
}

// IndexOutOfRangeError reports a position that does not exist in a section.
type IndexOutOfRangeError struct {
	Section string
	Index   int
	Len     int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.Section, e.Index, e.Len)
}

type InvalidTemplateError struct {
	Template string
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.Template)
}

// PersistenceLoadError reports a missing or unusable stored document.
type PersistenceLoadError struct {
	Key string
	Err error
}

func (e *PersistenceLoadError) Error() string {
	return fmt.Sprintf("failed to load document %s: %v", e.Key, e.Err)
}

func (e *PersistenceLoadError) Unwrap() error { return e.Err }

type PersistenceSaveError struct {
	Key string
	Err error
}

func (e *PersistenceSaveError) Error() string {
	return fmt.Sprintf("failed to save document %s: %v", e.Key, e.Err)
}

func (e *PersistenceSaveError) Unwrap() error { return e.Err }
