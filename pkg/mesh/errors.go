package mesh

import "fmt"

// InvalidDocumentError is returned when a mesh description cannot be turned
// into a consistent mesh.
type InvalidDocumentError struct {
	Field  string
	Reason string
}

func (e *InvalidDocumentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid mesh document: %s", e.Reason)
	}
	return fmt.Sprintf("invalid mesh document: %s: %s", e.Field, e.Reason)
}

// ElementNotFoundError is returned when an id does not resolve to an element.
type ElementNotFoundError struct {
	Kind Kind
	ID   int
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}
