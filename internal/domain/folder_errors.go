package domain

import (
	"errors"
	"net/http"
)

// FolderErrorKind identifies which hierarchy rule a folder mutation broke.
type FolderErrorKind string

const (
	KindInvalidName    FolderErrorKind = "invalid_name"
	KindParentNotFound FolderErrorKind = "parent_not_found"
	KindDuplicateName  FolderErrorKind = "duplicate_name"
	KindCycleDetected  FolderErrorKind = "cycle_detected"
	KindSelfParent     FolderErrorKind = "self_parent"
	KindDepthExceeded  FolderErrorKind = "depth_exceeded"
	KindFolderNotFound FolderErrorKind = "folder_not_found"
)

// Per-kind sentinels, matched by errors.Is against any *FolderError of that kind.
var (
	ErrInvalidName    = errors.New("invalid folder name")
	ErrParentNotFound = errors.New("parent folder not found")
	ErrDuplicateName  = errors.New("duplicate folder name")
	ErrCycleDetected  = errors.New("folder cycle detected")
	ErrSelfParent     = errors.New("folder cannot be its own parent")
	ErrDepthExceeded  = errors.New("folder depth exceeded")
	ErrFolderNotFound = errors.New("folder not found")
)

var kindSentinels = map[FolderErrorKind]error{
	KindInvalidName:    ErrInvalidName,
	KindParentNotFound: ErrParentNotFound,
	KindDuplicateName:  ErrDuplicateName,
	KindCycleDetected:  ErrCycleDetected,
	KindSelfParent:     ErrSelfParent,
	KindDepthExceeded:  ErrDepthExceeded,
	KindFolderNotFound: ErrFolderNotFound,
}

// FolderError is a user-facing rejection of a folder operation.
// Nothing has been written when one is returned.
type FolderError struct {
	Kind     FolderErrorKind
	Message  string
	FolderID string // folder the error refers to, when known
}

func (e *FolderError) Error() string {
	return e.Message
}

// StatusCode implements HTTPError
func (e *FolderError) StatusCode() int {
	switch e.Kind {
	case KindFolderNotFound:
		return http.StatusNotFound
	case KindDuplicateName:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// Is matches the kind sentinel and the generic sentinel for its status class,
// so callers that only know ErrNotFound/ErrConflict/ErrValidation keep working.
func (e *FolderError) Is(target error) bool {
	if target == kindSentinels[e.Kind] {
		return true
	}
	switch e.Kind {
	case KindFolderNotFound:
		return target == ErrNotFound
	case KindDuplicateName:
		return target == ErrConflict
	default:
		return target == ErrValidation
	}
}

func NewInvalidNameError() *FolderError {
	return &FolderError{Kind: KindInvalidName, Message: "Folder name is required"}
}

func NewParentNotFoundError(parentID string) *FolderError {
	return &FolderError{Kind: KindParentNotFound, Message: "Parent folder not found", FolderID: parentID}
}

func NewDuplicateNameError(existingID string) *FolderError {
	return &FolderError{
		Kind:     KindDuplicateName,
		Message:  "A folder with this name already exists in this location. Please choose a different name.",
		FolderID: existingID,
	}
}

func NewCycleDetectedError(folderID string) *FolderError {
	return &FolderError{Kind: KindCycleDetected, Message: "Cannot move folder inside its own descendant", FolderID: folderID}
}

func NewSelfParentError(folderID string) *FolderError {
	return &FolderError{Kind: KindSelfParent, Message: "Folder cannot be its own parent", FolderID: folderID}
}

func NewDepthExceededError(maxDepth int) *FolderError {
	msg := "Folders can only be nested one level deep"
	if maxDepth != 2 {
		msg = "Folder nesting limit reached"
	}
	return &FolderError{Kind: KindDepthExceeded, Message: msg}
}

func NewFolderNotFoundError(folderID string) *FolderError {
	return &FolderError{Kind: KindFolderNotFound, Message: "Folder not found", FolderID: folderID}
}
