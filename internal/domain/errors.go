package domain

import "errors"

// Определение бизнес-ошибок
var (
	ErrUnknownAttribute  = errors.New("unknown attribute or malformed value")
	ErrStaffNotFound     = errors.New("staff member not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrNoStaffID         = errors.New("no staff id provided")
	ErrNoProjects        = errors.New("no projects provided")
	ErrMissingAttributes = errors.New("required attributes missing")
	ErrNoTimeBooked      = errors.New("no staff time booked to project")
	ErrImmutableField    = errors.New("attribute is immutable")
	ErrNoFiles           = errors.New("no files provided")
)
