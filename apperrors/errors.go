package apperrors

import "errors"

// Sentinel errors for the business layer. Handlers map these onto HTTP
// status codes with errors.Is, services wrap them with fmt.Errorf("%w: ...").
var (
	// ErrNotFound - a referenced entity id does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrConflict - duplicate id or unique key (username, email, tag name).
	ErrConflict = errors.New("already exists")

	// ErrValidation - malformed input or a business-rule violation, such as
	// creating a task in an archived project or a sprint with end <= start.
	ErrValidation = errors.New("validation failed")

	// Permission errors. The gate distinguishes "not a member" from
	// "insufficient role", so both get their own sentinel.
	ErrNotProjectMember = errors.New("you are not a member of this project")
	ErrManagerRequired  = errors.New("manager or owner privileges required")
)

// IsPermission reports whether err is either of the two permission failures.
func IsPermission(err error) bool {
	return errors.Is(err, ErrNotProjectMember) || errors.Is(err, ErrManagerRequired)
}
