package nodeid

import "github.com/google/uuid"

// NewString returns a UUIDv7 string (time-ordered per RFC 9562), so
// freshly created nodes sort after older ones by id.
func NewString() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
