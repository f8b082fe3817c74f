package format

import "fmt"

// ValidateName checks that name fits the NUL-padded name field: at most
// NameLen-1 ASCII bytes, none of them NUL.
func ValidateName(name string) error {
	if len(name) >= NameLen {
		return fmt.Errorf("%w: %q is %d bytes (limit %d)", ErrNameTooLong, name, len(name), NameLen-1)
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c == 0 || c > 0x7F {
			return fmt.Errorf("%w: %q has a non-ASCII or NUL byte at %d", ErrInvalidName, name, i)
		}
	}
	return nil
}
