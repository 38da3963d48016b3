package tracking

import "github.com/pkg/errors"

// ErrSlotOutOfRange is returned for override requests naming a slot the family does not have.
var ErrSlotOutOfRange = errors.New("candidate slot out of range")
