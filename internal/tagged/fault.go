package tagged

import "fmt"

// FaultKind identifies a tag mismatch detected by compiled code. The numeric
// value doubles as the process exit status.
type FaultKind int32

const (
	FaultNotNumber  FaultKind = 1
	FaultNotBoolean FaultKind = 2
)

// Known reports whether k is a member of the enumeration.
func (k FaultKind) Known() bool {
	switch k {
	case FaultNotNumber, FaultNotBoolean:
		return true
	}
	return false
}

// Expected names the kind of value the faulting code required.
func (k FaultKind) Expected() string {
	switch k {
	case FaultNotNumber:
		return KindNumber.String()
	case FaultNotBoolean:
		return KindBoolean.String()
	}
	return ""
}

func (k FaultKind) String() string {
	switch k {
	case FaultNotNumber:
		return "not-number"
	case FaultNotBoolean:
		return "not-boolean"
	default:
		return fmt.Sprintf("FaultKind(%d)", int32(k))
	}
}
