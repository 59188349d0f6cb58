package builtins

import (
	"strconv"
	"strings"

	"claimc/internal/ir"
)

// BuiltinType is the spelling of a fixed ABI type
type BuiltinType string

const (
	// Unsigned integers
	U8   BuiltinType = "uint8"
	U16  BuiltinType = "uint16"
	U32  BuiltinType = "uint32"
	U64  BuiltinType = "uint64"
	U128 BuiltinType = "uint128"
	U256 BuiltinType = "uint256"

	// Other primitives
	Bool    BuiltinType = "bool"
	Address BuiltinType = "address"
	Bytes   BuiltinType = "bytes"
	String  BuiltinType = "string"
)

// BuiltinTypes contains the non-parametric type names
var BuiltinTypes = map[string]ir.AbiType{
	string(Bool):    ir.Boolean,
	string(Address): ir.Address,
	string(Bytes):   ir.DynBytes,
	string(String):  ir.StringType,
}

// IsBuiltinType checks if a type name denotes an ABI type
func IsBuiltinType(typeName string) bool {
	_, ok := ParseAbiType(typeName)
	return ok
}

// IsIntegerType checks if a type name is a signed or unsigned integer type
func IsIntegerType(typeName string) bool {
	t, ok := ParseAbiType(typeName)
	return ok && (t.Kind == ir.AbiUInt || t.Kind == ir.AbiInt)
}

// ParseAbiType resolves an ABI type name. uint and int without a width are
// the 256 bit types. Widths run from 8 to 256 in steps of 8, fixed byte
// arrays from bytes1 to bytes32.
func ParseAbiType(name string) (ir.AbiType, bool) {
	if t, ok := BuiltinTypes[name]; ok {
		return t, true
	}

	switch {
	case strings.HasPrefix(name, "uint"):
		bits, ok := width(name[len("uint"):], 256)
		return ir.UInt(bits), ok && bits%8 == 0
	case strings.HasPrefix(name, "int"):
		bits, ok := width(name[len("int"):], 256)
		return ir.SInt(bits), ok && bits%8 == 0
	case strings.HasPrefix(name, "bytes"):
		size, err := strconv.Atoi(name[len("bytes"):])
		if err != nil || size < 1 || size > 32 {
			return ir.AbiType{}, false
		}
		return ir.BytesN(size), true
	}
	return ir.AbiType{}, false
}

func width(suffix string, def int) (int, bool) {
	if suffix == "" {
		return def, true
	}
	// leading zeros and signs are not part of a type name
	if suffix[0] < '1' || suffix[0] > '9' {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 8 || n > 256 {
		return 0, false
	}
	return n, true
}
