package coq

import (
	"strings"

	"claimc/internal/errors"
	"claimc/internal/ir"
)

// abiType translates a scalar ABI type to its Coq type.
func abiType(t ir.AbiType) (string, error) {
	switch t.Kind {
	case ir.AbiUInt, ir.AbiInt:
		return "Z", nil
	case ir.AbiAddress:
		return "address", nil
	case ir.AbiBool:
		return "bool", nil
	case ir.AbiString:
		return "Str.string", nil
	}
	return "", errors.UnsupportedType(t.String())
}

// SlotType translates a storage slot type. Mappings become curried
// functions from their keys to their value type.
func SlotType(t ir.SlotType) (string, error) {
	switch t := t.(type) {
	case ir.StorageValue:
		return abiType(t.Type)
	case ir.StorageMapping:
		parts := make([]string, 0, len(t.Keys)+1)
		for _, k := range t.Keys {
			s, err := abiType(k)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		v, err := abiType(t.Value)
		if err != nil {
			return "", err
		}
		return strings.Join(append(parts, v), " -> "), nil
	}
	return "", errors.UnsupportedType(t.String())
}

func abiDefault(t ir.AbiType) (string, error) {
	switch t.Kind {
	case ir.AbiUInt, ir.AbiInt, ir.AbiAddress:
		return "0", nil
	case ir.AbiBool:
		return "false", nil
	case ir.AbiString:
		return "Str.EmptyString", nil
	}
	return "", errors.MissingDefault(t.String())
}

// DefaultValue is the value a slot holds in the base state when the
// constructor does not write it. A mapping defaults to the constant
// function returning the default of its value type.
func DefaultValue(t ir.SlotType) (string, error) {
	switch t := t.(type) {
	case ir.StorageValue:
		return abiDefault(t.Type)
	case ir.StorageMapping:
		d, err := abiDefault(t.Value)
		if err != nil {
			return "", err
		}
		return "(fun " + strings.Repeat("_ ", len(t.Keys)) + "=> " + d + ")", nil
	}
	return "", errors.MissingDefault(t.String())
}
