package ir

import (
	"fmt"
	"strings"
)

// AbiKind enumerates the ABI types a slot or call argument can have.
type AbiKind uint8

const (
	AbiUInt AbiKind = iota
	AbiInt
	AbiAddress
	AbiBool
	AbiBytesN
	AbiBytes
	AbiString
)

// AbiType is a Solidity ABI type. Size is the bit width for integers and the
// byte length for fixed-size byte arrays.
type AbiType struct {
	Kind AbiKind
	Size int
}

func UInt(bits int) AbiType   { return AbiType{Kind: AbiUInt, Size: bits} }
func SInt(bits int) AbiType   { return AbiType{Kind: AbiInt, Size: bits} }
func BytesN(size int) AbiType { return AbiType{Kind: AbiBytesN, Size: size} }

var (
	Address    = AbiType{Kind: AbiAddress}
	Boolean    = AbiType{Kind: AbiBool}
	DynBytes   = AbiType{Kind: AbiBytes}
	StringType = AbiType{Kind: AbiString}
)

func (t AbiType) String() string {
	switch t.Kind {
	case AbiUInt:
		return fmt.Sprintf("uint%d", t.Size)
	case AbiInt:
		return fmt.Sprintf("int%d", t.Size)
	case AbiAddress:
		return "address"
	case AbiBool:
		return "bool"
	case AbiBytesN:
		return fmt.Sprintf("bytes%d", t.Size)
	case AbiBytes:
		return "bytes"
	case AbiString:
		return "string"
	default:
		return "unknown"
	}
}

// Sort is the value domain an ABI type is represented in.
func (t AbiType) Sort() string {
	switch t.Kind {
	case AbiUInt, AbiInt, AbiAddress:
		return "int"
	case AbiBool:
		return "bool"
	default:
		return "bytes"
	}
}

// Decl is a named call argument.
type Decl struct {
	Name string
	Type AbiType
}

func (d Decl) String() string { return d.Type.String() + " " + d.Name }

// Interface is the call signature of a behaviour or constructor.
type Interface struct {
	Name  string
	Decls []Decl
}

func (i Interface) String() string {
	args := make([]string, len(i.Decls))
	for n, d := range i.Decls {
		args[n] = d.String()
	}
	return i.Name + "(" + strings.Join(args, ", ") + ")"
}

// EthEnv is a value provided by the execution environment.
type EthEnv uint8

const (
	Caller EthEnv = iota
	Callvalue
	Calldepth
	Origin
	Blockhash
	Blocknumber
	Difficulty
	Chainid
	Gaslimit
	Coinbase
	Timestamp
	This
	Nonce
)

var envNames = [...]string{
	Caller:      "CALLER",
	Callvalue:   "CALLVALUE",
	Calldepth:   "CALLDEPTH",
	Origin:      "ORIGIN",
	Blockhash:   "BLOCKHASH",
	Blocknumber: "BLOCKNUMBER",
	Difficulty:  "DIFFICULTY",
	Chainid:     "CHAINID",
	Gaslimit:    "GASLIMIT",
	Coinbase:    "COINBASE",
	Timestamp:   "TIMESTAMP",
	This:        "THIS",
	Nonce:       "NONCE",
}

func (e EthEnv) String() string {
	if int(e) < len(envNames) {
		return envNames[e]
	}
	return "UNKNOWN"
}

// LookupEnv returns the environment value spelled name.
func LookupEnv(name string) (EthEnv, bool) {
	for i, n := range envNames {
		if n == name {
			return EthEnv(i), true
		}
	}
	return 0, false
}

// Sort is the value domain of an environment value. Only BLOCKHASH is a
// byte string.
func (e EthEnv) Sort() string {
	if e == Blockhash {
		return "bytes"
	}
	return "int"
}
