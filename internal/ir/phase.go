package ir

import "math/big"

// Untimed marks terms whose storage references have not been bound to a
// pre- or post-state yet.
type Untimed struct{}

// Timed marks terms whose storage references carry an explicit Pre or Post.
type Timed struct{}

// Phase constrains every IR node to one of the two timing phases.
type Phase interface {
	Untimed | Timed
}

// Value is the set of value domains an expression can denote.
type Value interface {
	Integer | bool | Bytes
}

// Integer is the arbitrary-precision integer domain.
type Integer = *big.Int

// Bytes is the byte-string domain.
type Bytes = []byte

type when uint8

const (
	neither when = iota
	pre
	post
)

// Time is the marker carried by a storage reference. Time[Untimed] has the
// single value Neither, Time[Timed] has exactly Pre and Post. The zero
// Time[Timed] is neither and fails Valid; constructors reject it.
type Time[P Phase] struct {
	w when
}

var (
	// Neither is the unspecified time of an untimed storage reference.
	Neither = Time[Untimed]{w: neither}
	// Pre references the state before a transition.
	Pre = Time[Timed]{w: pre}
	// Post references the state after a transition.
	Post = Time[Timed]{w: post}
)

// Valid reports whether t is a marker of its phase: Neither for Untimed,
// Pre or Post for Timed.
func (t Time[P]) Valid() bool {
	var p P
	if _, ok := any(p).(Untimed); ok {
		return t.w == neither
	}
	return t.w == pre || t.w == post
}

func mustValid[P Phase](t Time[P]) {
	if !t.Valid() {
		panic("ir: timed storage reference without pre or post")
	}
}

// IsPre reports whether t is Pre.
func (t Time[P]) IsPre() bool { return t.w == pre }

// IsPost reports whether t is Post.
func (t Time[P]) IsPost() bool { return t.w == post }

func (t Time[P]) String() string {
	switch t.w {
	case pre:
		return "pre"
	case post:
		return "post"
	default:
		return ""
	}
}

// Sort names the value domain A.
func Sort[A Value]() string {
	var zero A
	switch any(zero).(type) {
	case Integer:
		return "int"
	case bool:
		return "bool"
	default:
		return "bytes"
	}
}
