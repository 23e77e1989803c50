// Package vm parses and executes zrho assembly, the three-letter-mnemonic
// language of the zr machine family.
//
// A Parser turns source text into a Program for a specific machine.Profile,
// reporting every load error with its line number rather than stopping at
// the first. A Computer executes a Program instruction by instruction with
// cycle-accurate tick accounting: per-instruction base costs, register read
// and write costs, and stalls on blocked storage registers. Arithmetic is
// bounded decimal integers; DIV and REM are Euclidean, so the remainder is
// never negative. Runtime faults (out-of-bounds storage access, values out
// of register range, division by zero) halt execution at the faulting
// instruction and leave the last consistent state inspectable.
package vm
