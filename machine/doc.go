// Package machine describes the hardware variants a zrho program can run on.
//
// A Profile is an immutable catalogue of the registers one machine exposes
// (with their classes, capacities, numeric bounds, and access costs) and of
// the instructions it supports with their tick costs. Machine variance is
// expressed purely as data: every machine is a Profile value, never a
// different implementation. Builtin profiles are available by name, and
// custom ones can be loaded from TOML.
package machine
