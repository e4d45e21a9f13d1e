// Package sizeclass maps requested byte counts onto a small set of
// reservable sizes.
//
// # Classes
//
//	Tiny     size <= 8           2, 4 or 8 bytes
//	Quantum  8 < size <= 512     multiples of 16
//	Kilo     512 < size <= 1MiB  1KiB << p
//	Mega     size > 1MiB         multiples of 2MiB
//
// Every class reserves at least the requested size. Categories (Small, Large,
// Huge) are diagnostic and do not change allocation routing.
package sizeclass
