package main

import "errors"

var (
	// ErrMalformedInput marks a timing point or hit object that can't be read
	ErrMalformedInput = errors.New("malformed input")

	// ErrEmptyData means there is no initial tempo or no notes to convert
	ErrEmptyData = errors.New("empty data")

	// ErrInvalidLayout is returned for a key layout that isn't made of 1-8
	ErrInvalidLayout = errors.New("invalid key layout")

	// ErrUnordered means timestamps in a section go backwards
	ErrUnordered = errors.New("events out of order")

	// ErrInexact means a time span can't be written at 1/384 measure resolution
	ErrInexact = errors.New("span not representable")
)
