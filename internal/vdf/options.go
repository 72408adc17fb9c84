// Copyright (c) 2025 @AmarnathCJD

package vdf

import (
	"github.com/amarnathcjd/moocauth/internal/utils"
	"github.com/pkg/errors"
)

type options struct {
	chunkSize int
	clock     Clock
	logger    *utils.Logger
}

func defaultOptions() *options {
	return &options{
		chunkSize: DefaultChunkSize,
		clock:     realClock{},
		logger:    utils.Discard(),
	}
}

type OptionFunc func(*options) error

// WithChunkSize sets how many squarings run between clock checks.
func WithChunkSize(n int) OptionFunc {
	return func(o *options) error {
		if n <= 0 {
			return errors.Errorf("vdf: chunk size must be positive, got %d", n)
		}
		o.chunkSize = n
		return nil
	}
}

func WithClock(c Clock) OptionFunc {
	return func(o *options) error {
		if c == nil {
			return errors.New("vdf: nil clock")
		}
		o.clock = c
		return nil
	}
}

func WithLogger(l *utils.Logger) OptionFunc {
	return func(o *options) error {
		if l != nil {
			o.logger = l
		}
		return nil
	}
}
