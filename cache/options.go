package cache

import (
	"time"
)

// Option configures a remote cache backend.
type Option func(*Options)

// Options holds remote cache connection configuration.
type Options struct {
	URL    string
	Name   string
	MaxAge time.Duration
}

// WithURL sets the connection URL of the backend, e.g. redis://host:6379/0.
func WithURL(url string) Option {
	return func(o *Options) {
		o.URL = url
	}
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithMaxAge returns an Option to configure the max age of the cache.
func WithMaxAge(maxAge time.Duration) Option {
	return func(o *Options) {
		o.MaxAge = maxAge
	}
}

// NewOptions applies opts over the defaults shared by all backends.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		MaxAge: time.Hour,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
