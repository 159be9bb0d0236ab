package bundlestore

import "errors"

// ErrBundleNotFound is returned when a bundle id has no matching row.
var ErrBundleNotFound = errors.New("bundlestore: bundle not found")
