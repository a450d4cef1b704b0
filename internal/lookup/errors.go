package lookup

import "errors"

var (
	// ErrNotFound indicates the cloud/data API has no record for the requested
	// camera, room or meeting resource.
	ErrNotFound = errors.New("lookup: resource not found")

	// ErrUnexpectedStatus indicates the cloud/data API answered with a status
	// code the client does not know how to interpret.
	ErrUnexpectedStatus = errors.New("lookup: unexpected response status")
)
