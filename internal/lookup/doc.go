// Package lookup provides the cloud/data API client used to resolve a camera
// event into a concrete person, room, meeting and conferencing endpoint.
//
// The scenario engine consumes the Resolver interface and runs the calls as a
// sequential dependent chain (network → snapshot → identify → room → endpoint
// → meeting); each method here is a single step with its own bounded timeout.
// Failures are wrapped with the step name so callers can report exactly which
// step broke the chain.
package lookup
