// Package session holds the working state of one watermarking user.
//
// A Session moves through three states:
//
//	Empty --Upload--> Loaded --Apply--> Applied
//	                    ^                  |
//	                    +------Reset-------+
//
// Upload is valid from any state and starts over. Apply composites over the
// current image, so repeated applies accumulate. Reset restores an
// independent copy of the uploaded original.
//
// Sessions are immutable values; each operation returns the next state.
// Store maps ids to sessions for the MCP server.
package session
