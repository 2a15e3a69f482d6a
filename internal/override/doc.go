// Package override carries the base/derived annotations of archetype assets.
//
// In a document, an override is a postfix on the mapping key of the value:
//
//	Name*: derived value          # New
//	Locked!: true                 # Sealed
//	0a0000000a0000000a0000000a000000*: item
//	0b0000000b0000000b0000000b000000*~key: item of a dictionary
//
// For dictionary entries the postfix follows the id so that the original key
// text is never split.
package override
