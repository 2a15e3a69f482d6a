// Package itemid provides the 128-bit identifier used to name collection and
// dictionary items independently of their position.
//
// Ids are rendered as 32 lowercase hexadecimal characters, which is also the
// form they take as keys of identified collections in asset documents:
//
//	SeqItems:
//	    0a0000000a0000000a0000000a000000: value1
//	    0b0000000b0000000b0000000b000000: value2
package itemid
