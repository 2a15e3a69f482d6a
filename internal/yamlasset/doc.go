// Package yamlasset reads and writes asset documents: YAML object graphs in
// which collection and dictionary items keep a stable identity across edits.
//
// Slices and maps are written as mappings keyed by item id. Items deleted in
// a derived asset stay in the document as tombstones:
//
//	!Sample
//	Names:
//	    0a0000000a0000000a0000000a000000: ~(deleted)
//	    0b0000000b0000000b0000000b000000: value2
//	Values:
//	    0c0000000c0000000c0000000c000000~key1: 1
//	    0d0000000d0000000d0000000d000000~key2: 2
//
// The ids live in the registries of package collection, attached to the
// containers of the value. Pass pointers to Serialize and Unmarshal so that
// the containers keep their identity between a read and the next write.
//
// Keys carry override postfixes of package override: "*" for new items and
// "!" for sealed ones. Collections of the compact style are written inline
// without ids:
//
//	Tags: [a, b]
//
// Documents written before item ids existed are still read. Their items get
// ids on load and Result.AliasOccurred is set, so callers save them again in
// the current form.
package yamlasset
