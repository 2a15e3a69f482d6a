// Package assetfile loads and saves asset files. The serializer of a file is
// picked by its extension from a Registry of factories; the factory
// registered last wins.
//
// The default registry reads ".yaml", ".yml" and ".asset" files as YAML
// assets and ".txt" files as SourceCodeAsset values:
//
//	assetfile.RegisterYAMLAsset("Material", ".asset", Material{})
//
//	mat, res, err := assetfile.LoadAs[*Material]("lamp.asset", assetfile.LoadOptions{})
//	if res.AliasOccurred {
//		id, err := assetfile.SaveFile("lamp.asset", mat, res.Overrides)
//	}
//
// Every load and save reports the content id of the bytes, a CIDv1 over a
// sha2-256 multihash.
package assetfile
