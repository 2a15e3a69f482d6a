package assetfile

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ContentID returns the CIDv1 of data: raw codec over a sha2-256 multihash.
// Saving an unchanged asset again yields the same id.
func ContentID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}

	return cid.NewCidV1(cid.Raw, sum), nil
}
