package schema

import (
	"github.com/bruns6077/cs2-dumper/process"
)

// CUtlTSHash keeps its values in a fixed-size-block memory pool. Blobs
// form a singly linked list headed inside the pool; each block in a blob
// is a {next, value} pointer pair. Unused blocks hold a zero value.
var utlTSHashLayout = classLayout{
	name: "CUtlTSHash",
	fields: map[string]fieldDesc{
		"m_nBlocksPerBlob":   {0x04, kindINT32},
		"m_nBlocksAllocated": {0x0C, kindINT32},
		"m_pBlobHead":        {0x20, kindPointer},
	},
}

const (
	hashBlobHeaderSize   = 0x10
	hashBlockSize        = 0x10
	hashBlockValueOffset = 0x8

	maxHashBlobs = 1024
)

// hashElements collects the non-zero values of the hash at addr,
// bounded by the pool's own allocation count and by limit.
func hashElements(mem process.Reader, addr process.Address, limit int) []process.Address {
	blocksPerBlob, err := utlTSHashLayout.int32(mem, addr, "m_nBlocksPerBlob")
	if err != nil || blocksPerBlob <= 0 {
		return nil
	}

	allocated, err := utlTSHashLayout.int32(mem, addr, "m_nBlocksAllocated")
	if err != nil || allocated <= 0 {
		return nil
	}
	if int(allocated) < limit {
		limit = int(allocated)
	}

	var elements []process.Address

	blob := utlTSHashLayout.pointer(mem, addr, "m_pBlobHead")
	for blobs := 0; blob != 0 && blobs < maxHashBlobs && len(elements) < limit; blobs++ {
		for i := int32(0); i < blocksPerBlob && len(elements) < limit; i++ {
			block := blob.Add(hashBlobHeaderSize).Add(process.Size(i) * hashBlockSize)

			value := mem.ReadPOINTER2(block.Add(hashBlockValueOffset))
			if value != 0 {
				elements = append(elements, value)
			}
		}

		blob = mem.ReadPOINTER2(blob)
	}

	return elements
}
