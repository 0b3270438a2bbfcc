package badger

import (
	"encoding/binary"

	"github.com/kirezi/inyishu/core"
)

// Key prefixes for artifact storage
const (
	manifestKey       = "artman"
	artifactRowPrefix = "artrow"
)

// makeGenerationPrefix generates the key prefix for one artifact
// generation. The generation is BigEndian so generations sort in
// build order.
func makeGenerationPrefix(generation uint64) []byte {
	prefix := artifactRowPrefix + ":"
	buf := make([]byte, len(prefix)+8+1)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], generation)
	buf[offset+8] = ':'
	return buf
}

// makeArtifactRowKey generates the key for one record's artifact row.
// Format: prefix:generation:id, ids BigEndian so iteration yields
// ascending record ids.
func makeArtifactRowKey(generation uint64, id core.RecordID) []byte {
	genPrefix := makeGenerationPrefix(generation)
	buf := make([]byte, len(genPrefix)+8)
	offset := copy(buf, genPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
