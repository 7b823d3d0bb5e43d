package pngcrypt

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Reed-Solomon Configuration
const (
	rsDataShards   = 4
	rsParityShards = 2
)

// newECCChunk records the shard layout so readers know the secret chunk
// needs decoding.
func newECCChunk() (*Chunk, error) {
	return NewChunk(ECCChunkType, []byte{rsDataShards, rsParityShards})
}

func parseECCChunk(c *Chunk) error {
	if len(c.Data) != 2 || c.Data[0] != rsDataShards || c.Data[1] != rsParityShards {
		return fmt.Errorf("%w: unsupported error-correction layout %x", ErrDecode, c.Data)
	}
	return nil
}

// addReedSolomon frames data as length ++ data split over rsDataShards data
// shards followed by rsParityShards parity shards, all the same size.
func addReedSolomon(data []byte) ([]byte, error) {
	enc, err := reedsolomon.New(rsDataShards, rsParityShards)
	if err != nil {
		return nil, err
	}

	// Prepend length (4 bytes) to strip padding later
	payload := make([]byte, 4, 4+len(data))
	binary.BigEndian.PutUint32(payload, uint32(len(data)))
	payload = append(payload, data...)

	shards, err := enc.Split(payload)
	if err != nil {
		return nil, err
	}
	if err := enc.Encode(shards); err != nil {
		return nil, err
	}

	output := make([]byte, 0, len(shards)*len(shards[0]))
	for _, shard := range shards {
		output = append(output, shard...)
	}
	return output, nil
}

// removeReedSolomon verifies the shards, reconstructs damaged ones when the
// parity allows it, and returns the original data.
func removeReedSolomon(data []byte) ([]byte, error) {
	enc, err := reedsolomon.New(rsDataShards, rsParityShards)
	if err != nil {
		return nil, err
	}

	total := rsDataShards + rsParityShards
	if len(data) == 0 || len(data)%total != 0 {
		return nil, fmt.Errorf("%w: error-correction payload of %d bytes is not %d equal shards", ErrDecode, len(data), total)
	}
	size := len(data) / total
	shards := make([][]byte, total)
	for i := range shards {
		shards[i] = data[i*size : (i+1)*size]
	}

	if ok, _ := enc.Verify(shards); !ok {
		repaired, err := repairShards(enc, shards)
		if err != nil {
			return nil, err
		}
		shards = repaired
	}

	joined := make([]byte, 0, rsDataShards*size)
	for _, shard := range shards[:rsDataShards] {
		joined = append(joined, shard...)
	}

	if len(joined) < 4 {
		return nil, fmt.Errorf("%w: recovered data too short", ErrDecode)
	}
	length := binary.BigEndian.Uint32(joined[:4])
	if uint64(len(joined)) < 4+uint64(length) {
		return nil, fmt.Errorf("%w: recovered data length mismatch", ErrDecode)
	}
	return joined[4 : 4+length], nil
}

// repairShards finds a single corrupted shard by treating each one in turn
// as missing and keeping the first reconstruction that verifies.
func repairShards(enc reedsolomon.Encoder, shards [][]byte) ([][]byte, error) {
	for i := range shards {
		trial := make([][]byte, len(shards))
		copy(trial, shards)
		trial[i] = nil
		if err := enc.Reconstruct(trial); err != nil {
			continue
		}
		if ok, _ := enc.Verify(trial); ok {
			return trial, nil
		}
	}
	return nil, fmt.Errorf("%w: reed-solomon payload is damaged beyond repair", ErrDecode)
}
