package patchcore

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// emptyHash is the sentinel digest for a file that does not exist,
// distinguishing "never existed / deleted" from "hashes to all-zero
// content" in a TransactionRecord's PreHash/PostHash.
const emptyHash = "EMPTY"

// hashFile returns a hex SHA-256 digest of path's contents, or emptyHash
// if path does not exist. Grounded on
// original_source/patcher_core.py:_calculate_hash.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyHash, nil
		}
		return "", err
	}
	return hashBytes(data), nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
