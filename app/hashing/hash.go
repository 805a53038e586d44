// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package hashing provides the short content-addressing digest used to
// identify preprocessed deployment configurations and the files they
// reference.
package hashing

import (
	"encoding/hex"
	"path"

	"github.com/twmb/murmur3"
)

// idLength is the number of hex characters kept from the digest.
const idLength = 16

// Sum returns a lowercase hex content id for data: a murmur3 64-bit digest
// truncated to idLength characters.
func Sum(data []byte) string {
	sum := murmur3.Sum64(data)

	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = byte(sum >> (8 * (7 - i)))
	}

	enc := hex.EncodeToString(buf)
	if len(enc) > idLength {
		enc = enc[:idLength]
	}
	return enc
}

// Shard returns the two-character shard prefix used to lay out
// content-addressed files on disk and in object storage, e.g. Shard("ab12..")
// == "ab".
func Shard(hash string) string {
	if len(hash) < 2 {
		return hash
	}
	return hash[:2]
}

// ContentPath returns the sharded, content-addressed relative path for
// hash: "<shard>/<hash>".
func ContentPath(hash string) string {
	return path.Join(Shard(hash), hash)
}
