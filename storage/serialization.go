// Copyright 2026 Pagemark Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/pagemark/revisor/core"
)

// Field serializers shared by the chunk and version codecs.
var (
	vectorSer   = ord.NewSliceSer[float32](raw.Float32)
	metadataSer = ord.NewMapSer[string, string](ord.String, ord.String)
)

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	size := ord.String.Size(chunk.DocumentID) +
		ord.String.Size(chunk.Version) +
		varint.Int.Size(chunk.ChunkIndex) +
		ord.String.Size(chunk.Text) +
		vectorSer.Size(chunk.Vector) +
		metadataSer.Size(chunk.Metadata) +
		raw.Int64.Size(chunk.CreatedAt.UnixMicro())

	buf := make([]byte, size)
	n := ord.String.Marshal(chunk.DocumentID, buf)
	n += ord.String.Marshal(chunk.Version, buf[n:])
	n += varint.Int.Marshal(chunk.ChunkIndex, buf[n:])
	n += ord.String.Marshal(chunk.Text, buf[n:])
	n += vectorSer.Marshal(chunk.Vector, buf[n:])
	n += metadataSer.Marshal(chunk.Metadata, buf[n:])
	raw.Int64.Marshal(chunk.CreatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk := &core.Chunk{}
	var (
		n, total int
		err      error
	)

	if chunk.DocumentID, n, err = ord.String.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: document id: %w", ErrSerializationFailed, err)
	}
	total += n
	if chunk.Version, n, err = ord.String.Unmarshal(data[total:]); err != nil {
		return nil, fmt.Errorf("%w: version: %w", ErrSerializationFailed, err)
	}
	total += n
	if chunk.ChunkIndex, n, err = varint.Int.Unmarshal(data[total:]); err != nil {
		return nil, fmt.Errorf("%w: chunk index: %w", ErrSerializationFailed, err)
	}
	total += n
	if chunk.Text, n, err = ord.String.Unmarshal(data[total:]); err != nil {
		return nil, fmt.Errorf("%w: text: %w", ErrSerializationFailed, err)
	}
	total += n
	if chunk.Vector, n, err = vectorSer.Unmarshal(data[total:]); err != nil {
		return nil, fmt.Errorf("%w: vector: %w", ErrSerializationFailed, err)
	}
	total += n
	if chunk.Metadata, n, err = metadataSer.Unmarshal(data[total:]); err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", ErrSerializationFailed, err)
	}
	total += n

	micros, _, err := raw.Int64.Unmarshal(data[total:])
	if err != nil {
		return nil, fmt.Errorf("%w: created at: %w", ErrSerializationFailed, err)
	}
	chunk.CreatedAt = time.UnixMicro(micros).UTC()
	return chunk, nil
}

// MarshalVersionInfo serializes a VersionInfo to bytes.
func MarshalVersionInfo(info *core.VersionInfo) []byte {
	size := ord.String.Size(info.DocumentID) +
		ord.String.Size(info.Version) +
		varint.Int.Size(info.ChunkCount) +
		ord.String.Size(info.Title) +
		varint.Int.Size(info.PageCount) +
		raw.Int64.Size(info.IngestedAt.UnixMicro())

	buf := make([]byte, size)
	n := ord.String.Marshal(info.DocumentID, buf)
	n += ord.String.Marshal(info.Version, buf[n:])
	n += varint.Int.Marshal(info.ChunkCount, buf[n:])
	n += ord.String.Marshal(info.Title, buf[n:])
	n += varint.Int.Marshal(info.PageCount, buf[n:])
	raw.Int64.Marshal(info.IngestedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalVersionInfo deserializes a VersionInfo from bytes.
func UnmarshalVersionInfo(data []byte) (*core.VersionInfo, error) {
	info := &core.VersionInfo{}
	var (
		n, total int
		err      error
	)

	if info.DocumentID, n, err = ord.String.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: document id: %w", ErrSerializationFailed, err)
	}
	total += n
	if info.Version, n, err = ord.String.Unmarshal(data[total:]); err != nil {
		return nil, fmt.Errorf("%w: version: %w", ErrSerializationFailed, err)
	}
	total += n
	if info.ChunkCount, n, err = varint.Int.Unmarshal(data[total:]); err != nil {
		return nil, fmt.Errorf("%w: chunk count: %w", ErrSerializationFailed, err)
	}
	total += n
	if info.Title, n, err = ord.String.Unmarshal(data[total:]); err != nil {
		return nil, fmt.Errorf("%w: title: %w", ErrSerializationFailed, err)
	}
	total += n
	if info.PageCount, n, err = varint.Int.Unmarshal(data[total:]); err != nil {
		return nil, fmt.Errorf("%w: page count: %w", ErrSerializationFailed, err)
	}
	total += n

	micros, _, err := raw.Int64.Unmarshal(data[total:])
	if err != nil {
		return nil, fmt.Errorf("%w: ingested at: %w", ErrSerializationFailed, err)
	}
	info.IngestedAt = time.UnixMicro(micros).UTC()
	return info, nil
}
