package storage

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
)

const (
	catalogItemVersion = 1
	chunkJobVersion    = 1
)

// MarshalCatalogItem serializes a CatalogItem to bytes.
func MarshalCatalogItem(item *core.CatalogItem) []byte {
	buf := make([]byte, CatalogItemMUS.Size(*item))
	CatalogItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalCatalogItem deserializes a CatalogItem from bytes.
func UnmarshalCatalogItem(data []byte) (*core.CatalogItem, error) {
	item, _, err := CatalogItemMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog item: %w", ErrSerializationFailed, err)
	}
	return &item, nil
}

// MarshalChunkJob serializes a ChunkJob to bytes.
func MarshalChunkJob(job *batch.ChunkJob) []byte {
	buf := make([]byte, ChunkJobMUS.Size(*job))
	ChunkJobMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalChunkJob deserializes a ChunkJob from bytes.
func UnmarshalChunkJob(data []byte) (*batch.ChunkJob, error) {
	job, _, err := ChunkJobMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: job: %w", ErrSerializationFailed, err)
	}
	return &job, nil
}

// CatalogItemMUS is the mus serializer for core.CatalogItem.
var CatalogItemMUS = catalogItemMUS{}

type catalogItemMUS struct{}

func (s catalogItemMUS) Marshal(v core.CatalogItem, bs []byte) (n int) {
	n = varint.Int.Marshal(catalogItemVersion, bs)
	n += ord.String.Marshal(v.ID, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(string(v.Gender), bs[n:])
	n += ord.String.Marshal(v.Composition, bs[n:])
	n += ord.String.Marshal(v.Sleeve, bs[n:])
	n += ord.String.Marshal(v.Photo, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += ColorMUS.Marshal(v.Color, bs[n:])
	return n + TimeMUS.Marshal(v.UpdatedAt, bs[n:])
}

func (s catalogItemMUS) Unmarshal(bs []byte) (v core.CatalogItem, n int, err error) {
	var version, n1 int
	version, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if version != catalogItemVersion {
		err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
		return
	}
	var gender string
	for _, field := range []*string{&v.ID, &v.Title, &gender, &v.Composition, &v.Sleeve, &v.Photo, &v.URL} {
		*field, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Gender = core.GenderClass(gender)
	v.Color, n1, err = ColorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s catalogItemMUS) Size(v core.CatalogItem) (size int) {
	size = varint.Int.Size(catalogItemVersion)
	for _, str := range []string{v.ID, v.Title, string(v.Gender), v.Composition, v.Sleeve, v.Photo, v.URL} {
		size += ord.String.Size(str)
	}
	size += ColorMUS.Size(v.Color)
	return size + TimeMUS.Size(v.UpdatedAt)
}

// ColorMUS serializes an optional ColorVector. A nil color is encoded as a
// single false flag, never as an empty vector.
var ColorMUS = colorMUS{}

type colorMUS struct{}

func (s colorMUS) Marshal(v *core.ColorVector, bs []byte) (n int) {
	n = ord.Bool.Marshal(v != nil, bs)
	if v == nil {
		return
	}
	n += varint.Int.Marshal(v.R, bs[n:])
	n += varint.Int.Marshal(v.G, bs[n:])
	return n + varint.Int.Marshal(v.B, bs[n:])
}

func (s colorMUS) Unmarshal(bs []byte) (v *core.ColorVector, n int, err error) {
	var present bool
	present, n, err = ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return
	}
	var c core.ColorVector
	var n1 int
	for _, p := range []*int{&c.R, &c.G, &c.B} {
		*p, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	if err = c.Validate(); err != nil {
		return
	}
	v = &c
	return
}

func (s colorMUS) Size(v *core.ColorVector) (size int) {
	size = ord.Bool.Size(v != nil)
	if v == nil {
		return
	}
	return size + varint.Int.Size(v.R) + varint.Int.Size(v.G) + varint.Int.Size(v.B)
}

// TimeMUS serializes a time with microsecond precision. The zero time
// round-trips as the zero time.
var TimeMUS = timeMUS{}

type timeMUS struct{}

func (s timeMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(unixMicro(v), bs)
}

func (s timeMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	var micros int64
	micros, n, err = varint.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return
	}
	v = time.UnixMicro(micros).UTC()
	return
}

func (s timeMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(unixMicro(v))
}

func unixMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

// ChunkJobMUS is the mus serializer for batch.ChunkJob.
var ChunkJobMUS = chunkJobMUS{}

type chunkJobMUS struct{}

func (s chunkJobMUS) counters(v *batch.ChunkJob) []*int64 {
	return []*int64{&v.Read, &v.Processed, &v.Skipped, &v.Failed, &v.Written, &v.Chunks}
}

func (s chunkJobMUS) times(v *batch.ChunkJob) []*time.Time {
	return []*time.Time{&v.CreatedAt, &v.StartedAt, &v.EndedAt}
}

func (s chunkJobMUS) Marshal(v batch.ChunkJob, bs []byte) (n int) {
	n = varint.Int.Marshal(chunkJobVersion, bs)
	n += varint.Uint64.Marshal(v.ID, bs[n:])
	n += ord.String.Marshal(v.Name, bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	for _, c := range s.counters(&v) {
		n += varint.Int64.Marshal(*c, bs[n:])
	}
	for _, t := range s.times(&v) {
		n += TimeMUS.Marshal(*t, bs[n:])
	}
	n += ord.String.Marshal(v.Error, bs[n:])
	return n + ParametersMUS.Marshal(v.Parameters, bs[n:])
}

func (s chunkJobMUS) Unmarshal(bs []byte) (v batch.ChunkJob, n int, err error) {
	var version, status, n1 int
	version, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if version != chunkJobVersion {
		err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
		return
	}
	v.ID, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status = batch.Status(status)
	for _, c := range s.counters(&v) {
		*c, n1, err = varint.Int64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	for _, t := range s.times(&v) {
		*t, n1, err = TimeMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Error, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Parameters, n1, err = ParametersMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkJobMUS) Size(v batch.ChunkJob) (size int) {
	size = varint.Int.Size(chunkJobVersion)
	size += varint.Uint64.Size(v.ID)
	size += ord.String.Size(v.Name)
	size += varint.Int.Size(int(v.Status))
	for _, c := range s.counters(&v) {
		size += varint.Int64.Size(*c)
	}
	for _, t := range s.times(&v) {
		size += TimeMUS.Size(*t)
	}
	size += ord.String.Size(v.Error)
	return size + ParametersMUS.Size(v.Parameters)
}

// ParametersMUS serializes job parameters as a length followed by
// key/value pairs in sorted key order.
var ParametersMUS = parametersMUS{}

type parametersMUS struct{}

func (s parametersMUS) Marshal(v batch.Parameters, bs []byte) (n int) {
	keys := sortedKeys(v)
	n = varint.Int.Marshal(len(keys), bs)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v[k], bs[n:])
	}
	return
}

func (s parametersMUS) Unmarshal(bs []byte) (v batch.Parameters, n int, err error) {
	var length, n1 int
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 || length > len(bs) {
		err = fmt.Errorf("%w: parameter count %d", ErrSerializationFailed, length)
		return
	}
	v = make(batch.Parameters, length)
	for range length {
		var key, value string
		key, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		value, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v[key] = value
	}
	return
}

func (s parametersMUS) Size(v batch.Parameters) (size int) {
	size = varint.Int.Size(len(v))
	for k, val := range v {
		size += ord.String.Size(k) + ord.String.Size(val)
	}
	return
}

func sortedKeys(p batch.Parameters) []string {
	return slices.Sorted(maps.Keys(p))
}
