package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
)

// HFG format errors.
var (
	ErrInvalidHFGMagic       = errors.New("invalid HFG magic: expected 'HFGD'")
	ErrUnsupportedHFGVersion = errors.New("unsupported HFG version")
	ErrTruncatedHFGData      = errors.New("truncated HFG data")
)

const (
	hfgMagic      = "HFGD"
	hfgHeaderSize = 12 // magic + version + format + reserved + resolution

	// MaxHFGResolution bounds the grid size accepted by the parser.
	MaxHFGResolution = 8192
)

// HFGVersion represents the HFG file version.
type HFGVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v HFGVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CurrentHFGVersion is written by EncodeHFG.
var CurrentHFGVersion = HFGVersion{Major: 1, Minor: 0}

// HFGSampleFormat selects how samples are stored.
type HFGSampleFormat uint8

// Sample formats.
const (
	HFGFloat32 HFGSampleFormat = 1 // Compact; loses precision beyond float32
	HFGFloat64 HFGSampleFormat = 2 // Bit-exact
)

// Size returns the byte width of one sample, or 0 for unknown formats.
func (f HFGSampleFormat) Size() int {
	switch f {
	case HFGFloat32:
		return 4
	case HFGFloat64:
		return 8
	default:
		return 0
	}
}

// String returns the format name.
func (f HFGSampleFormat) String() string {
	switch f {
	case HFGFloat32:
		return "float32"
	case HFGFloat64:
		return "float64"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// HFGHeader is the fixed-size prefix of an HFG file.
type HFGHeader struct {
	Version    HFGVersion
	Format     HFGSampleFormat
	Resolution uint32
}

// EncodeHFG serializes a grid with float32 samples.
func EncodeHFG(grid *heightfield.Grid) []byte {
	return EncodeHFGFormat(grid, HFGFloat32)
}

// EncodeHFGFormat serializes a grid.
//
// Layout (little endian):
//
//	"HFGD" | minor u8 | major u8 | format u8 | reserved u8 | resolution u32 | samples
func EncodeHFGFormat(grid *heightfield.Grid, format HFGSampleFormat) []byte {
	if format.Size() == 0 {
		format = HFGFloat32
	}
	samples := grid.Samples()

	buf := make([]byte, hfgHeaderSize, hfgHeaderSize+format.Size()*len(samples))
	copy(buf, hfgMagic)
	buf[4] = CurrentHFGVersion.Minor
	buf[5] = CurrentHFGVersion.Major
	buf[6] = byte(format)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(grid.Resolution()))

	for _, s := range samples {
		if format == HFGFloat64 {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s))
		} else {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(s)))
		}
	}

	return buf
}

// ParseHFGHeader reads only the header.
func ParseHFGHeader(data []byte) (HFGHeader, error) {
	if len(data) < hfgHeaderSize {
		return HFGHeader{}, ErrTruncatedHFGData
	}
	if string(data[0:4]) != hfgMagic {
		return HFGHeader{}, ErrInvalidHFGMagic
	}

	// Version is stored as [minor, major]
	version := HFGVersion{
		Major: data[5],
		Minor: data[4],
	}
	if version.Major != CurrentHFGVersion.Major {
		return HFGHeader{}, fmt.Errorf("%w: %s", ErrUnsupportedHFGVersion, version)
	}

	format := HFGSampleFormat(data[6])
	if format.Size() == 0 {
		return HFGHeader{}, fmt.Errorf("%w: sample format %s", ErrUnsupportedHFGVersion, format)
	}

	resolution := binary.LittleEndian.Uint32(data[8:12])
	if resolution == 0 || resolution > MaxHFGResolution {
		return HFGHeader{}, fmt.Errorf("invalid HFG resolution: %d", resolution)
	}

	return HFGHeader{Version: version, Format: format, Resolution: resolution}, nil
}

// ParseHFG parses an HFG file from raw bytes.
func ParseHFG(data []byte) (*heightfield.Grid, error) {
	header, err := ParseHFGHeader(data)
	if err != nil {
		return nil, err
	}

	n := int(header.Resolution)
	count := n * n
	width := header.Format.Size()
	body := data[hfgHeaderSize:]
	if len(body) < width*count {
		return nil, fmt.Errorf("%w: %d bytes of samples, want %d", ErrTruncatedHFGData, len(body), width*count)
	}

	samples := make([]float64, count)
	for i := range samples {
		if header.Format == HFGFloat64 {
			samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(body[i*8:]))
		} else {
			samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:])))
		}
	}

	grid, err := heightfield.NewGrid(n, samples)
	if err != nil {
		return nil, fmt.Errorf("parsing HFG samples: %w", err)
	}
	return grid, nil
}

// ParseHFGFile parses an HFG file from disk.
func ParseHFGFile(path string) (*heightfield.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading HFG file: %w", err)
	}
	return ParseHFG(data)
}

// WriteHFGFile writes a grid to disk.
func WriteHFGFile(path string, grid *heightfield.Grid) error {
	return os.WriteFile(path, EncodeHFG(grid), 0644)
}
