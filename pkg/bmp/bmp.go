// Package bmp reads and writes uncompressed bottom-up BMP images with 24-bit
// BGR or 32-bit BGRA pixels.
//
// 32-bit images must carry a BGRA colour mask header in the sRGB colour
// space. Anything else is rejected rather than converted.
package bmp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Signature is the "BM" magic in little-endian order.
const Signature = 0x4D42

// Header sizes on disk.
const (
	FileHeaderSize  = 14
	InfoHeaderSize  = 40
	ColorHeaderSize = 84
)

// Compression values written by Encode.
const (
	compressionRGB       = 0
	compressionBitfields = 3
)

// sRGB is the "sRGB" colour space tag.
const sRGB = 0x73524742

var (
	ErrSignature    = errors.New("bmp: unrecognized file format")
	ErrNoColorMasks = errors.New("bmp: 32-bit image without colour mask information")
	ErrColorMasks   = errors.New("bmp: unexpected colour mask format, want BGRA")
	ErrColorSpace   = errors.New("bmp: unexpected colour space, want sRGB")
	ErrBitDepth     = errors.New("bmp: only 24 or 32 bits per pixel are supported")
	ErrTopDown      = errors.New("bmp: only bottom-up images are supported")
	ErrDimensions   = errors.New("bmp: width and height must be positive")
	ErrTruncated    = errors.New("bmp: truncated pixel data")
	ErrOffset       = errors.New("bmp: pixel data offset inside headers")
)

// FileHeader is the 14-byte BITMAPFILEHEADER.
type FileHeader struct {
	FileType   uint16
	FileSize   uint32
	Reserved1  uint16
	Reserved2  uint16
	OffsetData uint32
}

// InfoHeader is the 40-byte BITMAPINFOHEADER.
type InfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32 // positive: bottom-up
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32
	XPixelsPerMeter int32
	YPixelsPerMeter int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// ColorHeader is the mask and colour space block that follows the info
// header of 32-bit images.
type ColorHeader struct {
	RedMask        uint32
	GreenMask      uint32
	BlueMask       uint32
	AlphaMask      uint32
	ColorSpaceType uint32
	Unused         [16]uint32
}

// DefaultColorHeader returns the BGRA sRGB header every 32-bit image uses.
func DefaultColorHeader() ColorHeader {
	return ColorHeader{
		RedMask:        0x00ff0000,
		GreenMask:      0x0000ff00,
		BlueMask:       0x000000ff,
		AlphaMask:      0xff000000,
		ColorSpaceType: sRGB,
	}
}

// Image is a decoded bitmap. Pix holds Channels bytes per pixel in B, G, R
// (, A) order without row padding, starting with the bottom row.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Stride returns the unpadded row length in bytes.
func (img *Image) Stride() int {
	return img.Width * img.Channels
}

// paddedStride rounds a row length up to a multiple of four bytes.
func paddedStride(stride int) int {
	return (stride + 3) &^ 3
}

func checkColorHeader(ch ColorHeader) error {
	want := DefaultColorHeader()
	if ch.RedMask != want.RedMask || ch.GreenMask != want.GreenMask ||
		ch.BlueMask != want.BlueMask || ch.AlphaMask != want.AlphaMask {
		return ErrColorMasks
	}
	if ch.ColorSpaceType != want.ColorSpaceType {
		return ErrColorSpace
	}
	return nil
}

// Decode reads a BMP image from r.
func Decode(r io.Reader) (*Image, error) {
	var fh FileHeader
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return nil, fmt.Errorf("read file header: %w", err)
	}
	if fh.FileType != Signature {
		return nil, ErrSignature
	}

	var ih InfoHeader
	if err := binary.Read(r, binary.LittleEndian, &ih); err != nil {
		return nil, fmt.Errorf("read info header: %w", err)
	}
	consumed := int64(FileHeaderSize + InfoHeaderSize)

	switch ih.BitCount {
	case 24:
	case 32:
		if ih.Size < InfoHeaderSize+ColorHeaderSize {
			return nil, ErrNoColorMasks
		}
		var ch ColorHeader
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			return nil, fmt.Errorf("read colour header: %w", err)
		}
		consumed += ColorHeaderSize
		if err := checkColorHeader(ch); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: got %d", ErrBitDepth, ih.BitCount)
	}

	if ih.Height < 0 {
		return nil, ErrTopDown
	}
	if ih.Width <= 0 || ih.Height == 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrDimensions, ih.Width, ih.Height)
	}

	skip := int64(fh.OffsetData) - consumed
	if skip < 0 {
		return nil, fmt.Errorf("%w: offset %d", ErrOffset, fh.OffsetData)
	}
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return nil, fmt.Errorf("seek to pixel data: %w", err)
	}

	img := &Image{
		Width:    int(ih.Width),
		Height:   int(ih.Height),
		Channels: int(ih.BitCount) / 8,
	}
	stride := img.Stride()
	img.Pix = make([]byte, stride*img.Height)
	padding := make([]byte, paddedStride(stride)-stride)

	for y := range img.Height {
		if _, err := io.ReadFull(r, img.Pix[y*stride:(y+1)*stride]); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrTruncated, y, err)
		}
		if len(padding) == 0 {
			continue
		}
		if _, err := io.ReadFull(r, padding); err != nil {
			return nil, fmt.Errorf("%w: row %d padding: %w", ErrTruncated, y, err)
		}
	}

	return img, nil
}

// Encode writes img to w. 32-bit images get the BGRA colour mask header and
// bitfield compression; 24-bit rows are padded to four bytes.
func Encode(w io.Writer, img *Image) error {
	if img.Channels != 3 && img.Channels != 4 {
		return fmt.Errorf("%w: got %d", ErrBitDepth, img.Channels*8)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrDimensions, img.Width, img.Height)
	}
	stride := img.Stride()
	if len(img.Pix) < stride*img.Height {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrTruncated, len(img.Pix), stride*img.Height)
	}
	padded := paddedStride(stride)

	ih := InfoHeader{
		Size:     InfoHeaderSize,
		Width:    int32(img.Width),
		Height:   int32(img.Height),
		Planes:   1,
		BitCount: uint16(img.Channels * 8),
	}
	fh := FileHeader{
		FileType:   Signature,
		OffsetData: FileHeaderSize + InfoHeaderSize,
	}
	if img.Channels == 4 {
		ih.Size += ColorHeaderSize
		ih.Compression = compressionBitfields
		fh.OffsetData += ColorHeaderSize
	} else {
		ih.Compression = compressionRGB
	}
	fh.FileSize = fh.OffsetData + uint32(padded*img.Height)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, fh); err != nil {
		return fmt.Errorf("write file header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, ih); err != nil {
		return fmt.Errorf("write info header: %w", err)
	}
	if img.Channels == 4 {
		if err := binary.Write(bw, binary.LittleEndian, DefaultColorHeader()); err != nil {
			return fmt.Errorf("write colour header: %w", err)
		}
	}

	padding := make([]byte, padded-stride)
	for y := range img.Height {
		if _, err := bw.Write(img.Pix[y*stride : (y+1)*stride]); err != nil {
			return fmt.Errorf("write row %d: %w", y, err)
		}
		if _, err := bw.Write(padding); err != nil {
			return fmt.Errorf("write row %d padding: %w", y, err)
		}
	}
	return bw.Flush()
}

// ReadFile decodes the BMP image at path.
func ReadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bmp: %w", err)
	}
	defer f.Close()

	img, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// WriteFile encodes img to path, replacing any existing file.
func WriteFile(path string, img *Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bmp: %w", err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
