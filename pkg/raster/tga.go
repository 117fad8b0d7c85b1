package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA errors.
var (
	ErrTruncatedTGA   = errors.New("truncated TGA data")
	ErrUnsupportedTGA = errors.New("unsupported TGA image")
)

// TGA image type constants.
const (
	TGATypeTrueColor    = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeTrueColorRLE = 10 // RLE compressed true-color
	TGATypeGrayRLE      = 11 // RLE compressed grayscale
)

// DecodeTGA decodes a TGA image.
// Supports uncompressed and RLE true-color (24/32 bpp) and grayscale (8 bpp) images,
// which covers what heightmap editors export.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, ErrTruncatedTGA
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrUnsupportedTGA)
	}

	gray := imageType == TGATypeGray || imageType == TGATypeGrayRLE
	rle := imageType == TGATypeTrueColorRLE || imageType == TGATypeGrayRLE
	switch {
	case gray && bpp != 8:
		return nil, fmt.Errorf("%w: grayscale bit depth %d", ErrUnsupportedTGA, bpp)
	case !gray && imageType != TGATypeTrueColor && imageType != TGATypeTrueColorRLE:
		return nil, fmt.Errorf("%w: type %d", ErrUnsupportedTGA, imageType)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("%w: bit depth %d", ErrUnsupportedTGA, bpp)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, ErrTruncatedTGA
	}

	d := &tgaDecoder{
		src:           data[offset:],
		img:           image.NewNRGBA(image.Rect(0, 0, width, height)),
		width:         width,
		height:        height,
		bytesPerPixel: bpp / 8,
		topToBottom:   descriptor&0x20 != 0,
	}

	var err error
	if rle {
		err = d.decodeRLE()
	} else {
		err = d.decodeRaw()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	src           []byte
	pos           int
	img           *image.NRGBA
	width         int
	height        int
	bytesPerPixel int
	topToBottom   bool
}

func (d *tgaDecoder) readPixel() (color.NRGBA, error) {
	if d.pos+d.bytesPerPixel > len(d.src) {
		return color.NRGBA{}, ErrTruncatedTGA
	}
	p := d.src[d.pos : d.pos+d.bytesPerPixel]
	d.pos += d.bytesPerPixel

	switch d.bytesPerPixel {
	case 1:
		return color.NRGBA{R: p[0], G: p[0], B: p[0], A: 255}, nil
	case 3:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}, nil
	default:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: p[3]}, nil
	}
}

// put stores the pixel at linear file index i, honoring the origin flag.
func (d *tgaDecoder) put(i int, c color.NRGBA) {
	x := i % d.width
	y := i / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRaw() error {
	total := d.width * d.height
	for i := 0; i < total; i++ {
		c, err := d.readPixel()
		if err != nil {
			return err
		}
		d.put(i, c)
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	total := d.width * d.height
	i := 0
	for i < total {
		if d.pos >= len(d.src) {
			return ErrTruncatedTGA
		}
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run-length packet: one pixel repeated
			c, err := d.readPixel()
			if err != nil {
				return err
			}
			for k := 0; k < count && i < total; k++ {
				d.put(i, c)
				i++
			}
			continue
		}

		for k := 0; k < count && i < total; k++ {
			c, err := d.readPixel()
			if err != nil {
				return err
			}
			d.put(i, c)
			i++
		}
	}
	return nil
}
