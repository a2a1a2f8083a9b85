package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"os"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	encoder "github.com/skip2/go-qrcode"
)

const (
	DefaultChunkSize = 256
	imageSize        = 512
	frameDelay       = 10
)

var palette = color.Palette{color.White, color.Black}

// Processor moves opaque payloads in and out of QR images on disk.
type Processor interface {
	ReadQR(path string) ([]byte, error)
	WriteQR(path string, data []byte) error
}

// GIFProcessor writes payloads as an animated GIF, one chunk per frame, so
// data larger than a single code's capacity can cross an air gap.
type GIFProcessor struct {
	chunkSize int
}

func NewGIFProcessor(chunkSize int) *GIFProcessor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &GIFProcessor{chunkSize: chunkSize}
}

func (p *GIFProcessor) WriteQR(path string, data []byte) error {
	chunks, err := DataToChunks(data, p.chunkSize)
	if err != nil {
		return fmt.Errorf("failed to divide data on chunks: %w", err)
	}
	outGif := &gif.GIF{}
	for _, c := range chunks {
		code, err := encoder.New(string(c), encoder.Medium)
		if err != nil {
			return fmt.Errorf("failed to create a QR code: %w", err)
		}
		frame := code.Image(imageSize)
		bounds := frame.Bounds()
		palettedImage := image.NewPaletted(bounds, palette)
		draw.Draw(palettedImage, palettedImage.Rect, frame, bounds.Min, draw.Src)

		outGif.Image = append(outGif.Image, palettedImage)
		outGif.Delay = append(outGif.Delay, frameDelay)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, outGif); err != nil {
		return fmt.Errorf("failed to encode qr gif: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (p *GIFProcessor) ReadQR(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decodedGIF, err := gif.DecodeAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode qr gif: %w", err)
	}

	var chunks []*chunk
	for _, frame := range decodedGIF.Image {
		data, err := ReadDataFromQR(frame)
		if err != nil {
			continue
		}
		decoded, err := decodeChunk(data)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, decoded)
	}
	return joinChunks(chunks)
}

// WriteQR renders data as a single PNG code.
func WriteQR(path string, data []byte) error {
	bz, err := EncodeQR(data)
	if err != nil {
		return fmt.Errorf("failed to encode the data: %w", err)
	}
	if err := os.WriteFile(path, bz, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// EncodeQR returns data rendered as a PNG code.
func EncodeQR(data []byte) ([]byte, error) {
	return encoder.Encode(string(data), encoder.Medium, imageSize)
}

func ReadDataFromQR(img image.Image) ([]byte, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to get NewBinaryBitmapFromImage: %w", err)
	}

	qrReader := qrcode.NewQRCodeReader()
	result, err := qrReader.Decode(bmp, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode the QR-code contents: %w", err)
	}
	return []byte(result.String()), nil
}
